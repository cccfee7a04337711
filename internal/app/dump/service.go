package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/domain/risk"
)

const SchemaVersion = "1.0"

type Service struct{}

func NewService() Service { return Service{} }

// Run renders every metadata entry of a single file together with its
// risk assessment.
func (Service) Run(ctx context.Context, app *common.AppContext, path string) (model.DumpResult, error) {
	start := time.Now()
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.DumpResult{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return model.DumpResult{}, err
	}
	if info.IsDir() {
		return model.DumpResult{}, fmt.Errorf("%s is a directory", abs)
	}

	summary := app.Inspector.Inspect(ctx, abs)
	return model.DumpResult{
		SchemaVersion: SchemaVersion,
		Command:       "dump",
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		Path:          abs,
		Summary:       summary,
		Risk:          risk.Score(summary),
		Text:          app.Inspector.Dump(ctx, abs),
	}, nil
}
