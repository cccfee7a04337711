package compare

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/domain/rules"
)

const SchemaVersion = "1.0"

// MaxLevels bounds how many ancestors are tried when locating the cleaned
// counterpart of a file.
const MaxLevels = 5

const NotFoundText = "No cleaned file found"

type Service struct{}

func NewService() Service { return Service{} }

// Run dumps a file and, when one exists, its cleaned counterpart.
func (Service) Run(ctx context.Context, app *common.AppContext, path string) (model.CompareResult, error) {
	start := time.Now()
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.CompareResult{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return model.CompareResult{}, err
	}

	res := model.CompareResult{
		SchemaVersion: SchemaVersion,
		Command:       "compare",
		Original:      abs,
		Before:        app.Inspector.Dump(ctx, abs),
		After:         NotFoundText,
	}
	if cleaned, ok := FindCleaned(abs); ok {
		res.Cleaned = cleaned
		res.After = app.Inspector.Dump(ctx, cleaned)
	}
	res.Timestamp = time.Now().UTC()
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

// FindCleaned walks up from the file's folder looking for a sibling
// "<dir>_clean" tree that holds the same relative path.
func FindCleaned(path string) (string, bool) {
	cur := filepath.Dir(path)
	rel := filepath.Base(path)
	for i := 0; i < MaxLevels; i++ {
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		candidate := filepath.Join(parent, filepath.Base(cur)+rules.CleanMarker, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		rel = filepath.Join(filepath.Base(cur), rel)
		cur = parent
	}
	return "", false
}
