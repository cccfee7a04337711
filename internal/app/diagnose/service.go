package diagnose

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/infra/filesystem"
)

const (
	SchemaVersion = "1.0"
	MaxFiles      = 5
	MaxLines      = 20
)

var scanFiles = filesystem.Scan

type Service struct{}

func NewService() Service { return Service{} }

// Run dumps the first few image and video files of a folder as a quick
// look at what metadata they carry.
func (Service) Run(ctx context.Context, app *common.AppContext, root string) (model.DiagnoseResult, error) {
	start := time.Now()
	abs, err := filepath.Abs(root)
	if err != nil {
		return model.DiagnoseResult{}, err
	}
	files, err := scanFiles(ctx, abs, filesystem.ScanOptions{})
	if err != nil {
		return model.DiagnoseResult{}, fmt.Errorf("enumerate %s: %w", abs, err)
	}

	res := model.DiagnoseResult{
		SchemaVersion: SchemaVersion,
		Command:       "diagnose",
		Root:          abs,
		Entries:       []model.DiagnoseEntry{},
	}
	for _, f := range files {
		if len(res.Entries) == MaxFiles || ctx.Err() != nil {
			break
		}
		if f.Kind != model.KindImage && f.Kind != model.KindVideo {
			continue
		}
		res.Entries = append(res.Entries, excerpt(f.Path, app.Inspector.Dump(ctx, f.Path)))
	}

	res.Timestamp = time.Now().UTC()
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

// excerpt keeps the non-empty lines among the first MaxLines of a dump,
// minus the header.
func excerpt(path, dump string) model.DiagnoseEntry {
	lines := strings.Split(dump, "\n")
	e := model.DiagnoseEntry{Path: path, Lines: []string{}, Truncated: len(lines) > MaxLines}
	if e.Truncated {
		lines = lines[:MaxLines]
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.Contains(line, "File:") || strings.Contains(line, "Size:") {
			continue
		}
		e.Lines = append(e.Lines, line)
	}
	return e
}
