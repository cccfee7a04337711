package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/domain/risk"
	"metascrub/internal/infra/filesystem"
)

const SchemaVersion = "1.0"

type Options struct {
	// Progress, when set, receives one event per inspected file.
	Progress func(model.ProgressEvent)
	Excludes []string
}

var scanFiles = filesystem.Scan

type Service struct{}

func NewService() Service { return Service{} }

// Run inspects every supported file below root and aggregates a privacy
// report. Cancellation stops between files and returns what was tallied
// so far. Files are never modified.
func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.ScanResult, error) {
	start := time.Now()
	abs, err := filepath.Abs(root)
	if err != nil {
		return model.ScanResult{}, err
	}
	res := model.ScanResult{
		SchemaVersion: SchemaVersion,
		Command:       "scan",
		Root:          abs,
		Report:        newReport(),
	}

	files, err := scanFiles(ctx, abs, filesystem.ScanOptions{Excludes: opts.Excludes})
	if err != nil {
		if ctx.Err() != nil {
			res.Cancelled = true
			return finish(res, start), nil
		}
		return model.ScanResult{}, fmt.Errorf("enumerate %s: %w", abs, err)
	}

	for i, f := range files {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		summary := summarize(ctx, app, f)
		score := risk.Score(summary)
		add(&res.Report, f, summary, score)

		if opts.Progress != nil {
			s := score
			opts.Progress(model.ProgressEvent{Index: i + 1, Total: len(files), Path: f.Path, Score: &s})
		}
	}

	if app.Cache != nil && !res.Cancelled {
		if n, err := app.Cache.Prune(ctx); err != nil {
			app.L().Debug("cache prune failed", zap.Error(err))
		} else if n > 0 {
			app.L().Debug("pruned cache entries", zap.Int("count", n))
		}
	}
	return finish(res, start), nil
}

func finish(res model.ScanResult, start time.Time) model.ScanResult {
	res.Timestamp = time.Now().UTC()
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// summarize consults the summary cache before inspecting the file.
func summarize(ctx context.Context, app *common.AppContext, f model.MediaFile) model.MetadataSummary {
	if app.Cache != nil {
		if s, ok := app.Cache.Get(ctx, f); ok {
			return s
		}
	}
	s, err := app.Inspector.InspectFile(ctx, f.Path)
	if err != nil {
		app.L().Debug("inspect failed", zap.String("path", f.Path), zap.Error(err))
		return s
	}
	if app.Cache != nil {
		if err := app.Cache.Put(ctx, f, s); err != nil {
			app.L().Debug("cache write failed", zap.String("path", f.Path), zap.Error(err))
		}
	}
	return s
}

func newReport() model.ScanReport {
	return model.ScanReport{
		ExtensionCounts: map[string]int{},
		HighRiskFiles:   []model.HighRiskFile{},
	}
}

func add(r *model.ScanReport, f model.MediaFile, s model.MetadataSummary, score model.RiskScore) {
	r.TotalFiles++
	r.ExtensionCounts[f.Ext]++
	if s.HasGPS {
		r.GPSCount++
	}
	if s.HasAuthor {
		r.AuthorCount++
	}
	if s.HasAIMarker {
		r.AICount++
	}
	if score.Surfaced() {
		r.HighRiskFiles = append(r.HighRiskFiles, model.HighRiskFile{
			Filename: filepath.Base(f.Path),
			Path:     f.Path,
			Score:    score.Score,
			Severity: score.Severity,
			Details:  score.Details,
		})
	}
}
