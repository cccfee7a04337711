package clean

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/domain/rules"
)

const SchemaVersion = "1.0"

type Options struct {
	// Dest defaults to a "<name>_clean" sibling of the source folder.
	Dest     string
	Strategy model.CleanStrategy
	Mode     model.CleanMode
	Progress func(model.ProgressEvent)
}

var newPlanID = uuid.NewString

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, source string, opts Options) (model.CleanCommandResult, error) {
	start := time.Now()
	src, err := filepath.Abs(source)
	if err != nil {
		return model.CleanCommandResult{}, err
	}
	dest := opts.Dest
	if dest == "" {
		dest = rules.DestinationRoot(src)
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return model.CleanCommandResult{}, err
	}

	mode := opts.Mode
	switch mode {
	case "":
		mode = model.ModeSmart
	case model.ModeSmart, model.ModeFull:
	default:
		return model.CleanCommandResult{}, fmt.Errorf("unknown mode %q", mode)
	}

	strategy, err := ResolveStrategy(opts.Strategy, dest)
	if err != nil {
		return model.CleanCommandResult{}, err
	}
	if strategy == model.StrategyOverwrite {
		if err := common.RequireConfirmationOrDryRun(app.Options, "overwrite of "+dest); err != nil {
			return model.CleanCommandResult{}, err
		}
	}

	dryRun := app.Options.DryRun
	plan, err := Plan(ctx, src, dest, strategy, PlanOptions{DryRun: dryRun, Whitelist: app.Config.Whitelist})
	if err != nil {
		return model.CleanCommandResult{}, err
	}

	res := model.CleanCommandResult{
		SchemaVersion: SchemaVersion,
		Command:       "clean",
		DryRun:        dryRun,
		Mode:          mode,
		Plan:          plan,
		Summary: model.CleanSummary{
			Planned: len(plan.Pairs),
			Skipped: len(plan.Skipped),
		},
		Results: make([]model.CleanResult, 0, len(plan.Pairs)),
	}

	rec := common.CleanRecord{PlanID: newPlanID(), Strategy: strategy, Mode: mode, DryRun: dryRun}
	log := app.L().With(zap.String("plan_id", rec.PlanID))
	for _, pair := range plan.Skipped {
		if err := common.LogCleanSkip(ctx, app.OpLog(), rec, pair); err != nil {
			log.Warn("operation log write failed", zap.Error(err))
		}
	}

	for i, pair := range plan.Pairs {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		fileStart := time.Now()
		r := model.CleanResult{Source: pair.Source, Dest: pair.Dest}
		if !dryRun {
			r = app.Cleaner.Clean(ctx, pair.Source, pair.Dest, mode)
			if r.Succeeded {
				res.Summary.Succeeded++
			} else {
				res.Summary.Failed++
				log.Debug("clean failed", zap.String("path", pair.Source), zap.String("error", r.Error))
			}
		}
		res.Results = append(res.Results, r)

		rec.SizeBytes = pair.SizeBytes
		rec.Duration = time.Since(fileStart)
		if err := common.LogCleanResult(ctx, app.OpLog(), rec, r); err != nil {
			log.Warn("operation log write failed", zap.Error(err))
		}

		if opts.Progress != nil {
			out := r
			opts.Progress(model.ProgressEvent{Index: i + 1, Total: len(plan.Pairs), Path: pair.Source, Result: &out})
		}
	}

	res.Timestamp = time.Now().UTC()
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}
