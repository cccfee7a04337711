package clean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"metascrub/internal/domain/model"
	"metascrub/internal/domain/safety"
	"metascrub/internal/infra/filesystem"
)

var ErrDestinationNotEmpty = errors.New("destination is not empty")

var (
	scanFiles  = filesystem.Scan
	isEmptyDir = filesystem.IsEmptyDir
)

type PlanOptions struct {
	// DryRun computes the plan without creating or deleting anything.
	DryRun    bool
	Whitelist []string
}

// ResolveStrategy turns the requested strategy into a concrete one. Auto
// only resolves to fresh; a populated destination needs an explicit
// differential or overwrite.
func ResolveStrategy(requested model.CleanStrategy, destRoot string) (model.CleanStrategy, error) {
	switch requested {
	case "", model.StrategyAuto, model.StrategyFresh:
		empty, err := isEmptyDir(destRoot)
		if err != nil {
			return "", fmt.Errorf("inspect destination %s: %w", destRoot, err)
		}
		if !empty {
			return "", fmt.Errorf("%w: %s (use --strategy differential or --strategy overwrite)", ErrDestinationNotEmpty, destRoot)
		}
		return model.StrategyFresh, nil
	case model.StrategyOverwrite, model.StrategyDifferential:
		return requested, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", requested)
	}
}

// Plan pairs every eligible file below sourceRoot with its mirror below
// destRoot and prepares the destination for the strategy.
func Plan(ctx context.Context, sourceRoot, destRoot string, strategy model.CleanStrategy, opts PlanOptions) (model.CleanPlan, error) {
	src, err := filepath.Abs(sourceRoot)
	if err != nil {
		return model.CleanPlan{}, err
	}
	dst, err := filepath.Abs(destRoot)
	if err != nil {
		return model.CleanPlan{}, err
	}
	if src == dst {
		return model.CleanPlan{}, fmt.Errorf("PATH_BLOCKED: destination equals source %s", src)
	}

	if info, err := os.Stat(src); err != nil {
		return model.CleanPlan{}, fmt.Errorf("enumerate %s: %w", src, err)
	} else if !info.IsDir() {
		return model.CleanPlan{}, fmt.Errorf("enumerate %s: not a directory", src)
	}
	if err := prepare(src, dst, strategy, opts); err != nil {
		return model.CleanPlan{}, err
	}

	files, err := scanFiles(ctx, src, filesystem.ScanOptions{Excludes: []string{dst}})
	if err != nil {
		return model.CleanPlan{}, fmt.Errorf("enumerate %s: %w", src, err)
	}

	plan := model.CleanPlan{
		Strategy:   strategy,
		SourceRoot: src,
		DestRoot:   dst,
		Pairs:      make([]model.CleanPair, 0, len(files)),
		Skipped:    []model.CleanPair{},
	}
	for _, f := range files {
		rel, err := filepath.Rel(src, f.Path)
		if err != nil {
			return model.CleanPlan{}, err
		}
		pair := model.CleanPair{Source: f.Path, Dest: filepath.Join(dst, rel), SizeBytes: f.SizeBytes}
		if strategy == model.StrategyDifferential && upToDate(pair.Dest, f) {
			plan.Skipped = append(plan.Skipped, pair)
			continue
		}
		plan.Pairs = append(plan.Pairs, pair)
	}
	return plan, nil
}

func prepare(src, dst string, strategy model.CleanStrategy, opts PlanOptions) error {
	switch strategy {
	case model.StrategyOverwrite:
		if _, err := safety.ValidateDestination(dst, src, opts.Whitelist); err != nil {
			return err
		}
		if err := safety.RemoveTree(dst, opts.Whitelist, opts.DryRun); err != nil {
			return fmt.Errorf("clear destination: %w", err)
		}
	case model.StrategyFresh, model.StrategyDifferential:
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	if opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	return nil
}

// upToDate reports whether dest exists and is at least as new as the source.
func upToDate(dest string, src model.MediaFile) bool {
	info, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(src.LastModified)
}
