package common

import (
	"context"
	"time"

	"metascrub/internal/domain/model"
	"metascrub/internal/infra/logging"
)

// CleanRecord carries what is known about one processed pair.
type CleanRecord struct {
	PlanID    string
	Strategy  model.CleanStrategy
	Mode      model.CleanMode
	SizeBytes int64
	Duration  time.Duration
	DryRun    bool
}

func LogCleanResult(ctx context.Context, logger logging.Logger, rec CleanRecord, res model.CleanResult) error {
	entry := model.OperationLogEntry{
		Timestamp:  time.Now().UTC(),
		PlanID:     rec.PlanID,
		Command:    "clean",
		Action:     "clean",
		Strategy:   string(rec.Strategy),
		Mode:       string(rec.Mode),
		Path:       res.Source,
		Dest:       res.Dest,
		Method:     string(res.Method),
		SizeBytes:  rec.SizeBytes,
		Error:      res.Error,
		DurationMS: rec.Duration.Milliseconds(),
		DryRun:     rec.DryRun,
	}
	switch {
	case rec.DryRun:
		entry.Result = "planned"
	case res.Succeeded:
		entry.Result = "success"
	default:
		entry.Result = "failed"
	}
	return logger.Log(ctx, entry)
}

func LogCleanSkip(ctx context.Context, logger logging.Logger, rec CleanRecord, pair model.CleanPair) error {
	return logger.Log(ctx, model.OperationLogEntry{
		Timestamp: time.Now().UTC(),
		PlanID:    rec.PlanID,
		Command:   "clean",
		Action:    "skip",
		Strategy:  string(rec.Strategy),
		Mode:      string(rec.Mode),
		Path:      pair.Source,
		Dest:      pair.Dest,
		Result:    "up_to_date",
		DryRun:    rec.DryRun,
	})
}
