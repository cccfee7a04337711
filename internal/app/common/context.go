package common

import (
	"context"

	"go.uber.org/zap"

	"metascrub/internal/domain/model"
	"metascrub/internal/infra/cache"
	"metascrub/internal/infra/config"
	"metascrub/internal/infra/logging"
	"metascrub/internal/infra/system"
)

type contextKey string

const ContextKeyApp contextKey = "appctx"

type GlobalOptions struct {
	DryRun     bool
	Debug      bool
	Yes        bool
	JSON       bool
	NoOpLog    bool
	ConfigPath string
}

// Inspector reads privacy-relevant metadata from a single file.
type Inspector interface {
	Inspect(ctx context.Context, path string) model.MetadataSummary
	// InspectFile returns an error instead of a summary when the file could
	// not be fully read.
	InspectFile(ctx context.Context, path string) (model.MetadataSummary, error)
	Dump(ctx context.Context, path string) string
}

// Cleaner writes a metadata-free copy of src to dst.
type Cleaner interface {
	Clean(ctx context.Context, src, dst string, mode model.CleanMode) model.CleanResult
}

type AppContext struct {
	Options   GlobalOptions
	Config    config.Config
	Logger    logging.Logger
	Log       *zap.Logger
	Tools     system.Tools
	Inspector Inspector
	Cleaner   Cleaner

	// Cache is nil unless the summary cache is enabled.
	Cache *cache.Cache
}

// Close releases the resources held by the context.
func (a *AppContext) Close() error {
	if a == nil {
		return nil
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return a.Cache.Close()
}

// L returns the diagnostic logger, never nil.
func (a *AppContext) L() *zap.Logger {
	if a == nil || a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// OpLog returns the operation logger, never nil.
func (a *AppContext) OpLog() logging.Logger {
	if a == nil || a.Logger == nil {
		return logging.NewNoopLogger()
	}
	return a.Logger
}
