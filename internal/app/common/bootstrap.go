package common

import (
	"context"
	"os"

	"go.uber.org/zap"

	"metascrub/internal/infra/cache"
	"metascrub/internal/infra/cleaner"
	"metascrub/internal/infra/config"
	"metascrub/internal/infra/ffmpeg"
	"metascrub/internal/infra/logging"
	"metascrub/internal/infra/metadata"
	"metascrub/internal/infra/system"
)

var locateTools = system.Locate

// NewAppContext loads configuration, resolves the external tools and wires
// the inspector, cleaner and loggers for one command invocation.
func NewAppContext(ctx context.Context, opts GlobalOptions) (*AppContext, error) {
	if os.Getenv("METASCRUB_NO_OPLOG") == "1" {
		opts.NoOpLog = true
	}

	log, err := logging.NewDiagnosticLogger(opts.Debug, "")
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewStore(opts.ConfigPath).Load(ctx)
	if err != nil {
		return nil, err
	}

	oplog, err := logging.NewOperationLogger(ctx, opts.NoOpLog || opts.DryRun)
	if err != nil {
		log.Warn("operation log unavailable", zap.Error(err))
		oplog = logging.NewNoopLogger()
	}

	tools := locateTools(cfg.FFmpeg, cfg.FFprobe)
	log.Debug("external tools", zap.String("ffmpeg", tools.FFmpeg), zap.String("ffprobe", tools.FFprobe))

	app := &AppContext{
		Options: opts,
		Config:  cfg,
		Logger:  oplog,
		Log:     log,
		Tools:   tools,
		Inspector: metadata.NewInspector(ffmpeg.NewProber(tools.FFprobe), metadata.Options{
			ProbeTimeout: cfg.ProbeTimeout,
			DumpTimeout:  cfg.DumpTimeout,
			Log:          log,
		}),
		Cleaner: cleaner.New(ffmpeg.NewRemuxer(tools.FFmpeg), cleaner.Options{
			JPEGQuality: cfg.JPEGQuality,
			Log:         log,
		}),
	}

	if cfg.Cache {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			log.Warn("summary cache disabled", zap.String("path", cfg.CachePath), zap.Error(err))
		} else {
			app.Cache = c
		}
	}
	return app, nil
}
