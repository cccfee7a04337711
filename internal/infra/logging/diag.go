package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDiagnosticLogger returns a console logger at debug level writing to
// outputPath (stderr when empty), or a no-op logger when debug is off.
func NewDiagnosticLogger(debug bool, outputPath string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.DisableStacktrace = true
	if outputPath == "" {
		outputPath = "stderr"
	}
	cfg.OutputPaths = []string{outputPath}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
