package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"metascrub/internal/domain/model"
	"metascrub/internal/infra/config"
)

const operationLogName = "operations.log"

// Logger records one JSON line per file touched by a clean run.
type Logger interface {
	Log(ctx context.Context, entry model.OperationLogEntry) error
}

type noopLogger struct{}

func (noopLogger) Log(context.Context, model.OperationLogEntry) error { return nil }

func NewNoopLogger() Logger { return noopLogger{} }

type operationLogger struct {
	mu   sync.Mutex
	file *os.File
}

// OperationLogPath returns where NewOperationLogger appends entries.
func OperationLogPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, operationLogName), nil
}

func NewOperationLogger(ctx context.Context, disabled bool) (Logger, error) {
	_ = ctx
	if disabled {
		return noopLogger{}, nil
	}

	path, err := OperationLogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &operationLogger{file: f}, nil
}

func (l *operationLogger) Log(_ context.Context, entry model.OperationLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = l.file.Write(append(b, '\n'))
	return err
}
