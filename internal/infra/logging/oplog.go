package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"optitech/internal/domain/model"
)

type Logger interface {
	Log(ctx context.Context, entry model.OperationLogEntry) error
}

type noopLogger struct{}

func (n noopLogger) Log(context.Context, model.OperationLogEntry) error { return nil }

func NewNoopLogger() Logger { return noopLogger{} }

type operationLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewOperationLogger appends JSON lines to path, creating its directory.
func NewOperationLogger(path string, disabled bool) (Logger, error) {
	if disabled {
		return noopLogger{}, nil
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

func (l *operationLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
