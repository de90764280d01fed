package logging

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Process-wide log service. Before Init every call is a no-op.
var (
	mu      sync.RWMutex
	current = zap.NewNop()
	sink    *Sink
)

// Init creates the log directory, starts the sink for path and installs the
// process-wide logger. Calling Init again replaces the previous service
// after flushing it.
func Init(path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	s := NewSink(path, os.Stderr)
	l := New(s, opts)

	mu.Lock()
	prev := sink
	sink = s
	current = l
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}

	Info("Logging initialized.")
	return nil
}

// L returns the process-wide logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Path returns the active log file path, or "" before Init
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	if sink == nil {
		return ""
	}
	return sink.Path()
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Infof(format string, args ...any) {
	L().Info(fmt.Sprintf(format, args...))
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

func Errorf(format string, args ...any) {
	L().Error(fmt.Sprintf(format, args...))
}

// LogEnvironment records where and when the job runs
func LogEnvironment() {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	Infof("Hostname: %s", host)
	Infof("Username: %s", username)
	Infof("Start time: %s", time.Now().Format(TimeLayout))
}

// Shutdown flushes every pending entry and stops the sink. It gives up when
// ctx is done; entries still queued at that point are lost.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	s := sink
	l := current
	sink = nil
	current = zap.NewNop()
	mu.Unlock()

	if s == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		_ = l.Sync()
		_ = s.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("log flush interrupted: %w", ctx.Err())
	}
}
