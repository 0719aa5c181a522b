package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.Mutex

	// Log is the process-wide structured logger. It is a no-op logger until Init is called,
	// so packages can log unconditionally from tests.
	Log = zap.NewNop()
)

// Init builds the process-wide logger and replaces Log.
//
// Parameters:
//   - level: the minimum level to emit ("debug", "info", "warn", "error")
//   - development: true for a human-readable console encoder, false for JSON
//
// Returns:
//   - *zap.Logger: the newly installed logger
//   - error: error if the level is unknown or the logger cannot be built
func Init(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	Set(l)
	return l, nil
}

// Set replaces the process-wide logger. A nil logger resets Log to a no-op logger.
//
// Parameters:
//   - l: the logger to install
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

// Sync flushes any buffered log entries. Errors from syncing stderr are ignored.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = Log.Sync()
}
