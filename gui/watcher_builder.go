package gui

import "go.uber.org/zap"

// WatcherBuilderOption is a functional option applied to a watcher by NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithWatcherLogger sets the logger for unreadable files and rejected values.
func WithWatcherLogger(l *zap.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		w.log = l
	}
}
