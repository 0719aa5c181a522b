package gui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher applies a TOML or YAML settings file to a Panel whenever the file changes. Keys are
// matched to bound fields ignoring case and underscores, so "sphere_color" drives SphereColor.
//
// The file is decoded on the watcher's goroutine; the resulting values are queued and only
// applied to the panel by Drain, which must run on the goroutine that owns the bound structs.
type Watcher interface {
	// Drain applies every queued change to the panel in arrival order.
	//
	// Returns:
	//   - int: the number of fields set
	Drain() int

	// Close stops watching. Queued changes are dropped.
	//
	// Returns:
	//   - error: from the underlying watcher
	Close() error
}

type watcher struct {
	path  string
	panel Panel
	log   *zap.Logger
	fs    *fsnotify.Watcher

	mu      sync.Mutex
	pending []map[string]any

	done chan struct{}
	wg   sync.WaitGroup
}

var _ Watcher = &watcher{}

// NewWatcher watches path and queues its current contents for the first Drain. The parent
// directory is watched rather than the file, so editors that save by rename are seen.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//   - p: the panel receiving the values
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: if the file type is unsupported or the directory cannot be watched
func NewWatcher(path string, p Panel, options ...WatcherBuilderOption) (Watcher, error) {
	if err := config.Decode(path, nil, &map[string]any{}); errors.Is(err, config.ErrUnsupportedFormat) {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("settings watcher %s: %w", path, err)
	}

	w := &watcher{
		path:  filepath.Clean(path),
		panel: p,
		log:   logger.Log,
		fs:    fs,
		done:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	w.reload()
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("settings watcher", zap.Error(err))
		}
	}
}

// reload decodes the file and queues its values. A missing or half-written file is logged and
// skipped; the next write event retries.
func (w *watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("settings file unreadable", zap.String("path", w.path), zap.Error(err))
		return
	}
	values := map[string]any{}
	if err := config.Decode(w.path, data, &values); err != nil {
		w.log.Warn("settings file invalid", zap.String("path", w.path), zap.Error(err))
		return
	}
	if len(values) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = append(w.pending, values)
	w.mu.Unlock()
}

func (w *watcher) Drain() int {
	w.mu.Lock()
	batches := w.pending
	w.pending = nil
	w.mu.Unlock()

	fields := make(map[string]string)
	for _, f := range w.panel.Fields() {
		fields[normalizeKey(f)] = f
	}

	n := 0
	for _, values := range batches {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			field, ok := fields[normalizeKey(k)]
			if !ok {
				w.log.Debug("settings key has no control", zap.String("key", k))
				continue
			}
			if err := w.panel.Set(field, values[k]); err != nil {
				w.log.Warn("settings value rejected", zap.String("key", k), zap.Error(err))
				continue
			}
			n++
		}
	}
	return n
}

func (w *watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
