package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Default timings for Watcher.
const (
	DefaultDebounce     = 100 * time.Millisecond
	DefaultPollInterval = 500 * time.Millisecond
)

// Watcher reports changes to a fixed set of files.
type Watcher struct {
	paths        map[string]struct{}
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	logger       *slog.Logger
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long to wait for further events before reporting.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the interval of the polling fallback.
func WithPollInterval(d time.Duration) WatchOption {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithPolling disables fsnotify and always polls.
func WithPolling() WatchOption {
	return func(w *Watcher) { w.forcePoll = true }
}

// WithWatchLogger sets the logger for watch errors.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a Watcher for the given files. The files need not
// exist yet; their directories must.
func NewWatcher(paths []string, opts ...WatchOption) (*Watcher, error) {
	w := &Watcher{
		paths:        make(map[string]struct{}, len(paths)),
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.paths[abs] = struct{}{}
	}
	return w, nil
}

// Watch runs a Watcher for paths until ctx is done.
func Watch(ctx context.Context, paths []string, onChange func(path string), opts ...WatchOption) error {
	w, err := NewWatcher(paths, opts...)
	if err != nil {
		return err
	}
	return w.Run(ctx, onChange)
}

// Run blocks until ctx is done, calling onChange with the absolute path of
// each changed file. Calls happen on the Run goroutine, one at a time.
// fsnotify is used when available, with polling as a fallback.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	if w.forcePoll {
		return w.poll(ctx, onChange)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("fsnotify unavailable, polling", slog.Any("error", err))
		return w.poll(ctx, onChange)
	}
	defer watcher.Close()

	// Watch directories; editors often replace files instead of writing them.
	for _, dir := range w.dirs() {
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("watch directory failed, polling",
				slog.String("dir", dir),
				slog.Any("error", err))
			watcher.Close()
			return w.poll(ctx, onChange)
		}
	}

	return w.watch(ctx, watcher, onChange)
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher, onChange func(string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if _, watched := w.paths[name]; !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			for _, name := range sortedKeys(pending) {
				onChange(name)
			}
			clear(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Usually recoverable (event queue overflow); keep watching.
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

// poll compares file stats on every tick.
func (w *Watcher) poll(ctx context.Context, onChange func(string)) error {
	states := make(map[string]fileState, len(w.paths))
	for name := range w.paths {
		states[name] = stat(name)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			for _, name := range sortedKeys(w.paths) {
				current := stat(name)
				if current == states[name] {
					continue
				}
				states[name] = current
				if current.exists {
					onChange(name)
				}
			}
		}
	}
}

func (w *Watcher) dirs() []string {
	seen := make(map[string]struct{})
	for name := range w.paths {
		seen[filepath.Dir(name)] = struct{}{}
	}
	return sortedKeys(seen)
}

func stat(name string) fileState {
	info, err := os.Stat(name)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
