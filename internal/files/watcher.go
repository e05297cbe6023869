package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ganttcli/internal/errors"
)

// RunFunc produces a report. It is called from the watcher loop, one call at
// a time.
type RunFunc func(ctx context.Context) error

// WatchStats tracks watcher activity.
type WatchStats struct {
	Events    int       `json:"events"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	Skipped   int       `json:"skipped"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Watcher re-runs a report whenever one workbook file changes.
type Watcher struct {
	path     string
	dir      string
	name     string
	debounce time.Duration
	run      RunFunc
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	lastMod time.Time
	write   *ownWrite
	stats   WatchStats
}

// ownWrite is a save of the watched workbook made by the running report.
type ownWrite struct {
	opened, saved time.Time
}

// NewWatcher creates a watcher for the workbook at path. The parent directory
// is watched rather than the file so that save-by-rename is seen.
func NewWatcher(path string, debounce time.Duration, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.NewConfigError("watch needs a source workbook path", nil)
	}
	if run == nil {
		return nil, errors.NewConfigError("watch needs a run function", nil)
	}
	if debounce < 0 {
		debounce = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve watch path", err).WithContext("path", path)
	}

	return &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		name:     filepath.Base(abs),
		debounce: debounce,
		run:      run,
		logger:   logger.With(slog.String("component", "watcher"), slog.String("path", abs)),
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// RecordWrite tells the watcher that the running report saved path, starting
// from the version modified at opened and producing the version modified at
// saved. Only such a save is treated as the run's own change. It matches
// workbook.SaveHook.
func (w *Watcher) RecordWrite(path string, opened, saved time.Time) {
	if abs, err := filepath.Abs(path); err != nil || abs != w.path {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.write = &ownWrite{opened: opened, saved: saved}
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() WatchStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run watches until ctx is cancelled. Run failures are logged and counted;
// only a failure to set up the watch is returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewStorageError("failed to create file watcher", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return errors.NewStorageError("failed to watch directory", err).WithContext("dir", w.dir)
	}

	w.mu.Lock()
	w.lastMod = w.modTime()
	w.mu.Unlock()

	w.logger.Info("watching workbook", slog.Duration("debounce", w.debounce))
	w.readyOnce.Do(func() { close(w.ready) })

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.mu.Lock()
			w.stats.Events++
			w.mu.Unlock()
			w.logger.Debug("workbook event", slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			w.fire(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

// fire runs the report unless the file is gone or unchanged since the version
// the last run read.
func (w *Watcher) fire(ctx context.Context) {
	before := w.modTime()

	w.mu.Lock()
	unchanged := before.IsZero() || before.Equal(w.lastMod)
	if unchanged {
		w.stats.Skipped++
	}
	w.write = nil
	w.mu.Unlock()

	if unchanged {
		w.logger.Debug("workbook unchanged, skipping run")
		return
	}

	w.logger.Info("workbook changed, running report")
	err := w.run(ctx)
	after := w.modTime()

	w.mu.Lock()
	defer w.mu.Unlock()
	// The run read the version from before it started. The file on disk only
	// counts as seen when it is exactly the run's own save of that version;
	// any other change re-runs the report on the next event.
	w.lastMod = before
	if own := w.write; own != nil && own.opened.Equal(before) && own.saved.Equal(after) {
		w.lastMod = after
	}
	w.write = nil
	w.stats.Runs++
	w.stats.LastRun = time.Now()
	if err != nil {
		w.stats.Failures++
		w.stats.LastError = err.Error()
		w.logger.Error("watched run failed", slog.String("error", err.Error()))
		return
	}
	w.stats.LastError = ""
}

func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
