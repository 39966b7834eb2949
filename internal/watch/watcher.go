// Package watch notifies the dashboard when a file data source changes on
// disk, so every view re-fetches and the domains are re-discovered.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/flightdash/internal/logging"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// DefaultDebounce coalesces the burst of events editors emit for one save.
const DefaultDebounce = 200 * time.Millisecond

// seriesFiles are the base names a file source reads.
var seriesFiles = map[string]bool{
	series.NameTrajectory: true,
	series.NameLosses:     true,
	series.NameMatrix:     true,
	series.NameFeatures:   true,
}

var seriesExts = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// Watcher watches a data directory and reports batches of changed series
// files after a quiet period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	logger   *logging.Logger

	onChange func([]string)

	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Watcher for dir. The directory must exist.
func New(dir string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path is not a directory: %s", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		watcher:  fw,
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the function called with the sorted base names of
// changed series files.
func (w *Watcher) SetChangeCallback(cb func([]string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) watchLoop() {
	defer close(w.done)

	timer := time.NewTimer(0)
	<-timer.C

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name, ok := seriesName(ev.Name)
			if !ok {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			names := make([]string, 0, len(pending))
			for n := range pending {
				names = append(names, n)
			}
			sort.Strings(names)
			pending = make(map[string]struct{})
			w.notify(names)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err.Error())
		}
	}
}

func (w *Watcher) notify(names []string) {
	w.mu.RLock()
	cb := w.onChange
	w.mu.RUnlock()

	w.logger.Info("data files changed", "dir", w.dir, "files", strings.Join(names, ","))
	if cb != nil {
		cb(names)
	}
}

// seriesName maps a path to the series it holds, ignoring editor temp files
// and anything a file source does not read.
func seriesName(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !seriesExts[ext] {
		return "", false
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return name, seriesFiles[name]
}

// Refresher reloads data after a change.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshOnChange makes every change batch trigger r.Refresh. Refreshes run
// one at a time; stale-fetch suppression in the session drops superseded
// results.
func RefreshOnChange(ctx context.Context, w *Watcher, r Refresher) {
	var mu sync.Mutex
	w.SetChangeCallback(func(names []string) {
		mu.Lock()
		defer mu.Unlock()
		if err := r.Refresh(ctx); err != nil {
			w.logger.Warn("refresh after change failed", "error", err.Error())
		}
	})
}
