// Package watch imports result lists dropped into a directory.
//
// Timing software on race day rewrites the same file many times a minute.
// Watcher waits until a file has been quiet for the debounce interval before
// handing it over, so a half-written file is not read.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must be unchanged before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// DefaultPattern selects the files handled.
const DefaultPattern = "*.xml"

// Handler imports one settled file. Errors are logged and counted; the
// watcher keeps running.
type Handler func(ctx context.Context, path string) error

// Stats counts watcher activity.
type Stats struct {
	Events        int
	Handled       int
	Failed        int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches one directory. Files already present when it starts are
// handled as if they had just been written.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	pattern     string
	debounceDur time.Duration
	handler     Handler
	log         *zap.Logger
	pending     map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet interval. Values <= 0 are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithPattern sets the filepath.Match pattern for file names.
func WithPattern(pattern string) Option {
	return func(w *Watcher) {
		if pattern != "" {
			w.pattern = pattern
		}
	}
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New creates a watcher for dir. It does not start watching.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch %s: nil handler", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:     fw,
		dir:         dir,
		pattern:     DefaultPattern,
		debounceDur: DefaultDebounce,
		handler:     handler,
		log:         zap.NewNop(),
		pending:     make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if _, err := filepath.Match(w.pattern, ""); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch pattern %q: %w", w.pattern, err)
	}
	return w, nil
}

// Start begins watching in the background. It returns once the directory is
// being watched. Calling Start on a running watcher does nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching directory", zap.String("dir", w.dir), zap.String("pattern", w.pattern))

	w.enqueueExisting()

	go w.run(ctx)
	return nil
}

// Stop stops watching and waits for the loop to exit. A file being handled
// is finished first.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Error("close watcher", zap.Error(err))
	}
	w.log.Info("watcher stopped", zap.String("dir", w.dir))
}

// Done is closed when the watch loop has exited, either after Stop or when
// the Start context was cancelled.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, _ := filepath.Match(w.pattern, filepath.Base(path))
	return ok
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	// Removes and renames away leave nothing to import.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.log.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	now := time.Now()
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = now
	w.pending[event.Name] = now
	w.mu.Unlock()
}

func (w *Watcher) enqueueExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("scan directory", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		w.pending[filepath.Join(w.dir, e.Name())] = now
	}
}

// processSettled hands every file quiet for the debounce interval to the
// handler, in name order.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(settled)
	for _, path := range settled {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			w.log.Debug("file gone before import", zap.String("path", path))
			continue
		}

		err := w.handler(ctx, path)
		w.mu.Lock()
		if err != nil {
			w.stats.Failed++
		} else {
			w.stats.Handled++
		}
		w.mu.Unlock()
		if err != nil {
			w.log.Warn("handle file", zap.String("path", path), zap.Error(err))
		}
	}
}
