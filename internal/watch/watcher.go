// pattern: Imperative Shell

package watch

import (
	"os"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"arbor/internal/logging"
)

// defaultQuietPeriod is how long the path set must stay quiet before the
// accumulated changes are delivered. A single git operation touches many
// files in a burst; one notification per burst is the contract.
const defaultQuietPeriod = 300 * time.Millisecond

// Watcher watches a dynamic set of directories and delivers debounced,
// coalesced change notifications to a single handler. The handler runs on
// the watcher's goroutine; consumers marshal to their own context.
type Watcher struct {
	logger *logging.ScopedLogger
	fs     *fsnotify.Watcher

	mu        sync.Mutex
	watched   map[string]struct{}
	pending   map[string]struct{}
	handler   func(changed map[string]struct{})
	debounced func(func())
	closed    bool

	done chan struct{}
}

// New creates a watcher with the production quiet period.
func New(logger *logging.ScopedLogger) (*Watcher, error) {
	return newWatcher(defaultQuietPeriod, logger)
}

func newWatcher(quiet time.Duration, logger *logging.ScopedLogger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		logger:    logger,
		fs:        fs,
		watched:   make(map[string]struct{}),
		pending:   make(map[string]struct{}),
		debounced: debounce.New(quiet),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// SetChangeHandler registers the single subscriber. Must be called before
// the first UpdateWatchedPaths to avoid dropping early notifications.
func (w *Watcher) SetChangeHandler(fn func(changed map[string]struct{})) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = fn
}

// UpdateWatchedPaths replaces the watched directory set. Paths that do not
// currently exist are filtered out. When the filtered set equals the
// currently-watched set nothing happens, avoiding a needless resubscription.
func (w *Watcher) UpdateWatchedPaths(paths map[string]struct{}) {
	filtered := make(map[string]struct{}, len(paths))
	for p := range paths {
		if _, err := os.Stat(p); err == nil {
			filtered[p] = struct{}{}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || setsEqual(w.watched, filtered) {
		return
	}

	for p := range w.watched {
		if _, keep := filtered[p]; !keep {
			if err := w.fs.Remove(p); err != nil {
				w.logger.Debug("failed to unwatch path", "path", p, "error", err)
			}
		}
	}
	for p := range filtered {
		if _, had := w.watched[p]; !had {
			if err := w.fs.Add(p); err != nil {
				w.logger.Warn("failed to watch path", "path", p, "error", err)
			}
		}
	}

	w.watched = filtered
	w.logger.Debug("watched paths updated", "count", len(filtered))
}

// Close stops the watcher. Pending (undelivered) changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.mu.Lock()
			w.pending[ev.Name] = struct{}{}
			w.mu.Unlock()
			w.debounced(w.flush)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", "error", err)
			// Deliver an empty set: the consumer treats it as "unknown,
			// be safe" and does a full refresh.
			w.debounced(w.flush)
		}
	}
}

// flush delivers the accumulated pending set as one callback invocation and
// clears it. Runs after the quiet period with no further events.
func (w *Watcher) flush() {
	w.mu.Lock()
	changed := w.pending
	w.pending = make(map[string]struct{})
	handler := w.handler
	closed := w.closed
	w.mu.Unlock()

	if closed || handler == nil {
		return
	}
	handler(changed)
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
