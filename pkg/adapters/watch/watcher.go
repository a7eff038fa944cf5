// Package watch re-runs a callback when a source file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/scribe/internal/logging"
)

// DefaultDebounce coalesces editor save bursts into one callback.
const DefaultDebounce = 200 * time.Millisecond

// Handler is invoked with the watched path after changes settle.
// A returned error is logged; watching continues.
type Handler func(ctx context.Context, path string) error

// Watcher observes one file. The parent directory is watched so that
// editors that save by rename are still seen.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	started  bool
	active   bool
	events   int
	triggers int
	failures int
	lastErr  string
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logging.OrNop(l) }
}

// New creates a Watcher for path.
func New(path string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching in the background and returns once the watch is
// registered. Watching stops when ctx is done; Done is closed afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.handler == nil {
		return errors.New("watch: nil handler")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		_ = fsw.Close()
		return errors.New("watch: already started")
	}
	w.started, w.active = true, true
	w.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(w.done)
		defer w.setActive(false)
		defer fsw.Close()
		return w.loop(ctx, fsw)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.logger.Error("watcher stopped", "path", w.path, "error", err)
	}))
	return nil
}

// Run is Start followed by waiting for ctx to end.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-w.done
	return nil
}

// Done is closed when the background loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			w.mu.Lock()
			w.events++
			w.mu.Unlock()
			timer.Reset(w.debounce)

		case <-timer.C:
			w.fire(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) fire(ctx context.Context) {
	err := w.handler(ctx, w.path)

	w.mu.Lock()
	w.triggers++
	if err != nil {
		w.failures++
		w.lastErr = err.Error()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("watch handler failed", "path", w.path, "error", err)
	}
}

func (w *Watcher) setActive(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = v
}

// State exposes internal state for observability.
type State struct {
	Path      string        `json:"path"`
	Active    bool          `json:"active"`
	Debounce  time.Duration `json:"debounce"`
	Events    int           `json:"events"`
	Triggers  int           `json:"triggers"`
	Failures  int           `json:"failures"`
	LastError string        `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{
		Path:      w.path,
		Active:    w.active,
		Debounce:  w.debounce,
		Events:    w.events,
		Triggers:  w.triggers,
		Failures:  w.failures,
		LastError: w.lastErr,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
