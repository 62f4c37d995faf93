package filesystem

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultDebounce is the quiet period after the last change before a reload fires.
	DefaultDebounce = 400 * time.Millisecond

	// DefaultMinReloadInterval is the minimum spacing between two reloads.
	DefaultMinReloadInterval = time.Second
)

var (
	// ErrWatcherStarted is returned by Start when the watcher is already running.
	ErrWatcherStarted = errors.New("watcher: already started")

	// ErrWatcherStopped is returned by Start after Stop has been called.
	ErrWatcherStopped = errors.New("watcher: stopped")
)

// Watcher watches document directories and calls onChange once a burst of
// matching file events has settled. Directories are watched one level deep,
// mirroring what Loader scans.
//
// onChange is never invoked concurrently with itself. Events arriving while
// it runs are coalesced into a single follow-up call.
type Watcher struct {
	dirs       []string
	extensions []string
	onChange   func(ctx context.Context)
	debounce   time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	started  bool
	trigger  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger for watcher events.
func WithWatchLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMinReloadInterval overrides DefaultMinReloadInterval. Zero disables
// rate limiting.
func WithMinReloadInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d <= 0 {
			w.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		w.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewWatcher creates a watcher for dirs. Only files matching extensions
// (suffixes or glob patterns, as accepted by Loader) trigger onChange.
func NewWatcher(dirs, extensions []string, onChange func(ctx context.Context), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dirs:       dirs,
		extensions: extensions,
		onChange:   onChange,
		debounce:   DefaultDebounce,
		limiter:    rate.NewLimiter(rate.Every(DefaultMinReloadInterval), 1),
		logger:     zap.NewNop(),
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once every directory is registered; the
// watcher then runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrWatcherStarted
	}
	select {
	case <-w.done:
		return ErrWatcherStopped
	default:
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range w.dirs {
		abs, err := filepath.Abs(dir)
		if err == nil {
			err = fsw.Add(abs)
		}
		if err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", filepath.Base(dir), err)
		}
	}

	w.fsw = fsw
	w.started = true
	w.logger.Debug("watcher started",
		zap.Int("directories", len(w.dirs)),
		zap.Strings("extensions", w.extensions),
		zap.Duration("debounce", w.debounce),
	)

	w.wg.Add(2)
	go w.run(ctx)
	go w.dispatch(ctx)
	return nil
}

// Stop stops watching and waits for an in-flight onChange to return.
// It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		fsw := w.fsw
		w.mu.Unlock()

		if fsw != nil {
			_ = fsw.Close()
		}
		w.wg.Wait()
		w.logger.Debug("watcher stopped")
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			go w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Base(ev.Name)
	if !matchesExtension(name, w.extensions) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("file", name))
	w.schedule()
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
			// A reload is already pending.
		}
	})
}

// dispatch serialises onChange calls and applies the rate limit.
func (w *Watcher) dispatch(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.trigger:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case <-w.done:
				return
			default:
			}
			w.logger.Debug("watcher triggering reload")
			if w.onChange != nil {
				w.onChange(ctx)
			}
		}
	}
}
