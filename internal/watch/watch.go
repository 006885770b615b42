// Package watch reports changes that other processes make to a file store
// directory.
package watch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"sweatpet/internal/store"
)

// ChangeFunc receives the keys whose record files changed
type ChangeFunc func(ctx context.Context, keys []string)

// Watcher watches one directory for record files and calls onChange once per
// burst of events, after the debounce interval has passed without new ones.
type Watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	dir      string
	keys     map[string]bool
	debounce time.Duration
	onChange ChangeFunc
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   bool
}

// New creates a watcher for the given record keys in dir
func New(dir string, keys []string, debounce time.Duration, onChange ChangeFunc, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}

	return &Watcher{
		fs:       fsw,
		dir:      dir,
		keys:     set,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher stopped")
	}
	if w.running {
		return nil
	}
	if err := w.fs.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.log.Debug("watching store directory", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the watcher. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fs.Close(); err != nil {
		w.log.Error("close watcher", zap.Error(err))
	}
}

// Done is closed when the event loop exits
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		keys := make([]string, 0, len(pending))
		for k := range pending {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		clear(pending)
		w.log.Debug("store changed externally", zap.Strings("keys", keys))
		w.onChange(ctx, keys)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			key, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[key] = true
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-timerC:
			timerC = nil
			flush()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	key, ok := store.KeyForPath(event.Name)
	if !ok || !w.keys[key] {
		return "", false
	}
	return key, true
}
