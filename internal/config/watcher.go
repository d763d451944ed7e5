package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/snipline/snipline/internal/log"
)

// DefaultDebounce is how long the watcher waits for writes to settle
// before reloading. Editors often save with several operations in
// quick succession.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the freshly loaded configuration after a change.
type Handler func(Config)

// Watcher reloads the configuration file when it changes on disk. The
// parent directory is watched rather than the file itself, since many
// editors save by renaming a temporary file over the original.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	handler  Handler
	logger   *log.Logger
	debounce time.Duration

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// WatchOption configures a watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the settle delay before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watch diagnostics.
func WithWatchLogger(logger *log.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watch starts watching the configuration at path. The handler is
// called with the reloaded configuration after each change; a change
// that fails to load is logged and skipped, keeping the previous
// configuration in effect.
func Watch(path string, handler Handler, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		handler:  handler,
		logger:   log.Null,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for its goroutine to finish.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch: %v", err)
		}
	}
}

// relevant reports whether the event touches the watched file in a way
// that warrants a reload.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped: %v", err)
		return
	}
	w.logger.Info("config reloaded from %s", w.path)
	w.handler(cfg)
}
