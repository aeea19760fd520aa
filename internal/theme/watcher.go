package theme

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches the user themes directory and reloads the current theme
// when any palette file changes, since the current theme may extend it.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	loader   *Loader
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	debounce time.Duration
	onChange func(*Theme)
	onError  func(error)
	done     chan struct{}
}

// NewWatcher creates a watcher for the loader's themes directory.
func NewWatcher(loader *Loader, onChange func(*Theme), onError func(error), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		loader:   loader,
		debounce: DefaultDebounce,
		onChange: onChange,
		onError:  onError,
	}
}

// Start begins watching. A missing themes directory is not an error; there
// is simply nothing to watch.
func (w *Watcher) Start() error {
	dir := w.loader.ThemesDir()
	if dir == "" {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		w.logger.Debug("themes directory not watched", "dir", dir, "error", err)
		return nil
	}

	w.mu.Lock()
	w.fsw = fsw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.watch(fsw, w.done)
	w.logger.Debug("theme watcher started", "dir", dir)
	return nil
}

func (w *Watcher) watch(fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".toml") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	t, err := w.loader.Reload()
	if err != nil {
		w.logger.Warn("theme reload failed", "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.logger.Info("theme reloaded", "name", t.Name)
	if w.onChange != nil {
		w.onChange(t)
	}
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, done := w.fsw, w.done
	w.fsw = nil
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	err := fsw.Close()
	<-done
	return err
}
