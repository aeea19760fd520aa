package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// invalidator drops cached sounds.
type invalidator interface {
	InvalidateCache(path string)
}

// Watcher watches sound files and invalidates the decoded copy when one
// changes on disk, so edited chimes are picked up without a restart.
type Watcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	cache   invalidator
	fsw     *fsnotify.Watcher
	files   map[string]struct{}
	dirs    map[string]struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher that invalidates entries in cache.
func NewWatcher(cache invalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		cache:  cache,
		files:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
	}
}

// Start begins watching. Paths added with Watch before Start are included.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create sound watcher: %w", err)
	}
	w.fsw = fsw
	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("failed to watch sound directory", "dir", dir, "error", err)
		}
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.loop(fsw, w.stopCh, w.doneCh)

	w.logger.Debug("sound watcher started", "files", len(w.files))
	return nil
}

// Watch adds a sound file. Its directory is watched so that editors which
// replace files by rename are noticed.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.files[path] = struct{}{}
	if _, ok := w.dirs[dir]; ok {
		return
	}
	w.dirs[dir] = struct{}{}
	if w.fsw != nil {
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("failed to watch sound directory", "dir", dir, "error", err)
		}
	}
}

// Reset forgets every watched file. Directories stay registered.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[string]struct{})
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	<-done
	_ = fsw.Close()
	w.logger.Debug("sound watcher stopped")
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)

			w.mu.Lock()
			_, watched := w.files[path]
			w.mu.Unlock()

			if watched {
				w.logger.Debug("sound file changed, invalidating cache", "path", path)
				w.cache.InvalidateCache(path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("sound watcher error", "error", err)
		}
	}
}
