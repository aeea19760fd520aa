package audio

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Sink plays sound files. *Player is the speaker-backed implementation.
type Sink interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	InvalidateCache(path string)
	ClearCache()
	Close()
}

// Manager plays the configured chime for each shown notification.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sink    Sink
	watcher *Watcher

	enabled bool
	sounds  map[model.Color]string
}

// NewManager creates a manager for cfg. A nil sink means a speaker-backed Player.
func NewManager(cfg *config.Config, sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NewPlayer(logger)
	}

	m := &Manager{
		logger:  logger,
		sink:    sink,
		watcher: NewWatcher(sink, logger),
		sounds:  make(map[model.Color]string),
	}
	m.apply(cfg)
	return m
}

// apply loads settings from cfg. Missing sound files are skipped with a warning.
func (m *Manager) apply(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}

	sounds := make(map[model.Color]string)
	for _, color := range model.SemanticColors {
		path := cfg.SoundForColor(color)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				m.logger.Warn("sound file not found", "color", color, "path", path)
			} else {
				m.logger.Warn("sound file unreadable", "color", color, "path", path, "error", err)
			}
			continue
		}
		sounds[color] = path
	}

	m.sink.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	m.watcher.Reset()
	for color, path := range sounds {
		m.watcher.Watch(path)
		m.logger.Debug("sound configured", "color", color, "path", path)
	}
}

// Start preloads the configured sounds and watches them for changes.
func (m *Manager) Start() error {
	if !m.Enabled() {
		return nil
	}
	m.preload()
	if err := m.watcher.Start(); err != nil {
		return err
	}
	m.logger.Info("audio started", "sounds", m.soundCount())
	return nil
}

// Stop stops the watcher and releases the sink.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.sink.Close()
}

// Enabled reports whether playback is enabled.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SoundFor returns the sound configured for color, if any.
func (m *Manager) SoundFor(color model.Color) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[color]
	return path, ok
}

// PlayForColor plays the sound configured for color. It is a no-op when
// audio is disabled or no sound is configured for the color.
func (m *Manager) PlayForColor(color model.Color) error {
	if !m.Enabled() {
		return nil
	}
	path, ok := m.SoundFor(color)
	if !ok {
		return nil
	}
	return m.sink.Play(path)
}

// HandleEvent is a toast.Listener that chimes when a notification is shown.
func (m *Manager) HandleEvent(ev toast.Event) {
	if ev.Type != toast.EventShown {
		return
	}
	if err := m.PlayForColor(ev.Notification.Color); err != nil {
		m.logger.Warn("failed to play sound", "color", ev.Notification.Color, "error", err)
	}
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.sink.ClearCache()
	m.apply(cfg)
	if m.Enabled() {
		m.preload()
		if err := m.watcher.Start(); err != nil {
			m.logger.Warn("failed to start sound watcher", "error", err)
		}
	}
	m.logger.Debug("audio config updated", "enabled", m.Enabled())
}

func (m *Manager) preload() {
	m.mu.RLock()
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	m.mu.RUnlock()

	for _, path := range paths {
		if err := m.sink.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

func (m *Manager) soundCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sounds)
}
