package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Loader resolves themes by name and keeps the current one.
// Resolution order is the user themes directory, then the bundled themes,
// so a user file named like a bundled theme overrides it.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	themesDir string
	name      string // requested name, kept when resolution falls back
	current   *Theme
}

// NewLoader creates a loader. An empty themesDir means ThemesDir().
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if themesDir == "" {
		dir, err := ThemesDir()
		if err != nil {
			logger.Warn("failed to get themes directory", "error", err)
		}
		themesDir = dir
	}

	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		name:      DefaultThemeName,
		current:   Default(),
	}
}

// ThemesDir returns the user themes directory of this loader.
func (l *Loader) ThemesDir() string {
	return l.themesDir
}

// Load makes name the current theme. If it cannot be resolved the default
// theme is used instead and the resolution error is returned alongside it.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	t, err := resolve(name, l.themesDir, nil)
	if err != nil {
		l.logger.Warn("failed to load theme, using default", "theme", name, "error", err)
		t = Default()
	} else if t.IsBundled {
		l.logger.Info("loaded bundled theme", "name", name)
	} else {
		l.logger.Info("loaded user theme", "name", name, "path", t.Path)
	}

	l.mu.Lock()
	l.name = name
	l.current = t
	l.mu.Unlock()
	return t, err
}

// Current returns the current theme.
func (l *Loader) Current() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Name returns the most recently requested theme name, which differs from
// Current().Name while a fallback is in use.
func (l *Loader) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

// Reload resolves the requested theme again, picking up edits on disk.
// On failure the previous theme stays current.
func (l *Loader) Reload() (*Theme, error) {
	name := l.Name()

	t, err := resolve(name, l.themesDir, nil)
	if err != nil {
		return l.Current(), err
	}

	l.mu.Lock()
	l.current = t
	l.mu.Unlock()
	return t, nil
}

// ListThemes returns bundled and user theme names, sorted and without duplicates.
func (l *Loader) ListThemes() []string {
	themes := ListEmbeddedThemes()

	if l.themesDir != "" {
		entries, err := os.ReadDir(l.themesDir)
		if err != nil {
			l.logger.Debug("failed to read themes directory", "error", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if name := entry.Name(); filepath.Ext(name) == ".toml" {
				themes = append(themes, strings.TrimSuffix(name, ".toml"))
			}
		}
	}

	slices.Sort(themes)
	return slices.Compact(themes)
}
