// Package config handles toastd configuration loading, validation and hot reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastd/internal/model"
)

// Default configuration values.
const (
	DefaultDwell      = 5000 * time.Millisecond
	DefaultFade       = 1500 * time.Millisecond
	DefaultListenAddr = "127.0.0.1:7455"
	DefaultMaxVisible = 5
	DefaultWidth      = 44
	DefaultVolume     = 80
	DefaultTheme      = "default"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1500ms", "1m", or a quoted integer of milliseconds ("1500").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1500ms' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// Config is the configuration for toastd.
// Loaded from ~/.config/toastd/toastd.toml
type Config struct {
	Timings TimingsConfig `toml:"timings"`
	Display DisplayConfig `toml:"display"`
	DBus    DBusConfig    `toml:"dbus"`
	HTTP    HTTPConfig    `toml:"http"`
	Audio   AudioConfig   `toml:"audio"`
	Theme   ThemeConfig   `toml:"theme"`
}

// TimingsConfig controls the notification lifecycle.
type TimingsConfig struct {
	Dwell Duration `toml:"dwell"` // time spent active, e.g. "5s"
	Fade  Duration `toml:"fade"`  // time spent leaving before removal, e.g. "1500ms"
}

// DisplayConfig contains renderer settings.
type DisplayConfig struct {
	Position   string `toml:"position"`    // "top-right", "top-left", etc.
	MaxVisible int    `toml:"max_visible"` // toasts rendered before collapsing into "+N more"
	Width      int    `toml:"width"`       // toast width in terminal cells
}

// DBusConfig controls the org.freedesktop.Notifications server.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// HTTPConfig controls the local control API.
type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
	Metrics bool   `toml:"metrics"` // expose /metrics
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-color sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Failure string `toml:"failure"`
	Warning string `toml:"warning"`
	Info    string `toml:"info"`
}

// ThemeConfig selects the color palette.
type ThemeConfig struct {
	Name string `toml:"name"` // theme name without .toml extension
}

// Position represents where the toast stack is anchored.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Timings: TimingsConfig{
			Dwell: Duration(DefaultDwell),
			Fade:  Duration(DefaultFade),
		},
		Display: DisplayConfig{
			Position:   string(PositionTopRight),
			MaxVisible: DefaultMaxVisible,
			Width:      DefaultWidth,
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Listen:  DefaultListenAddr,
			Metrics: true,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Theme: ThemeConfig{
			Name: DefaultTheme,
		},
	}
}

// Dir returns the toastd configuration directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toastd"), nil
}

// Path returns the default path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toastd.toml"), nil
}

// Load loads the configuration from path, or from Path() if path is empty.
// If the file doesn't exist, returns the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timings.Dwell <= 0 {
		return fmt.Errorf("%w: dwell must be positive, got %s", ErrInvalid, c.Timings.Dwell.Duration())
	}
	if c.Timings.Fade < 0 {
		return fmt.Errorf("%w: fade must not be negative, got %s", ErrInvalid, c.Timings.Fade.Duration())
	}

	if !slices.Contains(ValidPositions(), Position(c.Display.Position)) {
		return fmt.Errorf("%w: position %q, must be one of: %v", ErrInvalid, c.Display.Position, ValidPositions())
	}
	if c.Display.MaxVisible < 1 || c.Display.MaxVisible > 20 {
		return fmt.Errorf("%w: max_visible must be between 1 and 20, got %d", ErrInvalid, c.Display.MaxVisible)
	}
	if c.Display.Width < 20 || c.Display.Width > 200 {
		return fmt.Errorf("%w: width must be between 20 and 200, got %d", ErrInvalid, c.Display.Width)
	}

	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Listen) == "" {
		return fmt.Errorf("%w: http.listen is required when http is enabled", ErrInvalid)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100, got %d", ErrInvalid, c.Audio.Volume)
	}

	return nil
}

// SoundForColor returns the sound file path configured for a semantic color.
// Expands ~ to home directory. Returns "" for colors without a sound.
func (c *Config) SoundForColor(color model.Color) string {
	var path string
	switch color {
	case model.ColorSuccess:
		path = c.Audio.Sounds.Success
	case model.ColorFailure:
		path = c.Audio.Sounds.Failure
	case model.ColorWarning:
		path = c.Audio.Sounds.Warning
	case model.ColorInfo:
		path = c.Audio.Sounds.Info
	}
	return ExpandPath(path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
