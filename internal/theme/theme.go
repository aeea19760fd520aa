// Package theme maps semantic notification colors to terminal colors.
// Palettes are TOML files, bundled or placed in the user's themes directory.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

// ErrNotFound is returned when no bundled or user palette has the requested name.
var ErrNotFound = errors.New("theme not found")

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Palette holds the colors of a theme. Values are "#rrggbb" or an ANSI
// color number; empty means the terminal default.
type Palette struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Border     string `toml:"border"`
	Accent     string `toml:"accent"`
	Muted      string `toml:"muted"`
	Success    string `toml:"success"`
	Failure    string `toml:"failure"`
	Warning    string `toml:"warning"`
	Info       string `toml:"info"`
}

// file is the on-disk form of a theme.
type file struct {
	Name      string  `toml:"name"`
	Extends   string  `toml:"extends"`
	Border    string  `toml:"border"`
	ShowIcons *bool   `toml:"show_icons"`
	Colors    Palette `toml:"colors"`
}

// Theme is a resolved palette.
type Theme struct {
	Name      string
	Path      string // empty for bundled themes
	Border    string // rounded, normal, thick, double or hidden
	ShowIcons bool
	Colors    Palette
	IsBundled bool
}

// Default returns the bundled default theme.
func Default() *Theme {
	t, err := resolve(DefaultThemeName, "", nil)
	if err != nil {
		panic(fmt.Sprintf("bundled default theme is invalid: %v", err))
	}
	return t
}

// ColorFor maps a notification color to a terminal color. Semantic colors
// use the palette, "#hex" passes through and anything else is the accent.
func (t *Theme) ColorFor(c model.Color) lipgloss.Color {
	switch c {
	case model.ColorSuccess:
		return lipgloss.Color(t.Colors.Success)
	case model.ColorFailure:
		return lipgloss.Color(t.Colors.Failure)
	case model.ColorWarning:
		return lipgloss.Color(t.Colors.Warning)
	case model.ColorInfo:
		return lipgloss.Color(t.Colors.Info)
	}
	if c.IsHex() {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(t.Colors.Accent)
}

// BorderStyle returns the lipgloss border for the theme.
func (t *Theme) BorderStyle() lipgloss.Border {
	switch t.Border {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// Validate checks that every palette value is a color lipgloss understands.
func (t *Theme) Validate() error {
	fields := map[string]string{
		"foreground": t.Colors.Foreground,
		"background": t.Colors.Background,
		"border":     t.Colors.Border,
		"accent":     t.Colors.Accent,
		"muted":      t.Colors.Muted,
		"success":    t.Colors.Success,
		"failure":    t.Colors.Failure,
		"warning":    t.Colors.Warning,
		"info":       t.Colors.Info,
	}
	for field, value := range fields {
		if !validColor(value) {
			return fmt.Errorf("theme %s: invalid %s color %q", t.Name, field, value)
		}
	}
	switch t.Border {
	case "", "rounded", "normal", "thick", "double", "hidden":
	default:
		return fmt.Errorf("theme %s: unknown border %q", t.Name, t.Border)
	}
	return nil
}

func validColor(s string) bool {
	if s == "" || hexColor.MatchString(s) {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}

// ThemesDir returns the user themes directory.
func ThemesDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "themes"), nil
}

// resolve loads a theme by name, user directory first, and applies its
// extends chain. seen guards against cycles. A user theme extending its own
// name extends the bundled theme it overrides.
func resolve(name, themesDir string, seen map[string]bool) (*Theme, error) {
	if seen == nil {
		seen = make(map[string]bool)
	}

	data, path, err := read(name, themesDir)
	if err != nil {
		return nil, err
	}

	key := path
	if key == "" {
		key = "bundled:" + name
	}
	if seen[key] {
		return nil, fmt.Errorf("theme %s: circular extends", name)
	}
	seen[key] = true

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}

	t := &Theme{ShowIcons: true}
	if f.Extends != "" {
		baseDir := themesDir
		if f.Extends == name {
			baseDir = ""
		}
		base, err := resolve(f.Extends, baseDir, seen)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		*t = *base
	}

	t.Name = name
	t.Path = path
	t.IsBundled = path == ""
	if f.Border != "" {
		t.Border = f.Border
	}
	if f.ShowIcons != nil {
		t.ShowIcons = *f.ShowIcons
	}
	overlay(&t.Colors, f.Colors)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// read returns the palette file contents and, for user themes, its path.
func read(name, themesDir string) ([]byte, string, error) {
	if themesDir != "" {
		path := filepath.Join(themesDir, name+".toml")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read theme %s: %w", path, err)
		}
	}
	if data, ok := GetEmbeddedTheme(name); ok {
		return data, "", nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func overlay(dst *Palette, src Palette) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.Border, src.Border)
	set(&dst.Accent, src.Accent)
	set(&dst.Muted, src.Muted)
	set(&dst.Success, src.Success)
	set(&dst.Failure, src.Failure)
	set(&dst.Warning, src.Warning)
	set(&dst.Info, src.Info)
}
