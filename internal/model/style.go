package model

import "strings"

// Color is a semantic color hint. Values other than the constants below
// (for example "#ff8800") are passed through to renderers unchanged.
type Color string

// Semantic colors used by the dashboard.
const (
	ColorNone    Color = ""
	ColorSuccess Color = "success"
	ColorFailure Color = "failure"
	ColorWarning Color = "warning"
	ColorInfo    Color = "info"
)

// SemanticColors lists the named colors in display order.
var SemanticColors = []Color{ColorSuccess, ColorFailure, ColorWarning, ColorInfo}

// IsSemantic reports whether c is one of the named colors.
func (c Color) IsSemantic() bool {
	for _, s := range SemanticColors {
		if c == s {
			return true
		}
	}
	return false
}

// IsHex reports whether c is a literal "#rgb" or "#rrggbb" color.
func (c Color) IsHex() bool {
	s := string(c)
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Icon names an icon glyph. Renderers map names they know and ignore the rest.
type Icon string

// Icons used by the dashboard.
const (
	IconNone                Icon = ""
	IconSkullCrossbones     Icon = "skull-crossbones"
	IconNetworkWired        Icon = "network-wired"
	IconCircleCheck         Icon = "circle-check"
	IconCircleInfo          Icon = "circle-info"
	IconTriangleExclamation Icon = "triangle-exclamation"
)

var iconGlyphs = map[Icon]string{
	IconSkullCrossbones:     "☠",
	IconNetworkWired:        "⇄",
	IconCircleCheck:         "✔",
	IconCircleInfo:          "ℹ",
	IconTriangleExclamation: "⚠",
}

// Glyph returns a single-character glyph for the icon, or "" if unknown.
func (i Icon) Glyph() string {
	return iconGlyphs[i]
}
