// Package output provides output formatters for live notification entries.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
)

// Formatter formats entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []model.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatLine  FormatType = "line"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// ValidFormats lists the accepted format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatLine, FormatJSON, FormatYAML, FormatIDs}
}

// ParseFormat converts a format name to a FormatType.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	case FormatLine:
		return NewLineFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template      string           // Custom template for line format
	ShowIndex     bool             // Show 1-based index prefix
	ShowAge       bool             // Show humanized age
	ShowPhase     bool             // Show phase marker
	ContentMaxLen int              // Maximum content length (0 = unlimited)
	Separator     string           // Field separator for line format
	Now           func() time.Time // Clock for ages; defaults to time.Now
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:     true,
		ShowAge:       true,
		ShowPhase:     true,
		ContentMaxLen: 80,
		Separator:     " | ",
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// templateData is the value passed to custom line templates.
type templateData struct {
	Index        int
	Notification *model.Notification
	Phase        string
	Age          string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"glyph": func(i model.Icon) string {
			return i.Glyph()
		},
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// age renders how long ago n was created, e.g. "3 seconds ago".
func age(n *model.Notification, now time.Time) string {
	if n.CreatedAt.IsZero() {
		return "unknown"
	}
	if now.Sub(n.CreatedAt) < time.Second {
		return "now"
	}
	return humanize.RelTime(n.CreatedAt, now, "ago", "from now")
}
