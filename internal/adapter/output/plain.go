package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/toastd/internal/model"
)

// PlainFormatter formats entries as a two-line human readable listing.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Entry) error {
	now := f.opts.now()
	for i := range entries {
		e := &entries[i]
		n := &e.Notification

		var sb strings.Builder
		if f.opts.ShowIndex {
			fmt.Fprintf(&sb, "[%d] ", i+1)
		}
		if f.opts.ShowPhase && e.Phase == model.PhaseLeaving {
			sb.WriteString("~ ")
		}
		if g := n.Icon.Glyph(); g != "" {
			sb.WriteString(g + " ")
		}
		sb.WriteString(n.Title)
		if n.Color != model.ColorNone {
			fmt.Fprintf(&sb, " <%s>", n.Color)
		}
		if f.opts.ShowAge {
			fmt.Fprintf(&sb, " (%s)", age(n, now))
		}
		sb.WriteString("\n")

		if n.Content != "" {
			sb.WriteString("    " + n.ContentTruncated(f.opts.ContentMaxLen) + "\n")
		}
		if n.HasAction() {
			fmt.Fprintf(&sb, "    [%s]\n", n.Action.Label)
		}

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// LineFormatter formats one entry per line, suitable for dmenu-style pickers.
type LineFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewLineFormatter creates a line formatter. An invalid custom template is
// ignored in favor of the default layout.
func NewLineFormatter(opts FormatterOptions) *LineFormatter {
	f := &LineFormatter{opts: opts}
	if f.opts.Separator == "" {
		f.opts.Separator = " | "
	}

	if opts.Template != "" {
		tmpl, err := template.New("line").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes one line per entry.
func (f *LineFormatter) Format(w io.Writer, entries []model.Entry) error {
	now := f.opts.now()
	for i := range entries {
		e := &entries[i]
		n := &e.Notification

		if f.template != nil {
			data := templateData{
				Index:        i + 1,
				Notification: n,
				Phase:        e.Phase.String(),
				Age:          age(n, now),
			}
			if err := f.template.Execute(w, data); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}

		var parts []string
		if f.opts.ShowIndex {
			parts = append(parts, fmt.Sprintf("%d", i+1))
		}
		if f.opts.ShowPhase {
			parts = append(parts, e.Phase.String())
		}
		title := n.Title
		if n.Content != "" {
			title += " - " + n.ContentTruncated(f.opts.ContentMaxLen)
		}
		parts = append(parts, title)
		if f.opts.ShowAge {
			parts = append(parts, age(n, now))
		}

		if _, err := fmt.Fprintln(w, strings.Join(parts, f.opts.Separator)); err != nil {
			return err
		}
	}
	return nil
}
