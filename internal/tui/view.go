package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

// View renders the TUI.
func (m Model) View() string {
	stack := m.renderStack()
	footer := m.renderFooter()

	if m.width <= 0 || m.height <= 0 {
		if footer == "" {
			return stack
		}
		return stack + "\n" + footer
	}

	hpos, vpos := Anchor(config.Position(m.display.Position))
	bodyHeight := m.height - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, hpos, vpos, stack)
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// renderStack draws the visible toasts and the overflow line.
func (m Model) renderStack() string {
	if len(m.entries) == 0 {
		return ""
	}

	pos := config.Position(m.display.Position)
	hpos, _ := Anchor(pos)
	selected := m.selectedIndex()
	start, end := CalculateOffset(len(m.entries), m.display.MaxVisible, selected)

	boxes := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		boxes = append(boxes, m.renderToast(m.entries[i], i == selected))
	}

	if hidden := len(m.entries) - (end - start); hidden > 0 {
		more := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Colors.Muted)).
			Width(m.toastWidth()).
			Align(hpos).
			Render(fmt.Sprintf("+%d more", hidden))
		if IsBottom(pos) {
			boxes = append([]string{more}, boxes...)
		} else {
			boxes = append(boxes, more)
		}
	}

	return lipgloss.JoinVertical(hpos, boxes...)
}

func (m Model) toastWidth() int {
	w := m.display.Width
	if w <= 0 {
		w = config.DefaultWidth
	}
	if m.width > 0 && w > m.width {
		w = m.width
	}
	return w
}

// renderToast draws a single toast box.
func (m Model) renderToast(e model.Entry, selected bool) string {
	n := e.Notification
	colors := m.theme.Colors
	accent := m.theme.ColorFor(n.Color)

	borderColor := lipgloss.Color(colors.Border)
	if n.Color != model.ColorNone {
		borderColor = accent
	}
	if selected {
		borderColor = lipgloss.Color(colors.Accent)
	}

	// Border and padding take four columns.
	inner := max(m.toastWidth()-4, 1)

	title := n.Title
	if m.theme.ShowIcons {
		if g := n.Icon.Glyph(); g != "" {
			title = g + " " + title
		}
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Width(inner).Render(title),
	}
	if n.Content != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors.Foreground)).
			Width(inner).
			Render(n.Content))
	}

	meta := age(n, m.now())
	if n.HasAction() {
		meta = "[enter] " + n.Action.Label + "  " + meta
	}
	lines = append(lines, lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Muted)).
		Width(inner).
		Render(meta))

	style := lipgloss.NewStyle().
		Border(m.theme.BorderStyle()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(inner + 2)
	if colors.Background != "" {
		style = style.Background(lipgloss.Color(colors.Background))
	}
	if e.Phase == model.PhaseLeaving {
		style = style.Faint(true)
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Colors.Muted))
		if m.statusErr {
			style = style.Foreground(lipgloss.Color(m.theme.Colors.Failure))
		}
		return style.Render(m.statusMsg)
	}
	if m.showHelp {
		return m.help.View(m.keys)
	}
	return ""
}

// age renders how long ago n was created, e.g. "3 seconds ago".
func age(n model.Notification, now time.Time) string {
	if n.Age(now) < time.Second {
		return "now"
	}
	return humanize.RelTime(n.CreatedAt, now, "ago", "from now")
}
