package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastd/internal/config"
)

// IsBottom reports whether the stack is anchored to the bottom of the screen.
func IsBottom(pos config.Position) bool {
	switch pos {
	case config.PositionBottomLeft, config.PositionBottomRight, config.PositionBottomCenter:
		return true
	default:
		return false
	}
}

// Anchor returns the horizontal and vertical placement for pos.
// Unknown positions anchor top-right.
func Anchor(pos config.Position) (lipgloss.Position, lipgloss.Position) {
	v := lipgloss.Top
	if IsBottom(pos) {
		v = lipgloss.Bottom
	}

	switch pos {
	case config.PositionTopLeft, config.PositionBottomLeft:
		return lipgloss.Left, v
	case config.PositionTopCenter, config.PositionBottomCenter:
		return lipgloss.Center, v
	default:
		return lipgloss.Right, v
	}
}

// CalculateOffset returns the first and one-past-last index of the toasts to
// draw when total toasts are live and at most maxVisible fit. The window
// prefers the newest toasts and slides back to keep selected in view.
func CalculateOffset(total, maxVisible, selected int) (int, int) {
	if maxVisible <= 0 || total <= maxVisible {
		return 0, total
	}

	start := total - maxVisible
	if selected >= 0 && selected < start {
		start = selected
	}
	return start, start + maxVisible
}
