package tui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrNoClipboard is returned when no clipboard utility is installed.
var ErrNoClipboard = errors.New("no clipboard command available (install wl-clipboard, xclip or xsel)")

// copyText copies text to the system clipboard.
func copyText(text string) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	return clipboard.WriteAll(text)
}
