package toast

import (
	"github.com/jmylchreest/toastd/internal/model"
)

// Option sets an optional field of a notification passed to Show.
type Option func(*model.Notification)

// WithContent sets the body text.
func WithContent(content string) Option {
	return func(n *model.Notification) {
		n.Content = content
	}
}

// WithIcon sets the icon.
func WithIcon(icon model.Icon) Option {
	return func(n *model.Notification) {
		n.Icon = icon
	}
}

// WithColor sets the color hint.
func WithColor(color model.Color) Option {
	return func(n *model.Notification) {
		n.Color = color
	}
}

// WithAction attaches an action. A nil action is ignored.
func WithAction(action *model.Action) Option {
	return func(n *model.Notification) {
		if action != nil {
			a := *action
			n.Action = &a
		}
	}
}
