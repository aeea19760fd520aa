// Package model defines the core data structures for toastd.
package model

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Notification is a transient toast shown to the user.
// Icon, Color and Action are opaque to the lifecycle manager; renderers interpret them.
type Notification struct {
	ID      string  `json:"id" yaml:"id"`
	Title   string  `json:"title" yaml:"title"`
	Content string  `json:"content,omitempty" yaml:"content,omitempty"`
	Icon    Icon    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color   Color   `json:"color,omitempty" yaml:"color,omitempty"`
	Action  *Action `json:"action,omitempty" yaml:"action,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Action is an optional user-invocable operation attached to a notification.
type Action struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`

	// Run performs the side effect. It is never serialized.
	Run func(ctx context.Context) error `json:"-" yaml:"-"`
}

// Validation errors.
var (
	ErrEmptyID    = errors.New("id cannot be empty")
	ErrEmptyTitle = errors.New("title cannot be empty")
)

// NewID returns a fresh notification id.
// ULIDs from ulid.Make are monotonic within the process, so ids are never reused.
func NewID() string {
	return ulid.Make().String()
}

// Validate checks that the notification has all required fields.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// HasAction reports whether the notification carries an action with a label.
func (n *Notification) HasAction() bool {
	return n.Action != nil && n.Action.Label != ""
}

// Age returns how long ago the notification was created, relative to now.
func (n *Notification) Age(now time.Time) time.Duration {
	if n.CreatedAt.IsZero() || now.Before(n.CreatedAt) {
		return 0
	}
	return now.Sub(n.CreatedAt)
}

// ContentTruncated returns the content collapsed to a single line and
// truncated to maxLen characters, with "..." appended when cut.
// A maxLen of zero or less means unlimited.
func (n *Notification) ContentTruncated(maxLen int) string {
	content := []rune(strings.Join(strings.Fields(n.Content), " "))
	if maxLen <= 0 || len(content) <= maxLen {
		return string(content)
	}
	if maxLen <= 3 {
		return string(content[:maxLen])
	}
	return string(content[:maxLen-3]) + "..."
}

// Clone returns a copy of the notification. The action is shared; it is immutable once shown.
func (n *Notification) Clone() *Notification {
	clone := *n
	return &clone
}
