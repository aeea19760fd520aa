// Package input provides adapters that read toasts to show from outside
// sources.
package input

import (
	"context"

	"github.com/jmylchreest/toastd/internal/model"
)

// Adapter reads toasts from a source.
type Adapter interface {
	// Name returns the adapter identifier (e.g., "stdin").
	Name() string

	// Import reads the toasts. Returned notifications have no id; the
	// lifecycle manager assigns one when they are shown.
	Import(ctx context.Context) ([]model.Notification, error)
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
