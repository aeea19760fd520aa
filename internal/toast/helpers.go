package toast

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/toastd/internal/model"
)

// ErrNoAction is returned by InvokeAction for a notification without an action.
var ErrNoAction = errors.New("notification has no action")

// Titles used by the failure helpers.
const (
	FailedLoadTitle = "Failed to Load"
)

// TryShow shows a notification if n is non-nil. Components that may run
// without a notifier use it instead of checking themselves.
func TryShow(n Notifier, title string, opts ...Option) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Show(title, opts...), true
}

// ReportFailure shows the standard failure toast for a failed load.
func ReportFailure(n Notifier, reason string) string {
	id, _ := TryShow(n, FailedLoadTitle,
		WithContent("There was an error: "+reason),
		WithIcon(model.IconSkullCrossbones),
		WithColor(model.ColorFailure),
	)
	return id
}

// ReportSaveFailure shows a failure toast for an operation that could not complete,
// for example ReportSaveFailure(n, "save event", err).
func ReportSaveFailure(n Notifier, what string, err error) string {
	content := "Unknown error"
	if err != nil {
		content = err.Error()
	}
	id, _ := TryShow(n, fmt.Sprintf("Could not %s", what),
		WithContent(content),
		WithIcon(model.IconTriangleExclamation),
		WithColor(model.ColorFailure),
	)
	return id
}

// InvokeAction runs the action attached to a notification and then clears
// it. The notification is cleared even if the action fails.
func InvokeAction(ctx context.Context, n Notifier, notification model.Notification) error {
	if notification.Action == nil {
		return ErrNoAction
	}

	var runErr error
	if notification.Action.Run != nil {
		if err := notification.Action.Run(ctx); err != nil {
			runErr = fmt.Errorf("action %q: %w", notification.Action.Key, err)
		}
	}
	if n != nil {
		n.Clear(notification.ID)
	}
	return runErr
}
