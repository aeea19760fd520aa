// Package api implements the local HTTP control API of toastd and a typed
// client for it.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Errors reported by the client.
var (
	ErrNotFound  = errors.New("notification not found")
	ErrAmbiguous = errors.New("id prefix is ambiguous")
	ErrInvalid   = errors.New("invalid request")
)

// StatusError is returned by the client for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Unwrap maps well-known status codes to sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAmbiguous
	case http.StatusBadRequest:
		return ErrInvalid
	default:
		return nil
	}
}

// ShowRequest is the body of POST /notifications.
type ShowRequest struct {
	Title   string         `json:"title"`
	Content string         `json:"content,omitempty"`
	Icon    model.Icon     `json:"icon,omitempty"`
	Color   model.Color    `json:"color,omitempty"`
	Action  *ActionRequest `json:"action,omitempty"`
}

// ActionRequest describes the action attached to a notification shown over HTTP.
type ActionRequest struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FailureRequest is the body of POST /notifications/failure.
type FailureRequest struct {
	Reason string `json:"reason"`
}

// ShowResponse is returned when a notification is created.
type ShowResponse struct {
	ID string `json:"id"`
}

// ClearAllResponse is returned by DELETE /notifications.
type ClearAllResponse struct {
	Cleared int `json:"cleared"`
}

// Status is returned by GET /status.
type Status struct {
	Live    int   `json:"live"`
	Active  int   `json:"active"`
	Leaving int   `json:"leaving"`
	Pending int   `json:"pending"`
	DwellMS int64 `json:"dwell_ms"`
	FadeMS  int64 `json:"fade_ms"`
}

// Dwell returns the dwell duration reported by the server.
func (s Status) Dwell() time.Duration { return time.Duration(s.DwellMS) * time.Millisecond }

// Fade returns the fade duration reported by the server.
func (s Status) Fade() time.Duration { return time.Duration(s.FadeMS) * time.Millisecond }

// StatusFromStats converts manager statistics to the wire form.
func StatusFromStats(st toast.Stats) Status {
	return Status{
		Live:    st.Live,
		Active:  st.Active,
		Leaving: st.Leaving,
		Pending: st.Pending,
		DwellMS: st.Timings.Dwell.Milliseconds(),
		FadeMS:  st.Timings.Fade.Milliseconds(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListOptions are the query parameters of GET /notifications.
type ListOptions struct {
	Phase  string // active or leaving
	Color  string
	Search string
	Filter string // filter expression, e.g. "color=failure,title~disk"
	Sort   string
	Order  string
	Limit  int
}
