package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/metrics"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/schedule"
	"github.com/jmylchreest/toastd/internal/toast"
)

type fixture struct {
	mgr    *toast.Manager
	clock  *schedule.Manual
	client *Client
	srv    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := schedule.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mgr := toast.New(clock, toast.DefaultTimings(), logger)
	t.Cleanup(func() { _ = mgr.Close() })

	m := metrics.New()
	mgr.AddListener(m.Observe)

	srv := httptest.NewServer(NewServer(mgr, m, logger).Router())
	t.Cleanup(srv.Close)

	return &fixture{mgr: mgr, clock: clock, client: NewClient(srv.URL), srv: srv}
}

func TestShowAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.client.Show(ctx, ShowRequest{
		Title:   "Disk almost full",
		Content: "/home is at 95%",
		Icon:    model.IconTriangleExclamation,
		Color:   model.ColorWarning,
		Action:  &ActionRequest{Key: "open", Label: "Open"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := f.client.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, id, e.Notification.ID)
	assert.Equal(t, "Disk almost full", e.Notification.Title)
	assert.Equal(t, model.ColorWarning, e.Notification.Color)
	assert.Equal(t, model.PhaseActive, e.Phase)
	require.NotNil(t, e.Notification.Action)
	assert.Equal(t, "Open", e.Notification.Action.Label)
}

func TestShow_EmptyTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Show(context.Background(), ShowRequest{Title: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Zero(t, f.mgr.Len())
}

func TestShow_InvalidBody(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.srv.URL+"/notifications", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFail(t *testing.T) {
	f := newFixture(t)

	id, err := f.client.Fail(context.Background(), "timeout")
	require.NoError(t, err)

	entry, ok := f.mgr.Get(id)
	require.True(t, ok)
	assert.Equal(t, toast.FailedLoadTitle, entry.Notification.Title)
	assert.Equal(t, "There was an error: timeout", entry.Notification.Content)
	assert.Equal(t, model.ColorFailure, entry.Notification.Color)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mgr.Show("Old failure", toast.WithColor(model.ColorFailure))
	f.clock.Advance(toast.DefaultDwell)
	f.mgr.Show("Saved", toast.WithColor(model.ColorSuccess))
	f.mgr.Show("New failure", toast.WithColor(model.ColorFailure), toast.WithContent("network down"))

	tests := []struct {
		name   string
		opts   ListOptions
		titles []string
	}{
		{"all in live order", ListOptions{}, []string{"Old failure", "Saved", "New failure"}},
		{"newest first", ListOptions{Order: "desc"}, []string{"New failure", "Saved", "Old failure"}},
		{"by phase", ListOptions{Phase: "leaving"}, []string{"Old failure"}},
		{"by color", ListOptions{Color: "failure"}, []string{"Old failure", "New failure"}},
		{"search", ListOptions{Search: "network"}, []string{"New failure"}},
		{"filter expression", ListOptions{Filter: "color=failure,phase=active"}, []string{"New failure"}},
		{"limit", ListOptions{Limit: 1}, []string{"Old failure"}},
		{"no match", ListOptions{Search: "nothing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := f.client.List(ctx, tt.opts)
			require.NoError(t, err)
			var titles []string
			for _, e := range entries {
				titles = append(titles, e.Notification.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestList_BadQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.List(ctx, ListOptions{Phase: "gone"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.client.List(ctx, ListOptions{Filter: "bogus"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.mgr.Show("bye")
	require.NoError(t, f.client.Clear(ctx, id))
	assert.Zero(t, f.mgr.Len())

	err := f.client.Clear(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear_ByPrefix(t *testing.T) {
	f := newFixture(t)

	id := f.mgr.Show("prefix")
	require.NoError(t, f.client.Clear(context.Background(), strings.ToLower(id[:12])))
	assert.Zero(t, f.mgr.Len())
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mgr.Show("a")
	f.mgr.Show("b")
	f.mgr.Show("c")

	n, err := f.client.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = f.client.ClearAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInvokeAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ran atomic.Bool
	id := f.mgr.Show("Retry?", toast.WithAction(&model.Action{
		Key:   "retry",
		Label: "Retry",
		Run: func(context.Context) error {
			ran.Store(true)
			return nil
		},
	}))
	plain := f.mgr.Show("No action")

	require.NoError(t, f.client.InvokeAction(ctx, id))
	assert.True(t, ran.Load())
	_, ok := f.mgr.Get(id)
	assert.False(t, ok)

	assert.ErrorIs(t, f.client.InvokeAction(ctx, plain), ErrInvalid)
	assert.ErrorIs(t, f.client.InvokeAction(ctx, "missing-id"), ErrNotFound)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	f.mgr.Show("a")
	f.clock.Advance(toast.DefaultDwell)
	f.mgr.Show("b")

	st, err := f.client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Live)
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, 1, st.Leaving)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, toast.DefaultDwell, st.Dwell())
	assert.Equal(t, toast.DefaultFade, st.Fade())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.mgr.Show("counted", toast.WithColor(model.ColorInfo))

	_, err := f.client.Status(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `toastd_notifications_shown_total{color="info"} 1`)
	assert.Contains(t, string(body), `toastd_http_requests_total{method="GET",path="/status",status="200"} 1`)
}

func TestNoMetrics(t *testing.T) {
	mgr := toast.New(schedule.NewManual(time.Now()), toast.DefaultTimings(), nil)
	defer mgr.Close()

	rec := httptest.NewRecorder()
	NewServer(mgr, nil, nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusError(t *testing.T) {
	se := &StatusError{Code: http.StatusNotFound, Message: "notification not found"}
	assert.Equal(t, "server returned 404: notification not found", se.Error())
	assert.ErrorIs(t, se, ErrNotFound)

	se = &StatusError{Code: http.StatusInternalServerError}
	assert.Equal(t, "server returned 500 Internal Server Error", se.Error())
	assert.Nil(t, se.Unwrap())
}

func TestNewClient_Address(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:7455", NewClient("127.0.0.1:7455").baseURL)
	assert.Equal(t, "https://example.test", NewClient("https://example.test/").baseURL)
}
