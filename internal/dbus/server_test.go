package dbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/schedule"
	"github.com/jmylchreest/toastd/internal/toast"
)

type signal struct {
	name   string
	values []any
}

type fakeEmitter struct {
	mu      sync.Mutex
	signals []signal
	err     error
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.signals = append(f.signals, signal{name: name, values: values})
	return nil
}

func (f *fakeEmitter) all() []signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]signal(nil), f.signals...)
}

func newTestServer(t *testing.T) (*NotificationServer, *toast.Manager, *schedule.Manual, *fakeEmitter) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := schedule.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr := toast.New(clock, toast.DefaultTimings(), logger)
	t.Cleanup(func() { _ = mgr.Close() })

	srv := NewNotificationServer(mgr, logger)
	emitter := &fakeEmitter{}
	srv.SetEmitter(emitter)
	mgr.AddListener(srv.HandleEvent)
	return srv, mgr, clock, emitter
}

func TestNotify_ShowsToast(t *testing.T) {
	srv, mgr, _, _ := newTestServer(t)

	id, dErr := srv.Notify("mail", 0, "mail-unread", "New mail", "From: ops", nil,
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyCritical)}, -1)
	require.Nil(t, dErr)
	assert.Equal(t, uint32(1), id)

	entries := mgr.Entries()
	require.Len(t, entries, 1)
	n := entries[0].Notification
	assert.Equal(t, "New mail", n.Title)
	assert.Equal(t, "From: ops", n.Content)
	assert.Equal(t, model.Icon("mail-unread"), n.Icon)
	assert.Equal(t, model.ColorFailure, n.Color)
	assert.Nil(t, n.Action)

	toastID, ok := srv.IDs().ToastID(id)
	require.True(t, ok)
	assert.Equal(t, n.ID, toastID)
}

func TestNotify_IDsIncrement(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	first, _ := srv.Notify("a", 0, "", "one", "", nil, nil, 0)
	second, _ := srv.Notify("a", 0, "", "two", "", nil, nil, 0)
	assert.Equal(t, first+1, second)
}

func TestNotify_EmptySummaryUsesAppName(t *testing.T) {
	srv, mgr, _, _ := newTestServer(t)

	srv.Notify("backup", 0, "", "", "done", nil, nil, 0)
	srv.Notify("", 0, "", " ", "", nil, nil, 0)

	entries := mgr.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "backup", entries[0].Notification.Title)
	assert.Equal(t, "Notification", entries[1].Notification.Title)
}

func TestNotify_ReplacesID(t *testing.T) {
	srv, mgr, _, emitter := newTestServer(t)

	id, _ := srv.Notify("vol", 0, "", "Volume 10%", "", nil, nil, 0)
	replaced, _ := srv.Notify("vol", id, "", "Volume 20%", "", nil, nil, 0)

	assert.Equal(t, id, replaced)
	entries := mgr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Volume 20%", entries[0].Notification.Title)
	assert.Empty(t, emitter.all(), "replacement does not emit NotificationClosed")
	assert.Equal(t, 1, srv.IDs().Len())
}

func TestNotify_ActionEmitsActionInvoked(t *testing.T) {
	srv, mgr, _, emitter := newTestServer(t)

	id, _ := srv.Notify("chat", 0, "", "Message", "hi", []string{"default", "Open", "reply", "Reply"}, nil, 0)

	entries := mgr.Entries()
	require.Len(t, entries, 1)
	action := entries[0].Notification.Action
	require.NotNil(t, action)
	assert.Equal(t, "default", action.Key)
	assert.Equal(t, "Open", action.Label)

	require.NoError(t, toast.InvokeAction(context.Background(), mgr, entries[0].Notification))

	signals := emitter.all()
	require.Len(t, signals, 2)
	assert.Equal(t, DBusInterface+".ActionInvoked", signals[0].name)
	assert.Equal(t, []any{id, "default"}, signals[0].values)
	assert.Equal(t, DBusInterface+".NotificationClosed", signals[1].name)
	assert.Equal(t, []any{id, uint32(CloseReasonDismissed)}, signals[1].values)
}

func TestCloseNotification(t *testing.T) {
	srv, mgr, _, emitter := newTestServer(t)

	id, _ := srv.Notify("a", 0, "", "closing", "", nil, nil, 0)
	require.Nil(t, srv.CloseNotification(id))

	assert.Zero(t, mgr.Len())
	signals := emitter.all()
	require.Len(t, signals, 1)
	assert.Equal(t, []any{id, uint32(CloseReasonClosed)}, signals[0].values)
	assert.Zero(t, srv.IDs().Len())

	// unknown ids are ignored
	require.Nil(t, srv.CloseNotification(999))
	assert.Len(t, emitter.all(), 1)
}

func TestExpiry_EmitsExpired(t *testing.T) {
	srv, _, clock, emitter := newTestServer(t)

	id, _ := srv.Notify("a", 0, "", "expiring", "", nil, nil, 0)
	clock.Advance(toast.DefaultDwell + toast.DefaultFade)

	signals := emitter.all()
	require.Len(t, signals, 1)
	assert.Equal(t, []any{id, uint32(CloseReasonExpired)}, signals[0].values)
}

func TestClearAll_EmitsDismissedForDBusToastsOnly(t *testing.T) {
	srv, mgr, _, emitter := newTestServer(t)

	id, _ := srv.Notify("a", 0, "", "from bus", "", nil, nil, 0)
	mgr.Show("local toast")

	assert.Equal(t, 2, mgr.ClearAll())
	signals := emitter.all()
	require.Len(t, signals, 1)
	assert.Equal(t, []any{id, uint32(CloseReasonDismissed)}, signals[0].values)
}

// racingToaster clears every toast right after showing it, before the
// server can register the D-Bus id.
type racingToaster struct {
	*toast.Manager
}

func (r racingToaster) Show(title string, opts ...toast.Option) string {
	id := r.Manager.Show(title, opts...)
	r.Manager.ClearWithReason(id, toast.ReasonCleared)
	return id
}

func TestNotify_RemovedBeforeRegistration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := toast.New(schedule.NewManual(time.Now()), toast.DefaultTimings(), logger)
	t.Cleanup(func() { _ = mgr.Close() })

	srv := NewNotificationServer(racingToaster{mgr}, logger)
	emitter := &fakeEmitter{}
	srv.SetEmitter(emitter)
	mgr.AddListener(srv.HandleEvent)

	id, dErr := srv.Notify("a", 0, "", "short lived", "", nil, nil, 0)
	require.Nil(t, dErr)

	assert.Zero(t, mgr.Len())
	assert.Zero(t, srv.IDs().Len())
	signals := emitter.all()
	require.Len(t, signals, 1)
	assert.Equal(t, DBusInterface+".NotificationClosed", signals[0].name)
	assert.Equal(t, []any{id, uint32(CloseReasonDismissed)}, signals[0].values)

	id2, _ := srv.Notify("a", 0, "", "second", "", nil, nil, 0)
	signals = emitter.all()
	require.Len(t, signals, 2)
	assert.Equal(t, []any{id2, uint32(CloseReasonDismissed)}, signals[1].values)
	assert.Empty(t, srv.orphans)
}

func TestHandleEvent_NotConnected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := toast.New(schedule.NewManual(time.Now()), toast.DefaultTimings(), logger)
	defer mgr.Close()

	srv := NewNotificationServer(mgr, logger)
	mgr.AddListener(srv.HandleEvent)

	id, _ := srv.Notify("a", 0, "", "offline", "", nil, nil, 0)
	require.Nil(t, srv.CloseNotification(id))
	assert.Zero(t, srv.IDs().Len())

	assert.ErrorIs(t, srv.EmitActionInvoked(id, "default"), ErrNotConnected)
}

func TestEmit_Error(t *testing.T) {
	srv, _, _, emitter := newTestServer(t)
	emitter.err = errors.New("bus gone")

	err := srv.EmitNotificationClosed(1, CloseReasonExpired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotificationClosed")
}

func TestServerInformation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	caps, dErr := srv.GetCapabilities()
	require.Nil(t, dErr)
	assert.Contains(t, caps, "actions")

	name, vendor, version, spec, dErr := srv.GetServerInformation()
	require.Nil(t, dErr)
	assert.Equal(t, "toastd", name)
	assert.Equal(t, "toastd", vendor)
	assert.Equal(t, "dev", version)
	assert.Equal(t, "1.2", spec)

	srv.SetServerInfo(ServerInfo{Name: "toastd", Vendor: "ents", Version: "1.0.0", SpecVersion: "1.2"})
	_, _, version, _, _ = srv.GetServerInformation()
	assert.Equal(t, "1.0.0", version)
}
