// Package dbus implements the org.freedesktop.Notifications D-Bus interface
// on top of the toast lifecycle manager. Desktop applications calling Notify
// become toasts; toast removals are reported back as NotificationClosed.
package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// ErrNotConnected is returned when emitting a signal without a bus connection.
var ErrNotConnected = errors.New("not connected to D-Bus")

// Toaster is the part of the lifecycle manager the server drives.
type Toaster interface {
	Show(title string, opts ...toast.Option) string
	ClearWithReason(id string, reason toast.RemoveReason) bool
}

// Emitter sends D-Bus signals. *dbus.Conn satisfies it.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// NotificationServer implements the org.freedesktop.Notifications D-Bus interface.
type NotificationServer struct {
	conn    *dbus.Conn
	emitter Emitter
	logger  *slog.Logger
	toaster Toaster
	ids     *IDMap

	nextID atomic.Uint32

	// deliverMu orders id registration against removal events. Removals of
	// toasts not yet registered are kept in orphans while a delivery is in flight.
	deliverMu  sync.Mutex
	delivering int
	orphans    map[string]toast.RemoveReason

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewNotificationServer creates a server that forwards notifications to toaster.
func NewNotificationServer(toaster Toaster, logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		logger:     logger,
		toaster:    toaster,
		ids:        NewIDMap(),
		orphans:    make(map[string]toast.RemoveReason),
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// SetEmitter replaces the signal emitter. Start sets it to the bus connection.
func (s *NotificationServer) SetEmitter(e Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter = e
}

// IDs exposes the toast id <-> D-Bus id mapping.
func (s *NotificationServer) IDs() *IDMap {
	return s.ids
}

// Start connects to the session bus and exports the notification service.
func (s *NotificationServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.emitter = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.RLock()
	info := s.serverInfo
	s.mu.RUnlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify shows an incoming notification as a toast.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	return s.Deliver(n), nil
}

// Deliver converts a D-Bus notification into a toast and returns its D-Bus id.
// A replaced notification is closed silently and its D-Bus id is reused.
func (s *NotificationServer) Deliver(n *DBusNotification) uint32 {
	var id uint32
	if n.ReplacesID > 0 {
		id = n.ReplacesID
		if old, ok := s.ids.RemoveByDBus(id); ok {
			s.toaster.ClearWithReason(old, toast.ReasonClosed)
		}
	} else {
		id = s.nextID.Add(1)
	}

	opts := []toast.Option{
		toast.WithContent(n.Body),
		toast.WithIcon(model.Icon(n.AppIcon)),
		toast.WithColor(n.Color()),
	}
	if parsed := n.ParsedActions(); len(parsed) > 0 {
		a := parsed[0]
		opts = append(opts, toast.WithAction(&model.Action{
			Key:   a.Key,
			Label: a.Label,
			Run: func(context.Context) error {
				return s.EmitActionInvoked(id, a.Key)
			},
		}))
	}

	s.deliverMu.Lock()
	s.delivering++
	s.deliverMu.Unlock()

	toastID := s.toaster.Show(n.Title(), opts...)

	s.deliverMu.Lock()
	s.ids.Register(toastID, id)
	reason, removed := s.orphans[toastID]
	s.delivering--
	if s.delivering == 0 {
		clear(s.orphans)
	} else {
		delete(s.orphans, toastID)
	}
	s.deliverMu.Unlock()

	if removed {
		// Removed before the mapping existed, so HandleEvent could not report it.
		s.ids.RemoveByToast(toastID)
		s.emitClosed(id, reason)
	}

	s.logger.Debug("notification delivered",
		"app_name", n.AppName,
		"dbus_id", id,
		"toast_id", toastID,
		"replaces_id", n.ReplacesID,
	)
	return id
}

// CloseNotification closes a notification by D-Bus id.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	toastID, ok := s.ids.ToastID(id)
	if !ok {
		s.logger.Debug("CloseNotification for unknown id", "id", id)
		return nil
	}
	// The removal listener emits NotificationClosed(closed).
	s.toaster.ClearWithReason(toastID, toast.ReasonClosed)
	return nil
}

// HandleEvent is a toast.Listener that reports removals of D-Bus originated
// toasts as NotificationClosed signals.
func (s *NotificationServer) HandleEvent(ev toast.Event) {
	if ev.Type != toast.EventRemoved {
		return
	}

	s.deliverMu.Lock()
	dbusID, ok := s.ids.RemoveByToast(ev.Notification.ID)
	if !ok && s.delivering > 0 {
		s.orphans[ev.Notification.ID] = ev.Reason
	}
	s.deliverMu.Unlock()

	if ok {
		s.emitClosed(dbusID, ev.Reason)
	}
}

func (s *NotificationServer) emitClosed(dbusID uint32, reason toast.RemoveReason) {
	if err := s.EmitNotificationClosed(dbusID, CloseReasonFor(reason)); err != nil && !errors.Is(err, ErrNotConnected) {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", dbusID, "error", err)
	}
}

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
