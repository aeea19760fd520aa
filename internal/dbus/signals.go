package dbus

import (
	"fmt"
)

func (s *NotificationServer) emit(signal string, values ...any) error {
	s.mu.RLock()
	emitter := s.emitter
	s.mu.RUnlock()

	if emitter == nil {
		return ErrNotConnected
	}
	if err := emitter.Emit(DBusPath, DBusInterface+"."+signal, values...); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", signal, err)
	}
	return nil
}

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	if err := s.emit("NotificationClosed", id, uint32(reason)); err != nil {
		return err
	}
	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *NotificationServer) EmitActionInvoked(id uint32, actionKey string) error {
	if err := s.emit("ActionInvoked", id, actionKey); err != nil {
		return err
	}
	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}
