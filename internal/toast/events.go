package toast

import (
	"github.com/jmylchreest/toastd/internal/model"
)

// EventType indicates which lifecycle transition occurred.
type EventType int

const (
	// EventShown is emitted when a notification is added.
	EventShown EventType = iota
	// EventLeaving is emitted when a notification's dwell elapses.
	EventLeaving
	// EventRemoved is emitted when a notification leaves the live set.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventShown:
		return "shown"
	case EventLeaving:
		return "leaving"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// RemoveReason explains why a notification was removed.
type RemoveReason string

const (
	ReasonExpired   RemoveReason = "expired"
	ReasonDismissed RemoveReason = "dismissed"
	ReasonClosed    RemoveReason = "closed"
	ReasonCleared   RemoveReason = "cleared"
)

// Event describes a lifecycle transition.
type Event struct {
	Type         EventType
	Notification model.Notification
	Phase        model.Phase  // phase after the transition, or before removal for EventRemoved
	Reason       RemoveReason // set for EventRemoved
}

// Listener receives lifecycle events. Listeners run synchronously after the
// manager releases its lock, so they may call back into the manager.
type Listener func(Event)

// subscriberBuffer is the channel capacity for Subscribe. Events beyond it
// are dropped for that subscriber.
const subscriberBuffer = 32

// AddListener registers l for all subsequent events.
func (m *Manager) AddListener(l Listener) {
	if l == nil {
		return
	}
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Subscribe returns a channel that receives lifecycle events. Delivery is
// best effort; a slow reader misses events rather than blocking the manager.
// The channel is closed by Unsubscribe or Close.
func (m *Manager) Subscribe() <-chan Event {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		close(ch)
		return ch
	}
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(ch <-chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (m *Manager) dispatch(ev Event) {
	m.subMu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
			m.logger.Debug("subscriber channel full, event dropped", "event", ev.Type, "id", ev.Notification.ID)
		}
	}
	m.subMu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}
