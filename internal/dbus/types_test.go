package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

func TestCloseReasonString(t *testing.T) {
	tests := []struct {
		reason   CloseReason
		expected string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestCloseReasonFor(t *testing.T) {
	assert.Equal(t, CloseReasonExpired, CloseReasonFor(toast.ReasonExpired))
	assert.Equal(t, CloseReasonDismissed, CloseReasonFor(toast.ReasonDismissed))
	assert.Equal(t, CloseReasonDismissed, CloseReasonFor(toast.ReasonCleared))
	assert.Equal(t, CloseReasonClosed, CloseReasonFor(toast.ReasonClosed))
	assert.Equal(t, CloseReasonUndefined, CloseReasonFor("other"))
}

func TestParsedActions(t *testing.T) {
	tests := []struct {
		name     string
		actions  []string
		expected []Action
	}{
		{
			name:     "empty",
			actions:  nil,
			expected: []Action{},
		},
		{
			name:     "single action",
			actions:  []string{"default", "Open"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
		{
			name:     "odd number (incomplete pair ignored)",
			actions:  []string{"default", "Open", "orphan"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &DBusNotification{Actions: tt.actions}
			assert.Equal(t, tt.expected, n.ParsedActions())
		})
	}
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected byte
	}{
		{"no hint", nil, UrgencyNormal},
		{"low", map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(0))}, UrgencyLow},
		{"critical", map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}, UrgencyCritical},
		{"wrong type returns normal", map[string]dbus.Variant{"urgency": dbus.MakeVariant("high")}, UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &DBusNotification{Hints: tt.hints}
			assert.Equal(t, tt.expected, n.Urgency())
		})
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected model.Color
	}{
		{"normal", nil, model.ColorNone},
		{"low", map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyLow)}, model.ColorInfo},
		{"critical", map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyCritical)}, model.ColorFailure},
		{"hlcolor wins", map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(UrgencyCritical),
			"hlcolor": dbus.MakeVariant("#00ff00"),
		}, model.Color("#00ff00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &DBusNotification{Hints: tt.hints}
			assert.Equal(t, tt.expected, n.Color())
		})
	}
}

func TestCategory(t *testing.T) {
	n := &DBusNotification{Hints: map[string]dbus.Variant{"category": dbus.MakeVariant("email.arrived")}}
	assert.Equal(t, "email.arrived", n.Category())

	n.Hints = map[string]dbus.Variant{"category": dbus.MakeVariant(123)}
	assert.Empty(t, n.Category())
}

func TestIDMap(t *testing.T) {
	m := NewIDMap()
	m.Register("a", 1)
	m.Register("b", 2)

	id, ok := m.ToastID(1)
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	// re-registering a D-Bus id drops the old toast mapping
	m.Register("c", 1)
	_, ok = m.DBusID("a")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())

	dbusID, ok := m.RemoveByToast("c")
	assert.True(t, ok)
	assert.Equal(t, uint32(1), dbusID)
	_, ok = m.RemoveByToast("c")
	assert.False(t, ok)

	toastID, ok := m.RemoveByDBus(2)
	assert.True(t, ok)
	assert.Equal(t, "b", toastID)
	assert.Zero(t, m.Len())
}
