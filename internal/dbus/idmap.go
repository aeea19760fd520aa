package dbus

import "sync"

// IDMap tracks the mapping between toast ids and D-Bus notification ids.
type IDMap struct {
	mu      sync.RWMutex
	byToast map[string]uint32
	byDBus  map[uint32]string
}

// NewIDMap creates an empty IDMap.
func NewIDMap() *IDMap {
	return &IDMap{
		byToast: make(map[string]uint32),
		byDBus:  make(map[uint32]string),
	}
}

// Register maps toastID to dbusID, replacing any previous mapping of either.
func (m *IDMap) Register(toastID string, dbusID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byToast[toastID]; ok {
		delete(m.byDBus, old)
	}
	if old, ok := m.byDBus[dbusID]; ok {
		delete(m.byToast, old)
	}
	m.byToast[toastID] = dbusID
	m.byDBus[dbusID] = toastID
}

// ToastID returns the toast id for a D-Bus id.
func (m *IDMap) ToastID(dbusID uint32) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byDBus[dbusID]
	return id, ok
}

// DBusID returns the D-Bus id for a toast id.
func (m *IDMap) DBusID(toastID string) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byToast[toastID]
	return id, ok
}

// RemoveByToast drops the mapping for a toast id and returns its D-Bus id.
func (m *IDMap) RemoveByToast(toastID string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dbusID, ok := m.byToast[toastID]
	if !ok {
		return 0, false
	}
	delete(m.byToast, toastID)
	delete(m.byDBus, dbusID)
	return dbusID, true
}

// RemoveByDBus drops the mapping for a D-Bus id and returns its toast id.
func (m *IDMap) RemoveByDBus(dbusID uint32) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toastID, ok := m.byDBus[dbusID]
	if !ok {
		return "", false
	}
	delete(m.byDBus, dbusID)
	delete(m.byToast, toastID)
	return toastID, true
}

// Len returns the number of tracked mappings.
func (m *IDMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byDBus)
}
