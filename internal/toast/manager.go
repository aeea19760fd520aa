// Package toast implements the notification lifecycle manager.
//
// A notification is shown as active, turns leaving once its dwell time
// elapses, and is removed once the fade time elapses after that. The
// Manager is an explicitly owned value: construct one per process (or per
// test) and inject it, or the narrower Notifier interface, into callers.
package toast

import (
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/schedule"
)

// Default lifecycle timings.
const (
	DefaultDwell = 5000 * time.Millisecond
	DefaultFade  = 1500 * time.Millisecond
)

// Timings configures how long a notification stays active and how long it
// spends leaving before removal.
type Timings struct {
	Dwell time.Duration
	Fade  time.Duration
}

// DefaultTimings returns the default dwell and fade durations.
func DefaultTimings() Timings {
	return Timings{Dwell: DefaultDwell, Fade: DefaultFade}
}

func (t Timings) normalize() Timings {
	if t.Dwell <= 0 {
		t.Dwell = DefaultDwell
	}
	if t.Fade < 0 {
		t.Fade = 0
	}
	return t
}

// Notifier is the caller-facing surface of the manager.
type Notifier interface {
	Show(title string, opts ...Option) string
	Clear(id string) bool
	ClearAll() int
}

// timerStage identifies which transition a pending timer drives.
type timerStage int

const (
	stageDwell timerStage = iota
	stageFade
)

// pending is the token for the single scheduled transition of a notification.
// A callback only acts if its token is still the one registered for the id.
type pending struct {
	stage timerStage
	timer schedule.Timer
}

// Manager owns the live notifications, their phases and pending timers.
type Manager struct {
	mu      sync.Mutex
	sched   schedule.Scheduler
	logger  *slog.Logger
	timings Timings

	live   []model.Notification
	index  map[string]int
	phases map[string]model.Phase
	timers map[string]*pending
	closed bool

	subMu       sync.RWMutex
	listeners   []Listener
	subscribers []chan Event
}

var _ Notifier = (*Manager)(nil)

// New creates a Manager. A nil scheduler uses the wall clock and a nil
// logger uses slog.Default().
func New(sched schedule.Scheduler, timings Timings, logger *slog.Logger) *Manager {
	if sched == nil {
		sched = schedule.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sched:   sched,
		logger:  logger,
		timings: timings.normalize(),
		index:   make(map[string]int),
		phases:  make(map[string]model.Phase),
		timers:  make(map[string]*pending),
	}
}

// Show appends a new active notification and schedules its dwell timer.
// It never fails; an empty title is accepted as given.
func (m *Manager) Show(title string, opts ...Option) string {
	n := model.Notification{
		ID:        model.NewID(),
		Title:     title,
		CreatedAt: m.sched.Now(),
	}
	for _, opt := range opts {
		opt(&n)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.Debug("show after close ignored", "id", n.ID, "title", title)
		return n.ID
	}

	m.index[n.ID] = len(m.live)
	m.live = append(m.live, n)
	m.scheduleLocked(n.ID, stageDwell, m.timings.Dwell)
	m.mu.Unlock()

	m.logger.Debug("notification shown", "id", n.ID, "title", title)
	m.dispatch(Event{Type: EventShown, Notification: n, Phase: model.PhaseActive})
	return n.ID
}

// Clear removes a notification, cancelling its pending timer.
// It reports false, with no side effects, if id is not live.
func (m *Manager) Clear(id string) bool {
	return m.clear(id, false, ReasonDismissed)
}

// ClearWithReason is Clear with an explicit removal reason reported to listeners.
func (m *Manager) ClearWithReason(id string, reason RemoveReason) bool {
	return m.clear(id, false, reason)
}

// clear is the single removal path. skipTimeoutCancel is set by the fade
// callback, whose own timer has already fired.
func (m *Manager) clear(id string, skipTimeoutCancel bool, reason RemoveReason) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	n, phase, ok := m.removeLocked(id, skipTimeoutCancel)
	m.mu.Unlock()
	if !ok {
		return false
	}

	m.logger.Debug("notification removed", "id", id, "reason", reason)
	m.dispatch(Event{Type: EventRemoved, Notification: n, Phase: phase, Reason: reason})
	return true
}

// removeLocked drops id from the live sequence, the phase map and the timer
// map, returning the notification and the phase it had. Caller must hold m.mu.
func (m *Manager) removeLocked(id string, skipTimeoutCancel bool) (model.Notification, model.Phase, bool) {
	idx, ok := m.index[id]
	if !ok {
		return model.Notification{}, model.PhaseActive, false
	}
	phase := m.phaseLocked(id)

	if p, ok := m.timers[id]; ok {
		if !skipTimeoutCancel {
			p.timer.Stop()
		}
		delete(m.timers, id)
	}

	n := m.live[idx]
	m.live = slices.Delete(m.live, idx, idx+1)
	delete(m.index, id)
	for i := idx; i < len(m.live); i++ {
		m.index[m.live[i].ID] = i
	}
	delete(m.phases, id)
	return n, phase, true
}

// ClearAll removes every live notification, cancels every pending timer and
// returns how many notifications were live.
func (m *Manager) ClearAll() int {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}

	removed := m.live
	phases := make([]model.Phase, len(removed))
	for i, n := range removed {
		phases[i] = m.phaseLocked(n.ID)
	}
	m.stopAllLocked()
	m.live = nil
	m.index = make(map[string]int)
	m.phases = make(map[string]model.Phase)
	m.mu.Unlock()

	if len(removed) > 0 {
		m.logger.Debug("notifications cleared", "count", len(removed))
	}
	for i, n := range removed {
		m.dispatch(Event{Type: EventRemoved, Notification: n, Phase: phases[i], Reason: ReasonCleared})
	}
	return len(removed)
}

// Close tears the manager down. Every pending timer is cancelled and
// subscriber channels are closed. Afterwards Show returns an id without
// tracking it, and Clear and ClearAll report nothing removed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopAllLocked()
	m.live = nil
	m.index = make(map[string]int)
	m.phases = make(map[string]model.Phase)
	m.mu.Unlock()

	m.subMu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.listeners = nil
	m.subMu.Unlock()

	return nil
}

// SetTimings changes the dwell and fade durations. Timers already pending
// keep the duration they were scheduled with.
func (m *Manager) SetTimings(t Timings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings = t.normalize()
}

// Timings returns the current dwell and fade durations.
func (m *Manager) Timings() Timings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timings
}

// Present returns a lazy sequence of the live notifications and their
// phases, in insertion order (newest last), over a snapshot taken at call time.
func (m *Manager) Present() iter.Seq[model.Entry] {
	m.mu.Lock()
	live := slices.Clone(m.live)
	phases := make(map[string]model.Phase, len(m.phases))
	for id, p := range m.phases {
		phases[id] = p
	}
	m.mu.Unlock()

	return Present(live, phases)
}

// Entries returns the current live entries, newest last.
func (m *Manager) Entries() []model.Entry {
	return slices.Collect(m.Present())
}

// Get returns the live entry for id.
func (m *Manager) Get(id string) (model.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[id]
	if !ok {
		return model.Entry{}, false
	}
	n := m.live[idx]
	return model.Entry{Notification: n, Phase: m.phaseLocked(id)}, true
}

// Len returns the number of live notifications.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Stats summarizes the live set.
type Stats struct {
	Live    int
	Active  int
	Leaving int
	Pending int
	Timings Timings
}

// Stats returns counts of live notifications per phase and pending timers.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{Live: len(m.live), Pending: len(m.timers), Timings: m.timings}
	for _, n := range m.live {
		if m.phaseLocked(n.ID) == model.PhaseLeaving {
			s.Leaving++
		} else {
			s.Active++
		}
	}
	return s
}

func (m *Manager) phaseLocked(id string) model.Phase {
	if p, ok := m.phases[id]; ok {
		return p
	}
	return model.PhaseActive
}

// scheduleLocked registers the timer for the next transition of id,
// replacing (and stopping) any previous one. Caller must hold m.mu.
func (m *Manager) scheduleLocked(id string, stage timerStage, d time.Duration) {
	if prev, ok := m.timers[id]; ok {
		prev.timer.Stop()
	}
	p := &pending{stage: stage}
	m.timers[id] = p
	p.timer = m.sched.AfterFunc(d, func() { m.fire(id, p) })
}

func (m *Manager) stopAllLocked() {
	for id, p := range m.timers {
		p.timer.Stop()
		delete(m.timers, id)
	}
}

// fire runs a timer callback. Stale tokens, from timers that were stopped
// or replaced after the scheduler committed to running them, are ignored.
func (m *Manager) fire(id string, p *pending) {
	switch p.stage {
	case stageDwell:
		m.mu.Lock()
		if m.closed || m.timers[id] != p {
			m.mu.Unlock()
			return
		}
		idx := m.index[id]
		n := m.live[idx]
		m.phases[id] = model.PhaseLeaving
		m.scheduleLocked(id, stageFade, m.timings.Fade)
		m.mu.Unlock()

		m.logger.Debug("notification leaving", "id", id)
		m.dispatch(Event{Type: EventLeaving, Notification: n, Phase: model.PhaseLeaving})

	case stageFade:
		m.mu.Lock()
		if m.closed || m.timers[id] != p {
			m.mu.Unlock()
			return
		}
		n, phase, _ := m.removeLocked(id, true)
		m.mu.Unlock()

		m.logger.Debug("notification removed", "id", id, "reason", ReasonExpired)
		m.dispatch(Event{Type: EventRemoved, Notification: n, Phase: phase, Reason: ReasonExpired})
	}
}
