package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestManual_FiresInDueOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string

	m.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	m.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	m.AfterFunc(2*time.Second, func() { order = append(order, "b1") })
	m.AfterFunc(2*time.Second, func() { order = append(order, "b2") })

	m.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b1", "b2"}, order)
	assert.Equal(t, 1, m.Pending())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, order)
	assert.Zero(t, m.Pending())
}

func TestManual_NowDuringCallback(t *testing.T) {
	m := NewManual(epoch)
	var at time.Time

	m.AfterFunc(1500*time.Millisecond, func() { at = m.Now() })
	m.Advance(10 * time.Second)

	assert.Equal(t, epoch.Add(1500*time.Millisecond), at)
	assert.Equal(t, epoch.Add(10*time.Second), m.Now())
}

func TestManual_ChainedCallbacks(t *testing.T) {
	m := NewManual(epoch)
	var fired []time.Duration

	m.AfterFunc(5*time.Second, func() {
		fired = append(fired, m.Now().Sub(epoch))
		m.AfterFunc(1500*time.Millisecond, func() {
			fired = append(fired, m.Now().Sub(epoch))
		})
	})

	m.Advance(6 * time.Second)
	require.Len(t, fired, 1)

	m.Advance(500 * time.Millisecond)
	assert.Equal(t, []time.Duration{5 * time.Second, 6500 * time.Millisecond}, fired)
}

func TestManual_ChainedWithinWindow(t *testing.T) {
	m := NewManual(epoch)
	var count int

	m.AfterFunc(time.Second, func() {
		count++
		m.AfterFunc(time.Second, func() { count++ })
	})

	m.Advance(2 * time.Second)
	assert.Equal(t, 2, count)
}

func TestManual_Stop(t *testing.T) {
	m := NewManual(epoch)
	var fired bool

	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	m.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, m.Pending())
}

func TestManual_StopAfterFire(t *testing.T) {
	m := NewManual(epoch)
	timer := m.AfterFunc(time.Second, func() {})

	m.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_ZeroDelay(t *testing.T) {
	m := NewManual(epoch)
	var fired bool

	m.AfterFunc(-time.Second, func() { fired = true })
	assert.False(t, fired)

	m.Advance(0)
	assert.True(t, fired)
}

func TestReal_AfterFunc(t *testing.T) {
	s := Real()
	var fired atomic.Bool

	s.AfterFunc(time.Millisecond, func() { fired.Store(true) })
	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)

	stopped := s.AfterFunc(time.Hour, func() {})
	assert.True(t, stopped.Stop())
	assert.WithinDuration(t, time.Now(), s.Now(), time.Second)
}
