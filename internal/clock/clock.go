// Package clock abstracts the time source so debounce timers and calendar-day logic can be
// driven deterministically in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the current time and deferred callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. The returned Timer can cancel a pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop reports whether the call was cancelled before it fired.
	Stop() bool
}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual is a Clock whose time only moves when Advance is called. Callbacks that come due
// run synchronously inside Advance, in due order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

// NewManual creates a Manual clock starting at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{owner: m, due: m.now.Add(d), fn: f}
	m.pending = append(m.pending, t)
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Set moves the clock to t without firing timers.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves time forward by d and runs every callback that becomes due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	target := m.now
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.pending, func(i, j int) bool { return m.pending[i].due.Before(m.pending[j].due) })
		if len(m.pending) == 0 || m.pending[0].due.After(target) {
			m.mu.Unlock()
			return
		}
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()
		next.fn()
	}
}

func (m *Manual) remove(t *manualTimer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, candidate := range m.pending {
		if candidate == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	due   time.Time
	fn    func()
}

func (t *manualTimer) Stop() bool { return t.owner.remove(t) }
