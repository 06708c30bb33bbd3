package timing

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Manual is a Clock and Scheduler whose time only moves when Advance is
// called. Timers fire synchronously on the goroutine calling Advance, in
// deadline order; timers with equal deadlines fire in the order they were
// scheduled.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m        *Manual
	deadline time.Time
	seq      uint64
	fn       func() error
	stopped  bool
	fired    bool
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, fn func() error) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{
		m:        m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline is
// reached. The clock reads each timer's deadline while its function runs.
// Errors from fired functions are joined and returned.
func (m *Manual) Advance(d time.Duration) error {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	var errs []error
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		if err := t.fn(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	if m.now.Before(target) {
		m.now = target
	}
	m.mu.Unlock()

	return errors.Join(errs...)
}

// nextDue removes and returns the earliest live timer due at or before
// target, moving the clock to its deadline.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].deadline.Equal(m.timers[j].deadline) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].deadline.Before(m.timers[j].deadline)
	})

	if len(m.timers) == 0 || m.timers[0].deadline.After(target) {
		return nil
	}

	t := m.timers[0]
	m.timers = m.timers[1:]
	t.fired = true
	if t.deadline.After(m.now) {
		m.now = t.deadline
	}
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
