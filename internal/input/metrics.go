package input

import (
	"sync/atomic"
	"time"
)

// Metrics counts word engine activity.
type Metrics struct {
	eventsTotal    atomic.Uint64
	acceptedEvents atomic.Uint64
	rejectedEvents atomic.Uint64
	wordBreaks     atomic.Uint64
	dispatches     atomic.Uint64
	matches        atomic.Uint64
	misses         atomic.Uint64
	errors         atomic.Uint64

	// Peak callback latency in nanoseconds
	peakCallbackLatency atomic.Int64
}

// NewMetrics creates a zeroed metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordEvent(accepted bool) {
	m.eventsTotal.Add(1)
	if accepted {
		m.acceptedEvents.Add(1)
	} else {
		m.rejectedEvents.Add(1)
	}
}

func (m *Metrics) recordWordBreak() {
	m.wordBreaks.Add(1)
}

func (m *Metrics) recordDispatch(matched bool) {
	m.dispatches.Add(1)
	if matched {
		m.matches.Add(1)
	} else {
		m.misses.Add(1)
	}
}

func (m *Metrics) recordError() {
	m.errors.Add(1)
}

func (m *Metrics) recordCallback(latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := m.peakCallbackLatency.Load()
		if ns <= current {
			return
		}
		if m.peakCallbackLatency.CompareAndSwap(current, ns) {
			return
		}
	}
}

// MetricsSnapshot holds a point-in-time view of the counters.
type MetricsSnapshot struct {
	// EventsTotal counts every keystroke received while active.
	EventsTotal uint64

	// AcceptedEvents and RejectedEvents split EventsTotal by the
	// acceptance predicate.
	AcceptedEvents uint64
	RejectedEvents uint64

	// WordBreaks counts buffers discarded because a keystroke arrived
	// after the inactivity window.
	WordBreaks uint64

	// Dispatches counts completed words; Matches and Misses split it by
	// whether the dictionary resolved the word.
	Dispatches uint64
	Matches    uint64
	Misses     uint64

	// Errors counts failed resolutions and callbacks.
	Errors uint64

	// PeakCallbackLatency is the slowest callback observed.
	PeakCallbackLatency time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsTotal:         m.eventsTotal.Load(),
		AcceptedEvents:      m.acceptedEvents.Load(),
		RejectedEvents:      m.rejectedEvents.Load(),
		WordBreaks:          m.wordBreaks.Load(),
		Dispatches:          m.dispatches.Load(),
		Matches:             m.matches.Load(),
		Misses:              m.misses.Load(),
		Errors:              m.errors.Load(),
		PeakCallbackLatency: time.Duration(m.peakCallbackLatency.Load()),
	}
}
