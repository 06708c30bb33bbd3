// Package timing provides the clock and delayed-execution facilities used by
// the word engine.
//
// The engine never reads the wall clock or starts timers directly. It asks a
// Clock for the arrival time of each keystroke and a Scheduler for the single
// delayed dispatch of the current word. System backs both with the time
// package; Manual is a deterministic implementation driven by Advance.
package timing

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a handle to a scheduled function.
type Timer interface {
	// Stop prevents the function from running. It returns false if the
	// function already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler runs a function once after a delay.
//
// Errors returned by the function belong to the scheduler: System hands them
// to its OnError hook and Manual returns them from Advance.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func() error) Timer
}

// System implements Clock and Scheduler on top of the time package.
type System struct {
	// OnError receives errors returned by scheduled functions.
	// When nil, errors are dropped.
	OnError func(error)
}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on its own goroutine after d.
func (s System) AfterFunc(d time.Duration, fn func() error) Timer {
	return time.AfterFunc(d, func() {
		if err := fn(); err != nil && s.OnError != nil {
			s.OnError(err)
		}
	})
}
