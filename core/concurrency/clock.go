// File: core/concurrency/clock.go
// Package concurrency provides the blocking primitives behind guarded pools.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Clock is the seam between deadline logic and the time source. Production
// code runs on the system clock; tests substitute a manual clock to make
// timeout paths deterministic.

package concurrency

import "time"

// Clock produces the current time and one-shot timers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTimer returns a timer that fires once after d has elapsed.
	// The duration is measured on the monotonic clock, so wall-clock
	// adjustments do not shorten a wait.
	NewTimer(d time.Duration) Timer
}

// Timer is a one-shot deadline notification.
type Timer interface {
	// C returns the channel the expiry is delivered on.
	C() <-chan time.Time

	// Stop cancels the timer; it reports whether the timer was still
	// pending. Stop does not drain the channel.
	Stop() bool
}

// SystemClock is the real-time Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) C() <-chan time.Time { return st.t.C }
func (st systemTimer) Stop() bool          { return st.t.Stop() }
