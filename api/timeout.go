// File: api/timeout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timeout value domain for blocking pool operations: an immediate poll,
// a finite wait, or an unbounded wait, carried as one scalar.

package api

import (
	"fmt"
	"time"
)

// Timeout selects how long a blocking operation may suspend the caller.
// It is a nanosecond count with two sentinels: Immediate polls without
// suspending, Infinite waits until the condition holds. Any positive
// value is a finite wait of at least that duration.
type Timeout int64

const (
	// Immediate requests a non-blocking poll.
	Immediate Timeout = 0

	// Infinite requests an unbounded wait.
	Infinite Timeout = -1
)

// After converts a duration into a finite Timeout.
// Non-positive durations collapse to Immediate.
func After(d time.Duration) Timeout {
	if d <= 0 {
		return Immediate
	}
	return Timeout(d)
}

// Milliseconds returns a finite Timeout of n milliseconds.
func Milliseconds(n int64) Timeout {
	return After(time.Duration(n) * time.Millisecond)
}

// Microseconds returns a finite Timeout of n microseconds.
func Microseconds(n int64) Timeout {
	return After(time.Duration(n) * time.Microsecond)
}

// Seconds returns a finite Timeout of n seconds.
func Seconds(n int64) Timeout {
	return After(time.Duration(n) * time.Second)
}

// IsImmediate reports whether t is the non-blocking poll sentinel.
func (t Timeout) IsImmediate() bool { return t == Immediate }

// IsInfinite reports whether t requests an unbounded wait.
// Every negative value counts as Infinite so that arithmetic underflow
// on a caller-computed deadline degrades to the safe sentinel.
func (t Timeout) IsInfinite() bool { return t < 0 }

// Duration returns the finite wait as a time.Duration.
// It is zero for Immediate and undefined for Infinite.
func (t Timeout) Duration() time.Duration { return time.Duration(t) }

func (t Timeout) String() string {
	switch {
	case t.IsInfinite():
		return "infinite"
	case t.IsImmediate():
		return "immediate"
	default:
		return fmt.Sprintf("%v", time.Duration(t))
	}
}
