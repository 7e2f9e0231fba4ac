// Package fake
// Author: momentics <momentics@gmail.com>
//
// Manual clock implementing concurrency.Clock for deterministic
// deadline tests: time moves only when the test calls Advance.

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-pool/core/concurrency"
)

// ManualClock is a Clock whose time is advanced explicitly.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*ManualTimer
}

var _ concurrency.Clock = (*ManualClock)(nil)

// NewManualClock creates a clock pinned to a fixed starting instant.
func NewManualClock() *ManualClock {
	return &ManualClock{
		now: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTimer arms a timer that fires once the clock has been advanced by
// at least d. A non-positive d fires immediately.
func (c *ManualClock) NewTimer(d time.Duration) concurrency.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTimer{
		ch:       make(chan time.Time, 1),
		deadline: c.now.Add(d),
	}
	if d <= 0 {
		t.fired = true
		t.ch <- c.now
		return t
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline
// has been reached.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if t.expire(c.now) {
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
}

// PendingTimers reports how many armed timers have not fired yet. Tests
// use it to wait until a goroutine under test has set up its deadline.
func (c *ManualClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.pending() {
			n++
		}
	}
	return n
}

// ManualTimer is the one-shot timer type produced by ManualClock.
type ManualTimer struct {
	mu       sync.Mutex
	ch       chan time.Time
	deadline time.Time
	fired    bool
	stopped  bool
}

// C returns the expiry channel.
func (t *ManualTimer) C() <-chan time.Time { return t.ch }

// Stop cancels the timer; it reports whether the timer was still pending.
func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// expire fires the timer if now has reached its deadline; it reports
// whether the timer can be dropped from the clock's list.
func (t *ManualTimer) expire(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return true
	}
	if t.fired {
		return true
	}
	if now.Before(t.deadline) {
		return false
	}
	t.fired = true
	t.ch <- t.deadline
	return true
}

func (t *ManualTimer) pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.fired && !t.stopped
}
