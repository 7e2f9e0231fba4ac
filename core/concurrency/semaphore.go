// File: core/concurrency/semaphore.go
// Package concurrency provides the blocking primitives behind guarded pools.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TimedSemaphore is a counting semaphore with deadline support. Waiters
// queue in arrival order; each Signal releases exactly one of them, or
// banks the permit in the counter when nobody is waiting. Expired waiters
// are cancelled lazily: they stay queued until a later Signal drains past
// them, so cancellation never races a grant.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pool/api"
)

// waiter is one queued Wait call. The token channel is buffered so a
// grant never blocks the signaller; a waiter receives at most one token
// in its lifetime.
type waiter struct {
	token    chan struct{}
	canceled bool // written under the semaphore mutex only
}

// TimedSemaphore is a counting semaphore whose Wait accepts the pool
// timeout domain: immediate poll, finite deadline, or unbounded wait.
//
// Invariant: whenever the counter is positive the waiter queue holds no
// live waiters, and a released waiter always corresponds to exactly one
// permit. A permit is consumed exactly once, either by a successful Wait
// or by banking it in the counter; an expired Wait never swallows one.
//
// The zero value is a semaphore with count zero, running on the system
// clock. Init may be used to reset the counter; resetting while other
// goroutines are blocked in Wait is a caller error and leaves those
// waiters pending.
type TimedSemaphore struct {
	clock Clock

	mu      sync.Mutex
	count   int
	waiters *queue.Queue // of *waiter, arrival order
}

// NewTimedSemaphore creates a semaphore holding initial permits.
func NewTimedSemaphore(initial int) *TimedSemaphore {
	return NewTimedSemaphoreWithClock(initial, SystemClock{})
}

// NewTimedSemaphoreWithClock creates a semaphore on an explicit time
// source, used by tests to drive deadlines deterministically.
func NewTimedSemaphoreWithClock(initial int, clk Clock) *TimedSemaphore {
	if initial < 0 {
		panic("concurrency: negative semaphore count")
	}
	return &TimedSemaphore{clock: clk, count: initial}
}

// Init resets the counter to initial and forgets any queued waiters.
func (s *TimedSemaphore) Init(initial int) {
	if initial < 0 {
		panic("concurrency: negative semaphore count")
	}
	s.mu.Lock()
	s.count = initial
	s.waiters = nil
	s.mu.Unlock()
}

// Wait acquires one permit. It returns true once a permit is held and
// false when the timeout expires first. With api.Immediate it degrades
// to a non-blocking poll; with api.Infinite it never returns false.
//
// A false return is delivered no earlier than the requested deadline.
// Wakeups carry a token, so a Wait cannot succeed spuriously: waking
// without a token is impossible by construction.
func (s *TimedSemaphore) Wait(t api.Timeout) bool {
	s.mu.Lock()
	if s.count > 0 {
		s.count--
		s.mu.Unlock()
		return true
	}
	if t.IsImmediate() {
		s.mu.Unlock()
		return false
	}
	if s.waiters == nil {
		s.waiters = queue.New()
	}
	w := &waiter{token: make(chan struct{}, 1)}
	s.waiters.Add(w)
	clk := s.clock
	if clk == nil {
		clk = SystemClock{}
		s.clock = clk
	}
	s.mu.Unlock()

	if t.IsInfinite() {
		<-w.token
		return true
	}

	timer := clk.NewTimer(t.Duration())
	defer timer.Stop()
	select {
	case <-w.token:
		return true
	case <-timer.C():
	}

	// The deadline elapsed, but a grant may have raced in between the
	// timer firing and this point. Resolve under the lock: a token
	// found here is a real grant and must be consumed; otherwise the
	// waiter is marked cancelled so Signal skips it from now on.
	s.mu.Lock()
	select {
	case <-w.token:
		s.mu.Unlock()
		return true
	default:
	}
	w.canceled = true
	s.mu.Unlock()
	return false
}

// Signal releases one permit: the oldest live waiter if any, otherwise
// the counter is incremented.
func (s *TimedSemaphore) Signal() {
	s.mu.Lock()
	s.signalLocked()
	s.mu.Unlock()
}

// SignalN releases n permits under a single lock acquisition.
func (s *TimedSemaphore) SignalN(n int) {
	s.mu.Lock()
	for ; n > 0; n-- {
		s.signalLocked()
	}
	s.mu.Unlock()
}

func (s *TimedSemaphore) signalLocked() {
	for s.waiters != nil && s.waiters.Length() > 0 {
		w := s.waiters.Remove().(*waiter)
		if w.canceled {
			// Lazily dropped expired waiter.
			continue
		}
		w.token <- struct{}{}
		return
	}
	s.count++
}

// Count returns the number of banked permits.
func (s *TimedSemaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Waiters returns the number of goroutines currently blocked in Wait.
func (s *TimedSemaphore) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiters == nil {
		return 0
	}
	live := 0
	for i := 0; i < s.waiters.Length(); i++ {
		if !s.waiters.Get(i).(*waiter).canceled {
			live++
		}
	}
	return live
}
