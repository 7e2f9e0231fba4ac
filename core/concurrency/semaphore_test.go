// Package concurrency_test exercises the timed semaphore, with a manual
// clock where deadline arithmetic must be deterministic.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/core/concurrency"
	"github.com/momentics/hioload-pool/fake"
)

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached: %s", msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTimedSemaphore_ImmediatePoll(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(0)
	if sem.Wait(api.Immediate) {
		t.Error("Wait(Immediate) on empty semaphore must fail")
	}
	sem.Signal()
	if sem.Count() != 1 {
		t.Errorf("Expected count 1 after Signal, got %d", sem.Count())
	}
	if !sem.Wait(api.Immediate) {
		t.Error("Wait(Immediate) with a banked permit must succeed")
	}
	if sem.Count() != 0 {
		t.Errorf("Expected count 0 after Wait, got %d", sem.Count())
	}
}

func TestTimedSemaphore_InitialPermits(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(2)
	if !sem.Wait(api.Immediate) || !sem.Wait(api.Immediate) {
		t.Error("Expected two immediate acquisitions to succeed")
	}
	if sem.Wait(api.Immediate) {
		t.Error("Third acquisition must fail")
	}
}

func TestTimedSemaphore_ZeroValueUsable(t *testing.T) {
	var sem concurrency.TimedSemaphore
	if sem.Wait(api.Immediate) {
		t.Error("Zero-value semaphore must start with no permits")
	}
	sem.Signal()
	if !sem.Wait(api.Immediate) {
		t.Error("Zero-value semaphore must accept Signal/Wait")
	}
}

func TestTimedSemaphore_InitResets(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(3)
	sem.Init(1)
	if !sem.Wait(api.Immediate) {
		t.Error("Expected one permit after Init(1)")
	}
	if sem.Wait(api.Immediate) {
		t.Error("Expected no second permit after Init(1)")
	}
}

func TestTimedSemaphore_FiniteTimeoutExpires(t *testing.T) {
	clk := fake.NewManualClock()
	sem := concurrency.NewTimedSemaphoreWithClock(0, clk)

	done := make(chan bool, 1)
	go func() { done <- sem.Wait(api.Milliseconds(50)) }()

	waitUntil(t, func() bool { return clk.PendingTimers() == 1 }, "waiter armed its timer")

	// One tick short of the deadline: the waiter must still be blocked.
	clk.Advance(49 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Waiter returned before its deadline")
	case <-time.After(20 * time.Millisecond):
	}

	// Past the deadline: the wait resolves false.
	clk.Advance(2 * time.Millisecond)
	select {
	case ok := <-done:
		if ok {
			t.Error("Expected timed-out wait to return false")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Waiter did not return after its deadline")
	}
}

func TestTimedSemaphore_SignalBeatsDeadline(t *testing.T) {
	clk := fake.NewManualClock()
	sem := concurrency.NewTimedSemaphoreWithClock(0, clk)

	done := make(chan bool, 1)
	go func() { done <- sem.Wait(api.Milliseconds(50)) }()

	waitUntil(t, func() bool { return clk.PendingTimers() == 1 }, "waiter armed its timer")
	sem.Signal()

	select {
	case ok := <-done:
		if !ok {
			t.Error("Signalled waiter must succeed")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Signalled waiter did not return")
	}
	if sem.Count() != 0 {
		t.Errorf("Permit must be consumed by the waiter, count=%d", sem.Count())
	}
}

func TestTimedSemaphore_ExpiredWaiterDoesNotSwallowPermit(t *testing.T) {
	clk := fake.NewManualClock()
	sem := concurrency.NewTimedSemaphoreWithClock(0, clk)

	done := make(chan bool, 1)
	go func() { done <- sem.Wait(api.Milliseconds(10)) }()
	waitUntil(t, func() bool { return clk.PendingTimers() == 1 }, "waiter armed its timer")

	clk.Advance(20 * time.Millisecond)
	if ok := <-done; ok {
		t.Fatal("Expected the waiter to time out")
	}

	// The expired waiter is still queued until a Signal drains past it;
	// the permit must land in the counter, not on the dead waiter.
	sem.Signal()
	if sem.Count() != 1 {
		t.Errorf("Expected banked permit after signalling past an expired waiter, count=%d", sem.Count())
	}
	if !sem.Wait(api.Immediate) {
		t.Error("Banked permit must be acquirable")
	}
}

func TestTimedSemaphore_InfiniteWaitReleasedBySignal(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(0)

	done := make(chan bool, 1)
	go func() { done <- sem.Wait(api.Infinite) }()
	waitUntil(t, func() bool { return sem.Waiters() == 1 }, "waiter queued")

	sem.Signal()
	select {
	case ok := <-done:
		if !ok {
			t.Error("Infinite wait must return true once signalled")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Infinite waiter did not return after Signal")
	}
}

func TestTimedSemaphore_ArrivalOrderRelease(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(0)
	released := make(chan int, 2)

	go func() {
		sem.Wait(api.Infinite)
		released <- 1
	}()
	waitUntil(t, func() bool { return sem.Waiters() == 1 }, "first waiter queued")

	go func() {
		sem.Wait(api.Infinite)
		released <- 2
	}()
	waitUntil(t, func() bool { return sem.Waiters() == 2 }, "second waiter queued")

	sem.Signal()
	if got := <-released; got != 1 {
		t.Errorf("Expected the oldest waiter released first, got %d", got)
	}
	sem.Signal()
	if got := <-released; got != 2 {
		t.Errorf("Expected the second waiter released next, got %d", got)
	}
}

func TestTimedSemaphore_SignalN(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(0)
	var wg sync.WaitGroup
	var succeeded atomic.Int64

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem.Wait(api.Infinite) {
				succeeded.Add(1)
			}
		}()
	}
	waitUntil(t, func() bool { return sem.Waiters() == 3 }, "three waiters queued")

	sem.SignalN(5)
	wg.Wait()
	if succeeded.Load() != 3 {
		t.Errorf("Expected 3 released waiters, got %d", succeeded.Load())
	}
	if sem.Count() != 2 {
		t.Errorf("Expected 2 banked permits, got %d", sem.Count())
	}
}

func TestTimedSemaphore_FiniteWaitMeasuredElapsed(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(0)
	start := time.Now()
	if sem.Wait(api.Milliseconds(30)) {
		t.Fatal("Wait on a permanently empty semaphore must time out")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Wait returned after %v, before the 30ms deadline", elapsed)
	}
}

func TestTimedSemaphore_Conservation(t *testing.T) {
	sem := concurrency.NewTimedSemaphore(4)
	var wg sync.WaitGroup
	var held atomic.Int64
	var peak atomic.Int64

	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if !sem.Wait(api.Infinite) {
					t.Error("Infinite wait returned false")
					return
				}
				h := held.Add(1)
				for {
					p := peak.Load()
					if h <= p || peak.CompareAndSwap(p, h) {
						break
					}
				}
				held.Add(-1)
				sem.Signal()
			}
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > 4 {
		t.Errorf("More permits in flight than issued: peak %d > 4", p)
	}
	if c := sem.Count(); c != 4 {
		t.Errorf("Permits leaked or duplicated: final count %d, want 4", c)
	}
}
