// File: pool/guarded.go
// Package pool implements fixed-size block pools with free-list recycling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// GuardedPool composes a Pool with a timed counting semaphore so that
// allocation can wait, with a bounded or unbounded deadline, for another
// goroutine to free a block.

package pool

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/core/concurrency"
)

// GuardedPool is a fixed-size block pool whose allocation can block.
//
// A counting semaphore tracks the free blocks: every Free and every
// loaded block publishes one permit after the block is pushed, and
// AllocTimeout pops a block only after acquiring a permit. Acquiring a
// permit therefore reserves exactly one block — the push-before-signal
// ordering guarantees the reserved block is already on the free list,
// so no two waiters ever consume the same wakeup and a woken waiter
// always receives a block.
//
// Waiters are released in arrival order. Guarded pools take no growth
// provider: on-demand growth and blocking for recycled blocks answer
// different failure modes and do not compose.
type GuardedPool struct {
	pool Pool
	sem  concurrency.TimedSemaphore
}

var _ api.TimedBlockPool = (*GuardedPool)(nil)

// NewGuardedPool creates a guarded pool of objectSize-byte blocks.
// It panics if objectSize is not positive.
func NewGuardedPool(objectSize int) *GuardedPool {
	g := &GuardedPool{}
	g.Init(objectSize)
	return g
}

// Init establishes an empty guarded pool with the given block size and
// resets the availability count to zero. The reinitialization caveats of
// Pool.Init apply; additionally, Init must not run while goroutines are
// blocked in AllocTimeout.
func (g *GuardedPool) Init(objectSize int) {
	g.pool.Init(objectSize, nil)
	g.sem.Init(0)
}

// LoadArray carves count contiguous blocks out of mem onto the free
// list, then publishes count permits, releasing up to count blocked
// waiters in arrival order.
func (g *GuardedPool) LoadArray(mem []byte, count int) {
	if count <= 0 {
		return
	}
	g.pool.LoadArray(mem, count)
	g.sem.SignalN(count)
}

// AllocTimeout returns a free block, waiting up to t for one to appear.
//
// With api.Immediate it polls: a block when one is available, nil
// otherwise, never suspending. With api.Infinite it waits until a block
// is freed or loaded and never returns nil. With a finite timeout it
// returns nil only once at least the requested duration has elapsed
// without a block becoming available; a wakeup without a reserved block
// cannot happen, so the wait never succeeds spuriously.
func (g *GuardedPool) AllocTimeout(t api.Timeout) []byte {
	if !g.sem.Wait(t) {
		return nil
	}
	b := g.pool.Alloc()
	if b == nil {
		// A held permit reserves a pushed block; an empty list here
		// means the accounting was corrupted by caller misuse.
		panic("pool: guarded pool count diverged from free list")
	}
	return b
}

// Alloc is the non-blocking poll, identical to AllocTimeout(api.Immediate).
func (g *GuardedPool) Alloc() []byte {
	return g.AllocTimeout(api.Immediate)
}

// Free pushes b onto the free list and publishes one permit, releasing
// the longest-waiting goroutine if any is blocked in AllocTimeout. The
// ownership preconditions of Pool.Free apply unchanged.
func (g *GuardedPool) Free(b []byte) {
	g.pool.Free(b)
	g.sem.Signal()
}

// FreeCount reports the number of currently acquirable blocks, i.e. the
// availability count. It equals the free-list length at any instant when
// no allocation or free is mid-flight.
func (g *GuardedPool) FreeCount() int {
	return g.sem.Count()
}

// Waiters reports how many goroutines are blocked in AllocTimeout.
func (g *GuardedPool) Waiters() int {
	return g.sem.Waiters()
}

// ObjectSize reports the fixed block size in bytes.
func (g *GuardedPool) ObjectSize() int {
	return g.pool.ObjectSize()
}

// Stats returns a snapshot of the underlying pool counters.
func (g *GuardedPool) Stats() api.PoolStats {
	return g.pool.Stats()
}
