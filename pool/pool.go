// File: pool/pool.go
// Package pool implements fixed-size block pools with free-list recycling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-pool/api"
)

// Pool is a non-blocking pool of equally sized memory blocks.
//
// Blocks are []byte slices of len == cap == ObjectSize, carved with a
// three-index expression so a block can never grow into its neighbour.
// The free list keeps the slice headers out of band in a LIFO stack, so
// block contents are never repurposed for linkage and the minimum object
// size is one byte. A block's identity is the address of its first byte.
//
// Every operation completes in a bounded number of steps under a short
// critical section and never suspends the caller, which makes the pool
// usable from any goroutine, time-critical paths included, as long as a
// configured provider upholds the same constraint.
//
// The pool owns only the linkage: backing memory admitted via LoadArray
// stays owned by the caller and is never released by the pool.
type Pool struct {
	mu       sync.Mutex
	objSize  int
	free     [][]byte // LIFO: the most recently freed block is allocated first
	provider api.Provider

	loaded     atomic.Uint64
	totalAlloc atomic.Uint64
	totalFree  atomic.Uint64
	provided   atomic.Uint64
}

var _ api.BlockPool = (*Pool)(nil)

// NewPool creates a pool of objectSize-byte blocks with an optional
// growth provider. It panics if objectSize is not positive.
func NewPool(objectSize int, provider api.Provider) *Pool {
	p := &Pool{}
	p.Init(objectSize, provider)
	return p
}

// Init establishes an empty pool with the given block size and provider,
// and zeroes the accounting counters.
//
// Re-initializing a non-empty pool discards, without releasing, every
// block currently tracked; recovering that memory is the caller's
// responsibility. Init must not be called concurrently with other pool
// operations on live blocks.
func (p *Pool) Init(objectSize int, provider api.Provider) {
	if objectSize <= 0 {
		panic("pool: object size must be positive")
	}
	p.mu.Lock()
	p.objSize = objectSize
	p.free = nil
	p.provider = provider
	p.loaded.Store(0)
	p.totalAlloc.Store(0)
	p.totalFree.Store(0)
	p.provided.Store(0)
	p.mu.Unlock()
}

// LoadArray carves count contiguous blocks out of mem and pushes each
// onto the free list. mem must hold at least count*ObjectSize bytes;
// shorter memory panics on the carve. Each loaded block becomes
// allocable exactly once before being freed again.
func (p *Pool) LoadArray(mem []byte, count int) {
	if count <= 0 {
		return
	}
	p.mu.Lock()
	size := p.objSize
	for i := 0; i < count; i++ {
		p.free = append(p.free, mem[i*size:(i+1)*size:(i+1)*size])
	}
	p.mu.Unlock()
	p.loaded.Add(uint64(count))
}

// Alloc pops and returns the most recently freed block, or nil when the
// pool is empty. On an empty free list a configured provider is
// consulted with (ObjectSize, api.NaturalAlign) and its result handed
// to the caller verbatim, nil included; provider memory never enters
// the free list on that path. Alloc never suspends.
func (p *Pool) Alloc() []byte {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free[n-1] = nil // drop the stack's reference
		p.free = p.free[:n-1]
		p.mu.Unlock()
		p.totalAlloc.Add(1)
		return b
	}
	prov := p.provider
	if prov == nil {
		p.mu.Unlock()
		return nil
	}
	// The provider runs inside the critical section and must not call
	// back into this pool.
	b := prov(p.objSize, api.NaturalAlign)
	p.mu.Unlock()
	if b == nil {
		return nil
	}
	p.provided.Add(1)
	p.totalAlloc.Add(1)
	return b
}

// Free pushes b onto the head of the free list.
//
// b must be a block previously obtained from this pool through Alloc or
// admitted through LoadArray, not yet freed since. Freeing a foreign
// block, a resized slice, or the same block twice is undefined
// behaviour: the pool performs no validation. Provider-obtained blocks
// may be freed here, which grows the recycled capacity by one block.
func (p *Pool) Free(b []byte) {
	p.mu.Lock()
	p.free = append(p.free, b)
	p.mu.Unlock()
	p.totalFree.Add(1)
}

// FreeCount reports the number of blocks currently on the free list.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// ObjectSize reports the fixed block size in bytes.
func (p *Pool) ObjectSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.objSize
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() api.PoolStats {
	p.mu.Lock()
	objSize := p.objSize
	freeBlocks := len(p.free)
	p.mu.Unlock()

	totalAlloc := p.totalAlloc.Load()
	totalFree := p.totalFree.Load()
	return api.PoolStats{
		ObjectSize: objSize,
		FreeBlocks: freeBlocks,
		Loaded:     p.loaded.Load(),
		TotalAlloc: totalAlloc,
		TotalFree:  totalFree,
		Provided:   p.provided.Load(),
		InUse:      int64(totalAlloc) - int64(totalFree),
	}
}
