// File: api/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contracts for fixed-size block pools: the growth provider capability,
// the common pool surface, and pool statistics.

package api

import "math/bits"

// NaturalAlign is the machine word size in bytes. Pools request this
// alignment from their Provider; blocks carved on word boundaries are
// safe to overlay with any fixed-layout record of the pool's object size.
const NaturalAlign = bits.UintSize / 8

// Provider supplies one block of at least size bytes, aligned to align,
// when a pool's free list is exhausted. A nil result means no more memory
// is available and is handed to the pool's caller unchanged.
//
// A Provider must not suspend: it is invoked on the allocation path of
// pools that promise bounded-time completion. It runs inside the pool's
// critical section and must not call back into the pool.
type Provider func(size, align int) []byte

// BlockPool is the surface shared by both pool variants.
//
// Alloc and Free trade in blocks of exactly ObjectSize bytes. A block
// returned by Alloc is owned by the caller until passed back to Free.
// Freeing a block twice, freeing a block of a different size, or freeing
// a block obtained from another pool is undefined behaviour: the pool
// performs no ownership tracking beyond the free list itself.
type BlockPool interface {
	// Alloc returns a free block, or nil when none is available.
	// It never suspends the caller.
	Alloc() []byte

	// Free returns a previously allocated block to the pool.
	Free(b []byte)

	// LoadArray carves count contiguous blocks out of mem and adds
	// them to the free list. mem must hold at least count*ObjectSize
	// bytes and stays owned by the caller.
	LoadArray(mem []byte, count int)

	// FreeCount reports the number of blocks currently available.
	FreeCount() int

	// ObjectSize reports the fixed block size in bytes.
	ObjectSize() int

	// Stats returns a snapshot of the pool counters.
	Stats() PoolStats
}

// TimedBlockPool extends BlockPool with bounded blocking allocation.
type TimedBlockPool interface {
	BlockPool

	// AllocTimeout returns a free block, waiting up to the given
	// timeout for one to appear. It returns nil on expiry and, for
	// an Immediate timeout, polls without suspending.
	AllocTimeout(t Timeout) []byte
}

// PoolStats is a point-in-time snapshot of pool accounting counters.
type PoolStats struct {
	ObjectSize int    // fixed block size in bytes
	FreeBlocks int    // blocks on the free list right now
	Loaded     uint64 // blocks ever admitted via LoadArray
	TotalAlloc uint64 // successful allocations, provider hits included
	TotalFree  uint64 // blocks returned via Free
	Provided   uint64 // blocks served by the provider
	InUse      int64  // TotalAlloc - TotalFree
}
