// File: pool/chunk_provider.go
// Package pool implements fixed-size block pools with free-list recycling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ChunkProvider is the concrete growth capability for non-blocking
// pools: it maps large chunks from a pluggable source, carves them into
// fixed-size blocks, and serves allocation misses from a lock-free
// block cache so the provider path stays bounded.

package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/core/concurrency"
)

// defaultChunkSize is the mapping granularity when none is configured.
const defaultChunkSize = 64 << 10

// ChunkSource maps and releases the large memory regions a
// ChunkProvider carves blocks from.
type ChunkSource interface {
	// Map returns a region of at least size bytes. Implementations may
	// round the length up to their page granularity; the returned slice
	// always covers the whole region and must be handed back to Unmap
	// unchanged.
	Map(size int) ([]byte, error)

	// Unmap releases a region previously returned by Map.
	Unmap(b []byte) error
}

// HeapSource is the portable ChunkSource: chunks live on the Go heap,
// backed by a []uint64 so the base address carries word alignment.
// Unmap is a no-op — a heap chunk is reclaimed by the collector once no
// carved block references it, which makes this source safe even when a
// provider is shut down while blocks are still in use.
type HeapSource struct{}

// NewHeapSource returns the heap-backed chunk source.
func NewHeapSource() ChunkSource { return HeapSource{} }

func (HeapSource) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool: chunk size %d: %w", size, api.ErrInvalidArgument)
	}
	words := (size + 7) / 8
	backing := make([]uint64, words)
	return unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), words*8), nil
}

func (HeapSource) Unmap([]byte) error { return nil }

// ChunkProvider carves fixed-size blocks out of source-mapped chunks.
//
// The fast path is a dequeue from a lock-free cache of pre-carved
// blocks; only a cache miss takes the refill lock and maps a new chunk.
// Blocks are laid out stride bytes apart, the block size rounded up to
// the natural alignment, so every block inherits the chunk base
// alignment.
//
// Provide matches the api.Provider signature, so a provider instance is
// wired into a pool as NewPool(size, cp.Provide).
type ChunkProvider struct {
	blockSize int
	stride    int
	chunkSize int
	source    ChunkSource

	cache *concurrency.LockFreeQueue[[]byte]

	mu      sync.Mutex
	chunks  [][]byte // whole mappings, retained for Shutdown
	reserve [][]byte // carved blocks beyond cache capacity
	closed  atomic.Bool

	carved   atomic.Uint64
	provided atomic.Uint64
	mapped   atomic.Uint64
}

var _ api.GracefulShutdown = (*ChunkProvider)(nil)

// ProviderStats is a point-in-time snapshot of provider accounting.
type ProviderStats struct {
	BlockSize   int
	ChunkSize   int
	Chunks      int    // mappings currently held
	BytesMapped uint64 // total bytes ever mapped
	Carved      uint64 // blocks ever carved
	Provided    uint64 // blocks handed out
	Cached      int    // carved blocks awaiting hand-out (approximate)
}

// NewChunkProvider creates a provider serving blockSize-byte blocks,
// mapping chunkSize-byte chunks from source on demand. A non-positive
// chunkSize selects the default granularity; a nil source selects the
// heap source. Panics if blockSize is not positive.
func NewChunkProvider(blockSize, chunkSize int, source ChunkSource) *ChunkProvider {
	if blockSize <= 0 {
		panic("pool: block size must be positive")
	}
	stride := alignUp(blockSize, api.NaturalAlign)
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkSize < stride {
		chunkSize = stride
	}
	if source == nil {
		source = NewHeapSource()
	}
	return &ChunkProvider{
		blockSize: blockSize,
		stride:    stride,
		chunkSize: chunkSize,
		source:    source,
		cache:     concurrency.NewLockFreeQueue[[]byte](chunkSize / stride),
	}
}

// Provide returns one block of exactly size bytes, or nil when the
// request cannot be satisfied: size exceeds the configured block size,
// the requested alignment does not divide the carve stride, the source
// fails, or the provider is shut down. The nil is propagated unchanged
// by pools as "no more memory available".
func (cp *ChunkProvider) Provide(size, align int) []byte {
	if cp.closed.Load() {
		return nil
	}
	if size <= 0 || size > cp.blockSize {
		return nil
	}
	if align > 0 && cp.stride%align != 0 {
		return nil
	}
	b, ok := cp.cache.Dequeue()
	if !ok {
		b = cp.refill()
		if b == nil {
			return nil
		}
	}
	cp.provided.Add(1)
	return b[0:size:size]
}

// refill serves a cache miss: it re-checks the cache under the lock,
// drains the reserve next, and maps a fresh chunk only when both are
// empty. Returns nil when the source cannot supply a chunk.
func (cp *ChunkProvider) refill() []byte {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.closed.Load() {
		return nil
	}

	// Another goroutine may have refilled while this one queued on
	// the lock.
	if b, ok := cp.cache.Dequeue(); ok {
		return b
	}

	if n := len(cp.reserve); n > 0 {
		b := cp.reserve[n-1]
		cp.reserve[n-1] = nil
		cp.reserve = cp.reserve[:n-1]
		cp.spillReserveLocked()
		return b
	}

	chunk, err := cp.source.Map(cp.chunkSize)
	if err != nil || len(chunk) < cp.stride {
		return nil
	}
	cp.chunks = append(cp.chunks, chunk)
	cp.mapped.Add(uint64(len(chunk)))

	// Carve the whole mapping: the first block answers this miss, the
	// rest queue up for later calls. Page rounding can yield far more
	// blocks than the cache holds; the overflow parks in the reserve.
	n := len(chunk) / cp.stride
	cp.carved.Add(uint64(n))
	for i := 1; i < n; i++ {
		b := chunk[i*cp.stride : i*cp.stride+cp.blockSize : i*cp.stride+cp.blockSize]
		if !cp.cache.Enqueue(b) {
			cp.reserve = append(cp.reserve, b)
		}
	}
	return chunk[0:cp.blockSize:cp.blockSize]
}

// spillReserveLocked moves parked blocks into the cache until either
// runs out. Caller holds cp.mu.
func (cp *ChunkProvider) spillReserveLocked() {
	for len(cp.reserve) > 0 {
		n := len(cp.reserve)
		if !cp.cache.Enqueue(cp.reserve[n-1]) {
			return
		}
		cp.reserve[n-1] = nil
		cp.reserve = cp.reserve[:n-1]
	}
}

// Shutdown releases every mapped chunk back to the source and refuses
// further Provide calls. With a page-backed source, Shutdown must not
// run while provided blocks are in use or Provide calls are in flight;
// with the heap source the collector keeps live blocks valid
// regardless. Shutdown is idempotent.
func (cp *ChunkProvider) Shutdown() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.closed.Load() {
		return nil
	}
	cp.closed.Store(true)

	for {
		if _, ok := cp.cache.Dequeue(); !ok {
			break
		}
	}
	cp.reserve = nil

	var errs []error
	for _, chunk := range cp.chunks {
		if err := cp.source.Unmap(chunk); err != nil {
			errs = append(errs, fmt.Errorf("unmap %d-byte chunk: %w", len(chunk), err))
		}
	}
	cp.chunks = nil
	return errors.Join(errs...)
}

// BlockSize reports the block size this provider serves.
func (cp *ChunkProvider) BlockSize() int { return cp.blockSize }

// Stats returns a snapshot of the provider counters.
func (cp *ChunkProvider) Stats() ProviderStats {
	cp.mu.Lock()
	chunks := len(cp.chunks)
	reserve := len(cp.reserve)
	cp.mu.Unlock()
	return ProviderStats{
		BlockSize:   cp.blockSize,
		ChunkSize:   cp.chunkSize,
		Chunks:      chunks,
		BytesMapped: cp.mapped.Load(),
		Carved:      cp.carved.Load(),
		Provided:    cp.provided.Load(),
		Cached:      cp.cache.Len() + reserve,
	}
}

// alignUp rounds n up to the next multiple of align, a power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
