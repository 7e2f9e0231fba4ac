// File: facade/hioload.go
// Unified facade layer for hioload-pool library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the HioloadPool struct, which aggregates the core
// components of the hioload-pool library behind a single facade. Based on
// immutable configuration it owns the preloaded block storage, constructs
// either the non-blocking or the guarded pool variant, optionally attaches
// a chunk provider for on-demand growth, and wires pool statistics into
// the Control interface. The facade exposes allocation passthroughs and a
// unified graceful shutdown.

package facade

import (
	"log"
	"sync"

	"github.com/momentics/hioload-pool/adapters"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/pool"
)

// Config holds parameters immutable per run.
// All fields influence the initialization of internal components and cannot
// be changed at runtime; reconstruct the facade to change them.
type Config struct {
	ObjectSize    int  // Size in bytes of every block served by the pool
	Capacity      int  // Number of blocks preloaded at construction
	Guarded       bool // Use the blocking variant with timed waits
	GrowChunkSize int  // Chunk granularity for on-demand growth; 0 disables growth
	UsePages      bool // Map growth chunks through the OS page allocator
	EnableMetrics bool // Publish configuration through the Control metrics
	EnableDebug   bool // Install pool and runtime debug probes
}

// DefaultConfig returns default configuration values.
// These sane defaults support typical use cases without extensive tuning.
func DefaultConfig() *Config {
	return &Config{
		ObjectSize:    64,        // 64-byte blocks
		Capacity:      1024,      // 1024 blocks preloaded
		Guarded:       false,     // Non-blocking variant
		GrowChunkSize: 64 * 1024, // 64 KiB growth chunks
		UsePages:      false,     // Heap-backed growth chunks
		EnableMetrics: true,      // Enable built-in metrics
		EnableDebug:   true,      // Enable debug probes
	}
}

// HioloadPool is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type HioloadPool struct {
	plain    *pool.Pool          // Non-blocking pool, nil when guarded
	guarded  *pool.GuardedPool   // Guarded pool, nil when non-blocking
	provider *pool.ChunkProvider // Growth capability, nil when disabled
	control  *adapters.ControlAdapter

	backing []byte  // Preloaded block storage, held for the pool's lifetime
	config  *Config // Immutable configuration

	mu     sync.Mutex // Protects closed flag
	closed bool       // Set once Shutdown has run
}

// Ensure compliance with the library contracts.
var (
	_ api.GracefulShutdown = (*HioloadPool)(nil)
	_ api.TimedBlockPool   = (*HioloadPool)(nil)
)

// New constructs a HioloadPool with the given configuration.
// It preloads Capacity blocks into the selected pool variant, attaches the
// growth provider when configured, and installs Control probes. A guarded
// pool never receives a provider: its block count is mirrored by a counting
// semaphore, and provider-grown blocks would bypass the waiter accounting.
func New(cfg *Config) (*HioloadPool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ObjectSize <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "object size must be positive").
			WithContext("object_size", cfg.ObjectSize)
	}
	if cfg.Capacity < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "capacity must not be negative").
			WithContext("capacity", cfg.Capacity)
	}

	h := &HioloadPool{config: cfg}
	h.control = adapters.NewControlAdapter()

	// Growth provider: non-guarded pools only.
	if cfg.GrowChunkSize > 0 {
		if cfg.Guarded {
			log.Printf("[facade] growth provider disabled: guarded pool keeps a fixed census")
		} else {
			h.provider = pool.NewChunkProvider(cfg.ObjectSize, cfg.GrowChunkSize, h.newChunkSource())
		}
	}

	// Construct the pool variant and preload its capacity.
	if cfg.Capacity > 0 {
		h.backing = make([]byte, cfg.ObjectSize*cfg.Capacity)
	}
	if cfg.Guarded {
		h.guarded = pool.NewGuardedPool(cfg.ObjectSize)
		if cfg.Capacity > 0 {
			h.guarded.LoadArray(h.backing, cfg.Capacity)
		}
	} else {
		var prov api.Provider
		if h.provider != nil {
			prov = h.provider.Provide
		}
		h.plain = pool.NewPool(cfg.ObjectSize, prov)
		if cfg.Capacity > 0 {
			h.plain.LoadArray(h.backing, cfg.Capacity)
		}
	}

	if cfg.EnableDebug {
		h.control.RegisterPool("main", h)
		if h.provider != nil {
			h.control.RegisterDebugProbe("provider.main", func() any {
				return h.provider.Stats()
			})
		}
	}
	if cfg.EnableMetrics {
		h.control.SetMetric("pool.object_size", cfg.ObjectSize)
		h.control.SetMetric("pool.capacity", cfg.Capacity)
		h.control.SetMetric("pool.guarded", cfg.Guarded)
	}

	return h, nil
}

// newChunkSource selects the backing source for growth chunks, falling
// back to the heap when the platform has no page source.
func (h *HioloadPool) newChunkSource() pool.ChunkSource {
	if !h.config.UsePages {
		return nil
	}
	src, err := pool.NewPageSource()
	if err != nil {
		log.Printf("[facade] page source init failed: %v, falling back to heap chunks", err)
		return nil
	}
	return src
}

// Alloc returns a free block, or nil when none is available. The guarded
// variant polls without waiting.
func (h *HioloadPool) Alloc() []byte {
	if h.guarded != nil {
		return h.guarded.Alloc()
	}
	return h.plain.Alloc()
}

// AllocTimeout returns a free block, waiting up to t on the guarded
// variant. The non-blocking variant never waits; any timeout behaves as
// immediate.
func (h *HioloadPool) AllocTimeout(t api.Timeout) []byte {
	if h.guarded != nil {
		return h.guarded.AllocTimeout(t)
	}
	return h.plain.Alloc()
}

// Free returns a block obtained from Alloc or AllocTimeout.
func (h *HioloadPool) Free(b []byte) {
	if h.guarded != nil {
		h.guarded.Free(b)
		return
	}
	h.plain.Free(b)
}

// LoadArray appends externally owned storage to the pool. The caller
// keeps mem alive for as long as the pool serves blocks from it.
func (h *HioloadPool) LoadArray(mem []byte, count int) {
	if h.guarded != nil {
		h.guarded.LoadArray(mem, count)
		return
	}
	h.plain.LoadArray(mem, count)
}

// FreeCount reports the number of immediately allocatable blocks.
func (h *HioloadPool) FreeCount() int {
	if h.guarded != nil {
		return h.guarded.FreeCount()
	}
	return h.plain.FreeCount()
}

// ObjectSize reports the configured block size.
func (h *HioloadPool) ObjectSize() int {
	return h.config.ObjectSize
}

// Waiters reports goroutines parked in AllocTimeout; always zero for the
// non-blocking variant.
func (h *HioloadPool) Waiters() int {
	if h.guarded != nil {
		return h.guarded.Waiters()
	}
	return 0
}

// Stats returns a snapshot of the pool counters.
func (h *HioloadPool) Stats() api.PoolStats {
	if h.guarded != nil {
		return h.guarded.Stats()
	}
	return h.plain.Stats()
}

// GetControl returns the Control interface for metrics and debug probes.
func (h *HioloadPool) GetControl() api.Control {
	return h.control
}

// Shutdown releases the growth provider's mappings and marks the facade
// closed. Blocks already handed out stay valid when growth chunks are
// heap-backed; with UsePages the caller must return or abandon every
// block before Shutdown. Repeated calls are no-ops.
func (h *HioloadPool) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	h.control.UnregisterPool("main")
	if h.provider != nil {
		return h.provider.Shutdown()
	}
	return nil
}
