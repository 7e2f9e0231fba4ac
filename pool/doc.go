// Package pool
// Author: momentics <momentics@gmail.com>
//
// Deterministic fixed-size block pooling for latency-critical workloads.
// Implements the non-blocking Pool with pluggable growth providers, the
// GuardedPool with bounded blocking allocation, and chunk-carving block
// providers backed by heap or page memory.
// All primitives are cross-platform (Linux/Windows) and designed for
// bounded-time memory acquisition on the hot path.
// See pool.go, guarded.go, chunk_provider.go for implementation details.
package pool
