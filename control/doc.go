// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for the block pool
// allocators. Part of hioload-pool core.
//
// Provides concurrent-safe observability primitives including:
//   - Metrics telemetry registry with snapshot reads
//   - Debug hooks and probe registration
//   - Runtime probes for scheduler and heap state
//
// Registries are passive: pools never push into them from allocation
// paths, publishers sample pool statistics and set keys explicitly.
package control
