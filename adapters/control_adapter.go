// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.
// Pools attach through RegisterPool, which publishes their statistics as
// on-demand debug probes rather than polling from allocation paths.

package adapters

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/control"
)

type ControlAdapter struct {
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

var _ api.Control = (*ControlAdapter)(nil)

func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterRuntimeProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any)
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// RegisterPool publishes a pool's statistics under the probe name
// "pool.<name>". The pool is sampled only when Stats is read.
func (c *ControlAdapter) RegisterPool(name string, p api.BlockPool) {
	c.debug.RegisterProbe("pool."+name, func() any {
		return p.Stats()
	})
}

// UnregisterPool removes a pool probe installed by RegisterPool.
func (c *ControlAdapter) UnregisterPool(name string) {
	c.debug.UnregisterProbe("pool." + name)
}
