// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages runtime metrics and debug introspection.
type Control interface {
	// Stats merges published metrics and debug probe output into one
	// snapshot; probe entries are prefixed with "debug.".
	Stats() map[string]any

	// SetMetric publishes or updates a named metric value.
	SetMetric(key string, value any)

	// RegisterDebugProbe installs a named hook evaluated on demand.
	RegisterDebugProbe(name string, fn func() any)
}
