// control/probes.go
// Author: momentics <momentics@gmail.com>
//
// Portable runtime probes: scheduler and heap state useful when judging
// pool sizing. ReadMemStats is not free, probes run only on DumpState.

package control

import "runtime"

// RegisterRuntimeProbes installs the standard runtime debug probes.
func RegisterRuntimeProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("runtime.goroutines", func() any {
		return runtime.NumGoroutine()
	})
	dp.RegisterProbe("runtime.heap_inuse", func() any {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return ms.HeapInuse
	})
}
