package scheduler

import (
	"runtime"

	"github.com/pbnjay/memory"
)

// MemoryMonitor reports how much headroom is left before the scheduler
// should stop admitting new files (spec.md 5's memory-pressure
// throttling). Implementations must be safe for concurrent use.
type MemoryMonitor interface {
	// Pressure returns the fraction of the configured budget currently
	// in use, in [0, 1+]. Values at or above 1 mean the budget is
	// exhausted.
	Pressure() float64
}

// processMemoryMonitor samples the Go runtime's own heap usage against a
// fixed byte budget — the scheduler's best estimate of memory this
// process itself is using for in-flight parses and rule state.
type processMemoryMonitor struct {
	budgetBytes uint64
}

// NewProcessMemoryMonitor budgets the process's own heap against
// budgetBytes. A budget of 0 uses a quarter of total host RAM.
func NewProcessMemoryMonitor(budgetBytes uint64) MemoryMonitor {
	if budgetBytes == 0 {
		budgetBytes = memory.TotalMemory() / 4
	}

	return &processMemoryMonitor{budgetBytes: budgetBytes}
}

func (m *processMemoryMonitor) Pressure() float64 {
	if m.budgetBytes == 0 {
		return 0
	}

	var stats runtime.MemStats

	runtime.ReadMemStats(&stats)

	return float64(stats.HeapAlloc) / float64(m.budgetBytes)
}

// hostMemoryMonitor tracks system-wide free memory rather than this
// process's own heap — useful when the scheduler shares the host with
// other processes and must back off before the OS starts reclaiming
// pages under it.
type hostMemoryMonitor struct {
	minFreeBytes uint64
}

// NewHostMemoryMonitor reports pressure once free host memory drops
// below minFreeBytes. A minFreeBytes of 0 uses 10% of total RAM.
func NewHostMemoryMonitor(minFreeBytes uint64) MemoryMonitor {
	if minFreeBytes == 0 {
		minFreeBytes = memory.TotalMemory() / 10
	}

	return &hostMemoryMonitor{minFreeBytes: minFreeBytes}
}

func (m *hostMemoryMonitor) Pressure() float64 {
	free := memory.FreeMemory()
	if free >= m.minFreeBytes {
		return 0
	}

	if free == 0 {
		return 1
	}

	return float64(m.minFreeBytes) / float64(free)
}
