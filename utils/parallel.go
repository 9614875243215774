package utils

import (
	"runtime"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// WorkerCount resolves a requested worker count, falling back to ParallelFactor
// when requested is not positive, and never exceeding the amount of work.
func WorkerCount(requested, work int) int {
	n := requested
	if n <= 0 {
		n = ParallelFactor
	}
	if work > 0 && n > work {
		n = work
	}
	if n < 1 {
		n = 1
	}
	return n
}
