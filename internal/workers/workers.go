package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the worker count.
const OverrideEnv = "THUMBNAIL_WORKERS"

// Count returns the number of workers for a task type, derived from
// GOMAXPROCS (which follows container CPU limits since Go 1.19).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// limit caps the result; 0 means no cap. THUMBNAIL_WORKERS overrides the
// computed value but not the cap.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capAt(count, limit)
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForBatch returns the CPU-bound worker count for a batch of n items, never
// more workers than items and at least one.
func ForBatch(n, limit int) int {
	workers := ForCPU(limit)
	if n > 0 && workers > n {
		workers = n
	}
	return workers
}
