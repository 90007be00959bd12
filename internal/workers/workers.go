package workers

import (
	"os"
	"runtime"
	"strconv"
)

// ThumbnailLimit caps the thumbnail pool. Decoding is I/O and memory bound;
// more workers than this makes scrolling choppy rather than faster.
const ThumbnailLimit = 4

// OverrideEnv is the environment variable that forces a worker count.
const OverrideEnv = "THUMBNAIL_WORKERS"

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 0.5 for decode-heavy tasks that share the machine with a UI
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit. The result is never below 1.
//
// Can be overridden with the THUMBNAIL_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	return scale(runtime.GOMAXPROCS(0), multiplier, limit)
}

func scale(available int, multiplier float64, limit int) int {
	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForThumbnails returns the thumbnail pool size: half the available CPUs,
// at least 1 and at most ThumbnailLimit.
func ForThumbnails() int {
	return Count(0.5, ThumbnailLimit)
}
