// Package memory keeps thumbnail rendering inside the container's memory
// limit.
//
// [ConfigureFromEnv] sets GOMEMLIMIT from MEMORY_LIMIT (bytes) and
// MEMORY_RATIO (default 0.75), unless GOMEMLIMIT is already set. The lower
// default ratio leaves room for ffmpeg and libvips, whose allocations the Go
// runtime does not see.
//
// A [Monitor] samples the heap and, above the critical mark, holds render
// workers in [Monitor.Wait] until usage drops below the resume mark:
//
//	mon := memory.NewMonitor(memory.DefaultConfig())
//	mon.Start()
//	defer mon.Stop()
//
//	cfg := loader.DefaultConfig()
//	cfg.Gate = mon
package memory
