// Package metrics provides Prometheus instrumentation for the thumbnail
// subsystem.
//
// All metrics are prefixed with "haigaku_" and registered on the default
// registry through promauto.
//
// # Metric Categories
//
// ## Pool Metrics
//
// Track the worker pool and its queue:
//   - PoolWorkers, PoolBusyWorkers: Gauges of started and rendering workers
//   - PoolQueueDepth, PoolPendingRows: Gauges of queued requests and deduplicated rows
//   - PoolRequestsTotal: Counter of requests by result (enqueued/deduplicated/rejected)
//   - PoolQueueClearsTotal, PoolDiscardedRequestsTotal: Queue clears and what they dropped
//   - PoolShutdownTimeoutsTotal: Shutdowns that abandoned a stuck worker
//
// ## Render Metrics
//
//   - RendersTotal: Counter by media kind and outcome
//   - RenderDuration: Histogram of render time by media kind
//   - FFmpegDuration: Histogram of frame extraction time
//   - VipsDecodesTotal: libvips decode attempts by status
//
// ## Cache Metrics
//
// Sampled by Collector from a StatsProvider, plus completion accounting:
//   - CacheRows, CacheRenderedRows
//   - CacheCompletionsTotal: by result (stored/out_of_range/stale_path/stale_size)
//   - ViewportSettlesTotal
//
// ## Filesystem Metrics
//
// ESTALE retry accounting for directory scans and image opens.
//
// ## Memory and HTTP Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses: render gating by the memory monitor
//   - HTTPRequestsTotal: requests to the metrics server by route and status
package metrics
