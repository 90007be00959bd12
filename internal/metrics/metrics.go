package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Thumbnail pool metrics
var (
	PoolWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_pool_workers",
			Help: "Number of thumbnail workers started by the pool",
		},
	)

	PoolBusyWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_pool_busy_workers",
			Help: "Number of thumbnail workers currently rendering",
		},
	)

	PoolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_pool_queue_depth",
			Help: "Number of thumbnail requests waiting for a worker",
		},
	)

	PoolPendingRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_pool_pending_rows",
			Help: "Number of rows queued or in flight",
		},
	)

	PoolRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_pool_requests_total",
			Help: "Total number of thumbnail requests by result",
		},
		[]string{"result"}, // "enqueued", "deduplicated", "rejected"
	)

	PoolQueueClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_pool_queue_clears_total",
			Help: "Total number of queue clears",
		},
	)

	PoolDiscardedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_pool_discarded_requests_total",
			Help: "Total number of queued requests dropped by queue clears",
		},
	)

	PoolShutdownTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_pool_shutdown_timeouts_total",
			Help: "Total number of pool shutdowns that had to abandon workers",
		},
	)
)

// Render metrics
var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_renders_total",
			Help: "Total number of renders by media kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "haigaku_thumbnail_render_duration_seconds",
			Help:    "Time spent producing one preview",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	FFmpegDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "haigaku_thumbnail_ffmpeg_duration_seconds",
			Help:    "Time spent in ffmpeg frame extraction",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	VipsDecodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_vips_decodes_total",
			Help: "Total number of libvips decode attempts by status",
		},
		[]string{"status"},
	)
)

// Cache metrics
var (
	CacheRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_cache_rows",
			Help: "Number of rows in the preview cache",
		},
	)

	CacheRenderedRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "haigaku_thumbnail_cache_rendered_rows",
			Help: "Number of rows holding a result, by outcome",
		},
		[]string{"outcome"},
	)

	CacheCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_cache_completions_total",
			Help: "Total number of completions delivered to the cache by result",
		},
		[]string{"result"}, // "stored", "out_of_range", "stale_path", "stale_size"
	)

	ViewportSettlesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "haigaku_thumbnail_viewport_settles_total",
			Help: "Total number of viewport settle computations",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_filesystem_retry_attempts_total",
			Help: "Total number of retried filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after a retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_memory_usage_ratio",
			Help: "Heap allocation as a share of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "haigaku_memory_renders_paused",
			Help: "Whether thumbnail renders are paused for memory (1) or not (0)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "haigaku_memory_gc_pauses_total",
			Help: "Total number of times renders were paused for memory",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "haigaku_http_requests_total",
			Help: "Total number of requests to the metrics server by route and status",
		},
		[]string{"route", "status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "haigaku_app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
