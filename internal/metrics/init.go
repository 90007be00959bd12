package metrics

// Outcome label values, shared with the preview package.
var outcomes = []string{"rendered", "decode_failed", "video_unavailable", "unsupported"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, result := range []string{"enqueued", "deduplicated", "rejected"} {
		PoolRequestsTotal.WithLabelValues(result)
	}

	for _, kind := range []string{"image", "video", "unknown"} {
		RenderDuration.WithLabelValues(kind)
		for _, outcome := range outcomes {
			RendersTotal.WithLabelValues(kind, outcome)
		}
	}

	for _, outcome := range outcomes {
		CacheRenderedRows.WithLabelValues(outcome)
	}

	for _, result := range []string{"stored", "out_of_range", "stale_path", "stale_size"} {
		CacheCompletionsTotal.WithLabelValues(result)
	}

	for _, status := range []string{"success", "error"} {
		VipsDecodesTotal.WithLabelValues(status)
	}

	for _, op := range []string{"open", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
