package metrics

import (
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
)

// StatsProvider interface for collecting preview cache stats
type StatsProvider interface {
	CacheStats() CacheStats
}

// CacheStats holds a snapshot of the preview cache
type CacheStats struct {
	Rows int
	// Rendered counts rows holding a result, keyed by outcome label.
	Rendered map[string]int
}

// Collector periodically samples a StatsProvider into the cache gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.CacheStats()

	CacheRows.Set(float64(stats.Rows))
	total := 0
	for _, outcome := range outcomes {
		n := stats.Rendered[outcome]
		total += n
		CacheRenderedRows.WithLabelValues(outcome).Set(float64(n))
	}

	logging.Debug("Metrics collected: rows=%d, rendered=%d", stats.Rows, total)
}
