package metrics

import (
	"time"

	"image-viewer/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the cache figures published as gauges
type Stats struct {
	Entries     int
	Bytes       int64
	BudgetBytes int64
}

// Collector periodically collects and updates metrics
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

	stats := c.statsProvider.GetStats()

	CacheEntries.Set(float64(stats.Entries))
	CacheBytes.Set(float64(stats.Bytes))
	CacheBudgetBytes.Set(float64(stats.BudgetBytes))

	logging.Debug("Metrics collected: cache entries=%d, bytes=%d, budget=%d",
		stats.Entries, stats.Bytes, stats.BudgetBytes)
}
