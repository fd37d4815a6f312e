package metrics

import (
	"context"
	"runtime"
	"time"

	"kvstore-reactor/internal/reactor"
)

// Collector periodically refreshes the gauge metrics that need active
// sampling (goroutines, memory, CPU) rather than being updated inline by
// request-path code (grounded on ws/internal/metrics/enhanced.go's
// ticker-driven StartCollection, trimmed of its WebSocket/NATS-specific
// connection and message-rate tracking). It is also the bridge between
// internal/reactor's atomic Stats counters and the Prometheus series in
// Metrics: the reactor never imports this package, so it cannot publish
// its own counters and relies on the collector to sample them.
type Collector struct {
	metrics  *Metrics
	sampler  *SystemSampler
	stats    *reactor.Stats
	interval time.Duration

	lastConnections int64
	lastRequests    int64
	lastBytesRecv   int64
	lastBytesSent   int64
}

// NewCollector builds a collector sampling every interval. stats is the
// reactor's counter block; its values are read via Snapshot, never mutated.
func NewCollector(m *Metrics, stats *reactor.Stats, interval time.Duration) *Collector {
	return &Collector{
		metrics:  m,
		sampler:  NewSystemSampler(),
		stats:    stats,
		interval: interval,
	}
}

// Sampler exposes the underlying system sampler so ambient HTTP handlers
// can report the same readings the collector feeds into Prometheus.
func (c *Collector) Sampler() *SystemSampler {
	return c.sampler
}

// Run samples and publishes gauges until ctx is canceled.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Collector) tick() {
	c.sampler.Sample()
	c.metrics.GoroutinesCount.Set(float64(runtime.NumGoroutine()))
	c.metrics.MemoryUsageBytes.Set(float64(c.sampler.HeapAllocBytes()))
	c.metrics.CPUUsagePercent.Set(c.sampler.CPUPercent())

	snap := c.stats.Snapshot()
	c.metrics.ConnectionsTotal.Add(float64(snap.TotalConnections - c.lastConnections))
	c.metrics.ConnectionsActive.Set(float64(snap.ActiveConnections))
	c.metrics.RequestsTotal.Add(float64(snap.TotalRequests - c.lastRequests))
	c.metrics.BytesReceived.Add(float64(snap.BytesReceived - c.lastBytesRecv))
	c.metrics.BytesSent.Add(float64(snap.BytesSent - c.lastBytesSent))
	c.lastConnections = snap.TotalConnections
	c.lastRequests = snap.TotalRequests
	c.lastBytesRecv = snap.BytesReceived
	c.lastBytesSent = snap.BytesSent
}
