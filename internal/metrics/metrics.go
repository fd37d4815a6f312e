// Package metrics exposes the reactor's connection, command, and resource
// counters through prometheus/client_golang, the metrics library the
// surrounding pack standardizes on (grounded on ws/internal/metrics/metrics.go).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the reactor and protocol layers
// report to. Construct once per process with New and share the pointer.
type Metrics struct {
	ConnectionsTotal  prometheus.Counter
	ConnectionsActive prometheus.Gauge
	ConnectionErrors  prometheus.Counter

	RequestsTotal prometheus.Counter
	BytesReceived prometheus.Counter
	BytesSent     prometheus.Counter

	CommandsTotal *prometheus.CounterVec
	CommandErrors *prometheus.CounterVec

	GoroutinesCount  prometheus.Gauge
	MemoryUsageBytes prometheus.Gauge
	CPUUsagePercent  prometheus.Gauge

	EventbusPublishErrors prometheus.Counter

	startTime time.Time
}

// New registers and returns the process's metric set.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		ConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_connections_total",
			Help: "Total TCP connections accepted by the reactor.",
		}),
		ConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvs_connections_active",
			Help: "Connections currently registered in the reactor's fd table.",
		}),
		ConnectionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_connection_errors_total",
			Help: "Connection attempts rejected by the admission-control rate limiter.",
		}),

		RequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_requests_total",
			Help: "Total requests handled across all protocols.",
		}),
		BytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_bytes_received_total",
			Help: "Total bytes read from client sockets.",
		}),
		BytesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_bytes_sent_total",
			Help: "Total bytes written to client sockets.",
		}),

		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kvs_commands_total",
			Help: "Mutating KV commands (set, del, mod) executed, by operation; fetch and existence commands are not counted.",
		}, []string{"verb"}),
		CommandErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kvs_command_errors_total",
			Help: "Mutating KV commands (set, del, mod) that returned a non-OK reply, by operation and code label.",
		}, []string{"verb", "code"}),

		GoroutinesCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvs_goroutines",
			Help: "Current number of goroutines.",
		}),
		MemoryUsageBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvs_memory_usage_bytes",
			Help: "Process heap memory in use, from runtime.MemStats.",
		}),
		CPUUsagePercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvs_cpu_usage_percent",
			Help: "Smoothed process CPU usage percentage.",
		}),

		EventbusPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvs_eventbus_publish_errors_total",
			Help: "Mutation events that failed to publish to the event bus.",
		}),
	}
}

// Uptime reports how long the process has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
