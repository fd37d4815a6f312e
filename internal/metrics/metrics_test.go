package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"kvstore-reactor/internal/reactor"
)

// New registers every collector against the global default registerer, so
// only one test in this package may call it — a second call would panic on
// duplicate registration. TestNewRegistersDistinctCollectors exercises both
// New and the collector's Stats-bridging tick for that reason.
func TestNewRegistersDistinctCollectors(t *testing.T) {
	m := New()
	m.ConnectionsTotal.Inc()
	m.CommandsTotal.WithLabelValues("set").Inc()
	m.CommandErrors.WithLabelValues("set", "AlreadyExists").Inc()
	if m.Uptime() < 0 {
		t.Fatalf("Uptime returned a negative duration")
	}

	var stats reactor.Stats
	stats.TotalConnections.Store(5)
	stats.ActiveConnections.Store(2)
	stats.TotalRequests.Store(10)
	stats.BytesReceived.Store(100)
	stats.BytesSent.Store(200)

	c := NewCollector(m, &stats, 0)
	c.tick()
	if got := testutil.ToFloat64(m.ConnectionsTotal); got != 1+5 {
		t.Fatalf("ConnectionsTotal = %v, want %v (1 from the manual Inc above + 5 bridged)", got, 6)
	}
	if got := testutil.ToFloat64(m.ConnectionsActive); got != 2 {
		t.Fatalf("ConnectionsActive = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal); got != 10 {
		t.Fatalf("RequestsTotal = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.BytesReceived); got != 100 {
		t.Fatalf("BytesReceived = %v, want 100", got)
	}
	if got := testutil.ToFloat64(m.BytesSent); got != 200 {
		t.Fatalf("BytesSent = %v, want 200", got)
	}

	// A second tick with unchanged stats must not double-count: the
	// counters only advance by the delta since the last snapshot.
	c.tick()
	if got := testutil.ToFloat64(m.RequestsTotal); got != 10 {
		t.Fatalf("RequestsTotal after a no-op tick = %v, want 10 (no new requests)", got)
	}

	stats.TotalRequests.Add(3)
	c.tick()
	if got := testutil.ToFloat64(m.RequestsTotal); got != 13 {
		t.Fatalf("RequestsTotal after +3 requests = %v, want 13", got)
	}
}

func TestSystemSamplerReportsNonNegativeReadings(t *testing.T) {
	s := NewSystemSampler()
	if s.HeapAllocBytes() == 0 {
		t.Fatalf("HeapAllocBytes should be nonzero for a running process")
	}
	if s.CPUPercent() < 0 {
		t.Fatalf("CPUPercent should never be negative, got %f", s.CPUPercent())
	}
}
