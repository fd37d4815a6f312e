package reactor

import "sync/atomic"

// Stats holds the server-wide counters from spec.md §3 ("Server
// statistics"). Every field is updated only from the reactor's own
// goroutine; atomics are used purely so the ambient metrics sampler and
// admin HTTP surface can read them from a different goroutine without a
// data race, not because the reactor itself needs synchronized increments.
type Stats struct {
	TotalConnections  atomic.Int64
	ActiveConnections atomic.Int64
	TotalRequests     atomic.Int64
	BytesReceived     atomic.Int64
	BytesSent         atomic.Int64
}

// Snapshot is a point-in-time copy of Stats, safe to serialize.
type Snapshot struct {
	TotalConnections  int64
	ActiveConnections int64
	TotalRequests     int64
	BytesReceived     int64
	BytesSent         int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TotalConnections:  s.TotalConnections.Load(),
		ActiveConnections: s.ActiveConnections.Load(),
		TotalRequests:     s.TotalRequests.Load(),
		BytesReceived:     s.BytesReceived.Load(),
		BytesSent:         s.BytesSent.Load(),
	}
}
