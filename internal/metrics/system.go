package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// SystemSampler tracks process memory and CPU usage, smoothing CPU readings
// with an exponential moving average to avoid reporting spiky single
// samples (grounded on ws/internal/metrics/system.go's SystemMetrics).
type SystemSampler struct {
	mu         sync.RWMutex
	cpuPercent float64
	memStats   runtime.MemStats
}

// NewSystemSampler constructs a sampler with an initial reading taken.
func NewSystemSampler() *SystemSampler {
	s := &SystemSampler{}
	s.Sample()
	return s
}

// Sample refreshes the memory and CPU readings. CPU sampling blocks for up
// to one second; call it from a dedicated ticker goroutine, not a hot path.
func (s *SystemSampler) Sample() {
	s.mu.Lock()
	defer s.mu.Unlock()

	runtime.ReadMemStats(&s.memStats)

	percents, err := cpu.Percent(time.Second, false)
	if err != nil || len(percents) == 0 {
		return
	}
	const alpha = 0.3
	if s.cpuPercent == 0 {
		s.cpuPercent = percents[0]
	} else {
		s.cpuPercent = alpha*percents[0] + (1-alpha)*s.cpuPercent
	}
}

// HeapAllocBytes returns the most recently sampled heap allocation size.
func (s *SystemSampler) HeapAllocBytes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memStats.HeapAlloc
}

// CPUPercent returns the most recently sampled, EMA-smoothed CPU percentage.
func (s *SystemSampler) CPUPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cpuPercent
}
