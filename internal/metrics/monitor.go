package metrics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Monitor tracks feed assembly latencies and periodically publishes
// percentile gauges
type Monitor struct {
	metrics *FeedMetrics

	latencies  []time.Duration
	maxSamples int

	mutex sync.Mutex
}

// NewMonitor creates a latency monitor bound to the given metrics
func NewMonitor(metrics *FeedMetrics) *Monitor {
	return &Monitor{
		metrics:    metrics,
		latencies:  make([]time.Duration, 0, 1000),
		maxSamples: 1000,
	}
}

// Observe records one feed request latency sample
func (m *Monitor) Observe(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.latencies) >= m.maxSamples {
		// Drop the oldest half to keep the window recent without
		// reallocating on every sample.
		copy(m.latencies, m.latencies[len(m.latencies)/2:])
		m.latencies = m.latencies[:len(m.latencies)-len(m.latencies)/2]
	}
	m.latencies = append(m.latencies, d)
}

// Start begins the percentile publishing loop. Blocks until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.publish()
		}
	}
}

// publish computes and publishes the current percentiles
func (m *Monitor) publish() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.latencies) == 0 {
		return
	}

	p95, p99 := percentiles(m.latencies)
	m.metrics.UpdateLatencyPercentiles(p95, p99)
}

// percentiles calculates the 95th and 99th percentiles of the samples
func percentiles(samples []time.Duration) (p95, p99 time.Duration) {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := func(p float64) int {
		i := int(float64(len(sorted)) * p)
		if i >= len(sorted) {
			i = len(sorted) - 1
		}
		return i
	}

	return sorted[idx(0.95)], sorted[idx(0.99)]
}
