package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lgiavedoni/claw-tools/internal/types"
)

// FeedMetrics holds all feed pipeline Prometheus metrics
type FeedMetrics struct {
	// Line parsing
	LinesParsedTotal   prometheus.Counter
	ParseFailuresTotal prometheus.Counter

	// Classification
	EventsClassifiedTotal *prometheus.CounterVec
	EventsSuppressedTotal prometheus.Counter

	// Feed requests
	FeedRequestsTotal   prometheus.Counter
	FeedRequestDuration prometheus.Histogram
	FeedReadErrorsTotal prometheus.Counter
	FeedNotFoundTotal   prometheus.Counter

	// HTTP boundary
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPErrorsTotal   prometheus.Counter

	// Live stream
	StreamClientsActive prometheus.Gauge

	// Latency percentiles (maintained by the Monitor)
	FeedLatencyP95 prometheus.Gauge
	FeedLatencyP99 prometheus.Gauge
}

var (
	feedMetricsInstance *FeedMetrics
	feedMetricsOnce     sync.Once
)

// GetFeedMetrics returns the singleton instance of feed metrics
func GetFeedMetrics() *FeedMetrics {
	feedMetricsOnce.Do(func() {
		feedMetricsInstance = newFeedMetrics()
	})
	return feedMetricsInstance
}

// newFeedMetrics creates and registers all feed metrics (internal)
func newFeedMetrics() *FeedMetrics {
	return &FeedMetrics{
		LinesParsedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_lines_parsed_total",
			Help: "Total number of log lines that parsed to a JSON record",
		}),
		ParseFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_parse_failures_total",
			Help: "Total number of log lines dropped as unparsable",
		}),
		EventsClassifiedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clawtail_events_classified_total",
			Help: "Total number of classified events by event type",
		}, []string{"event_type"}),
		EventsSuppressedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_events_suppressed_total",
			Help: "Total number of records suppressed by classification rules",
		}),
		FeedRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_feed_requests_total",
			Help: "Total number of feed assembly requests",
		}),
		FeedRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clawtail_feed_request_duration_seconds",
			Help:    "Duration of feed assembly requests",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		FeedReadErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_feed_read_errors_total",
			Help: "Total number of hard log file read errors",
		}),
		FeedNotFoundTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_feed_not_found_total",
			Help: "Total number of feed requests for missing log files",
		}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clawtail_http_requests_total",
			Help: "Total number of HTTP requests by route",
		}, []string{"route"}),
		HTTPErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clawtail_http_errors_total",
			Help: "Total number of HTTP error responses",
		}),
		StreamClientsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clawtail_stream_clients_active",
			Help: "Number of connected live feed WebSocket clients",
		}),
		FeedLatencyP95: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clawtail_feed_latency_p95_seconds",
			Help: "95th percentile feed assembly latency",
		}),
		FeedLatencyP99: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clawtail_feed_latency_p99_seconds",
			Help: "99th percentile feed assembly latency",
		}),
	}
}

// RecordParsedLine records the outcome of parsing one line
func (m *FeedMetrics) RecordParsedLine(ok bool) {
	if ok {
		m.LinesParsedTotal.Inc()
	} else {
		m.ParseFailuresTotal.Inc()
	}
}

// RecordClassification records the outcome of classifying one record
func (m *FeedMetrics) RecordClassification(eventType types.EventType, suppressed bool) {
	if suppressed {
		m.EventsSuppressedTotal.Inc()
		return
	}
	m.EventsClassifiedTotal.WithLabelValues(string(eventType)).Inc()
}

// RecordFeedRequest records a feed assembly request with its duration
func (m *FeedMetrics) RecordFeedRequest(duration time.Duration) {
	m.FeedRequestsTotal.Inc()
	m.FeedRequestDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records one handled HTTP request
func (m *FeedMetrics) RecordHTTPRequest(route string) {
	m.HTTPRequestsTotal.WithLabelValues(route).Inc()
}

// UpdateLatencyPercentiles updates feed latency percentile gauges
func (m *FeedMetrics) UpdateLatencyPercentiles(p95, p99 time.Duration) {
	m.FeedLatencyP95.Set(p95.Seconds())
	m.FeedLatencyP99.Set(p99.Seconds())
}
