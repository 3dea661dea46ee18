package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the gazetteer
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Import Metrics
	ImportRowsTotal        *prometheus.CounterVec
	ImportDroppedRowsTotal *prometheus.CounterVec
	ImportDuration         prometheus.Histogram
	ImportRunsTotal        *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric with reg. Pass
// prometheus.DefaultRegisterer in binaries and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gazetteer_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gazetteer_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Import Metrics
		ImportRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_import_rows_total",
				Help: "Rows written by the bulk import, by tier",
			},
			[]string{"tier"},
		),
		ImportDroppedRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_import_dropped_rows_total",
				Help: "Source rows skipped because a parent reference could not be resolved, by tier",
			},
			[]string{"tier"},
		),
		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gazetteer_import_duration_seconds",
				Help:    "Bulk import run time in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
		),
		ImportRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazetteer_import_runs_total",
				Help: "Bulk import runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}
