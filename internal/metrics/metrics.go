// Package metrics provides Prometheus metrics for the catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts featured-products cache lookups by result (hit, miss, corrupt).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "cache_lookups_total",
			Help:      "Total number of featured products cache lookups",
		},
		[]string{"result"},
	)

	// CacheWriteFailures counts cache writes that were swallowed.
	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "cache_write_failures_total",
			Help:      "Total number of failed featured products cache writes",
		},
	)

	// ImageOperations counts image host calls by operation and status.
	ImageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "image_operations_total",
			Help:      "Total number of image host operations",
		},
		[]string{"operation", "status"},
	)

	// RequestDuration measures handler latency per route pattern.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "pattern", "status"},
	)
)

const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"

	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordCacheLookup records the outcome of a cache lookup.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWriteFailure records a swallowed cache write failure.
func RecordCacheWriteFailure() {
	CacheWriteFailures.Inc()
}

// RecordImageOperation records an upload or delete against the image host.
func RecordImageOperation(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	ImageOperations.WithLabelValues(operation, status).Inc()
}

// ObserveRequest records the latency of a served request.
func ObserveRequest(method, pattern, status string, seconds float64) {
	RequestDuration.WithLabelValues(method, pattern, status).Observe(seconds)
}
