package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	entryWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_writes_total",
			Help: "Total number of entry write operations",
		},
		[]string{"operation", "status"},
	)

	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_import_rows_total",
			Help: "Total number of CSV import rows by outcome",
		},
		[]string{"outcome"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpus_cache_lookups_total",
			Help: "Corpus cache lookups by result",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware collects Prometheus metrics for each HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordEntryWrite counts a create/update/delete operation outcome.
func RecordEntryWrite(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	entryWritesTotal.WithLabelValues(operation, status).Inc()
}

// RecordImportRows counts the per-row outcomes of one CSV import.
func RecordImportRows(created, updated, failed int) {
	importRowsTotal.WithLabelValues("created").Add(float64(created))
	importRowsTotal.WithLabelValues("updated").Add(float64(updated))
	importRowsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordCacheLookup counts a corpus cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}
