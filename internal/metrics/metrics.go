// Package metrics exposes Prometheus counters for the catalog and loan engines.
//
// Collectors register with the default registry on package init; Handler serves them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mangashelf_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// VolumesResolved counts resolutions by source: "store" (fast path) or "provider".
	VolumesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_volumes_resolved_total",
			Help: "Volume resolutions by where the volume came from.",
		},
		[]string{"source"},
	)

	// ProviderLookups counts external lookups by result: "hit", "miss" or "error".
	ProviderLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_provider_lookups_total",
			Help: "External bibliographic lookups by result.",
		},
		[]string{"result"},
	)

	// LoanOperations counts loan engine calls by operation and outcome.
	LoanOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_loan_operations_total",
			Help: "Loan and return operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// ScanImportItems counts scanned barcodes by outcome: "added" or "failed".
	ScanImportItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_scan_import_items_total",
			Help: "Scanned barcodes processed by batch import.",
		},
		[]string{"outcome"},
	)
)

// Outcome maps an error to a label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
