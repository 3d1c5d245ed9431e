// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	moviesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "top_movies_movies_total",
		Help: "Total number of movies in the database",
	})

	catalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "top_movies_catalog_requests_total",
		Help: "Total number of catalog requests by operation and outcome",
	}, []string{"operation", "status"})

	catalogDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "top_movies_catalog_request_duration_seconds",
		Help:    "Duration of catalog requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "top_movies_http_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "code"})

	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "top_movies_errors_total",
		Help: "Total number of errors",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(moviesTotal)
	prometheus.MustRegister(catalogRequestsTotal)
	prometheus.MustRegister(catalogDurationSeconds)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(errorsTotal)
}

// SetMovieCount updates the movies_total gauge
func SetMovieCount(count int) {
	moviesTotal.Set(float64(count))
}

// RecordCatalogRequest records the outcome and duration of a catalog call.
// A zero status means the request never produced a response.
func RecordCatalogRequest(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	catalogRequestsTotal.WithLabelValues(operation, label).Inc()
	catalogDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
