// Package telemetry exposes Prometheus collectors for the ingestion service.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestsTotal           *prometheus.CounterVec
	ingestDurationSeconds  prometheus.Histogram
	resourceFetchesTotal   *prometheus.CounterVec
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDurationSec *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		ingestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brand_ingests_total",
				Help: "Total brand ingestions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		ingestDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "brand_ingest_duration_seconds",
				Help:    "Histogram of end-to-end ingestion latencies.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		resourceFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_resource_fetches_total",
				Help: "Total per-resource fetch attempts, labeled by resource and result.",
			},
			[]string{"resource", "ok"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSec = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveIngest records one completed ingestion.
func ObserveIngest(outcome string, duration time.Duration) {
	if ingestsTotal == nil {
		return
	}
	ingestsTotal.WithLabelValues(outcome).Inc()
	ingestDurationSeconds.Observe(duration.Seconds())
}

// ObserveResourceFetch records one per-resource fetch attempt.
func ObserveResourceFetch(resource string, ok bool) {
	if resourceFetchesTotal == nil {
		return
	}
	resourceFetchesTotal.WithLabelValues(resource, strconv.FormatBool(ok)).Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSec.WithLabelValues(method, route).Observe(duration.Seconds())
}
