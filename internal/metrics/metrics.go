// Package metrics exposes Prometheus collectors for contesthub.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	fetchTotal                 *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	contestsGauge              *prometheus.GaugeVec
	aggregationsTotal          *prometheus.CounterVec
	aggregationDurationSeconds prometheus.Histogram
	videoResolutionsTotal      *prometheus.CounterVec
	bookmarkTogglesTotal       *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times.
func Init() {
	once.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contesthub_fetch_total",
				Help: "Upstream endpoint fetches, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contesthub_fetch_duration_seconds",
				Help:    "Upstream endpoint fetch latency, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)

		contestsGauge = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contesthub_contests",
				Help: "Contests held by the last successful aggregation, labeled by source.",
			},
			[]string{"source"},
		)

		aggregationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contesthub_aggregations_total",
				Help: "Aggregation runs, labeled by result (complete, partial, failed).",
			},
			[]string{"result"},
		)

		aggregationDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contesthub_aggregation_duration_seconds",
				Help:    "Wall time of a full aggregation run.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		videoResolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contesthub_video_resolutions_total",
				Help: "Video resolutions, labeled by outcome (tier1..tier3, no_match, not_found, fetch_error, cache_hit).",
			},
			[]string{"outcome"},
		)

		bookmarkTogglesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contesthub_bookmark_toggles_total",
				Help: "Bookmark toggles, labeled by resulting action (added, removed).",
			},
			[]string{"action"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contesthub_http_requests_total",
				Help: "HTTP requests served, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contesthub_http_request_duration_seconds",
				Help:    "HTTP request latency, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one endpoint fetch.
func ObserveFetch(source, outcome string, duration time.Duration) {
	Init()
	fetchTotal.WithLabelValues(source, outcome).Inc()
	fetchDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// SetContests records the per-source record count of the latest aggregation.
func SetContests(source string, n int) {
	Init()
	contestsGauge.WithLabelValues(source).Set(float64(n))
}

// ObserveAggregation records an aggregation run.
func ObserveAggregation(result string, duration time.Duration) {
	Init()
	aggregationsTotal.WithLabelValues(result).Inc()
	aggregationDurationSeconds.Observe(duration.Seconds())
}

// ObserveVideoResolution records the outcome of a video lookup.
func ObserveVideoResolution(outcome string) {
	Init()
	videoResolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBookmarkToggle records a toggle.
func ObserveBookmarkToggle(added bool) {
	Init()
	action := "removed"
	if added {
		action = "added"
	}
	bookmarkTogglesTotal.WithLabelValues(action).Inc()
}

// ObserveHTTPRequest records a served request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
