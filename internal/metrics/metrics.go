// Package metrics exposes Prometheus collectors for the trends service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome and status label values.
const (
	LabelSuccess = "success"
	LabelFailure = "failure"
)

var (
	fetchAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_fetch_attempts_total",
			Help: "Total number of background fetches started.",
		},
	)

	fetchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_fetch_outcomes_total",
			Help: "Total number of accepted fetch outcomes, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	fetchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trends_fetch_duration_seconds",
			Help:    "Histogram of background fetch durations.",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 150},
		},
	)

	staleCompletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_stale_completions_total",
			Help: "Fetch completions discarded because a newer attempt superseded them.",
		},
	)

	sessionCreationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_session_creations_total",
			Help: "Browser session creations, labeled by status.",
		},
		[]string{"status"},
	)

	sessionResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_session_resets_total",
			Help: "Browser sessions torn down on request.",
		},
	)

	resetsThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_resets_throttled_total",
			Help: "Reset requests rejected by the reset rate limit.",
		},
	)

	storeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trends_store_writes_total",
			Help: "Record store writes, labeled by driver and status.",
		},
		[]string{"driver", "status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetchStarted counts a new background fetch.
func ObserveFetchStarted() {
	fetchAttemptsTotal.Inc()
}

// ObserveFetchCompleted records an accepted outcome and its duration.
func ObserveFetchCompleted(ok bool, duration time.Duration) {
	fetchOutcomesTotal.WithLabelValues(statusLabel(ok)).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveStaleCompletion counts a discarded late completion.
func ObserveStaleCompletion() {
	staleCompletionsTotal.Inc()
}

// ObserveSessionCreation counts a browser session start attempt.
func ObserveSessionCreation(ok bool) {
	sessionCreationsTotal.WithLabelValues(statusLabel(ok)).Inc()
}

// ObserveSessionReset counts a session teardown.
func ObserveSessionReset() {
	sessionResetsTotal.Inc()
}

// ObserveResetThrottled increments the rejected reset counter.
func ObserveResetThrottled() {
	resetsThrottledTotal.Inc()
}

// ObserveStoreWrite counts a persistence attempt for the given driver.
func ObserveStoreWrite(driver string, ok bool) {
	storeWritesTotal.WithLabelValues(driver, statusLabel(ok)).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

func statusLabel(ok bool) string {
	if ok {
		return LabelSuccess
	}
	return LabelFailure
}
