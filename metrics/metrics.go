// Package metrics provides Prometheus metrics for the lookup server.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Data metrics:
//   - smartsrx_reactive_functions: Gauge with the number of records served
//   - smartsrx_reloads_total: Counter with a result label
//   - smartsrx_last_reload_timestamp_seconds: Gauge set on each successful reload
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since the last cleanup)",
		},
	)

	ReactiveFunctionsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartsrx_reactive_functions",
			Help: "Number of reactive functions currently served",
		},
	)

	ReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartsrx_reloads_total",
			Help: "Database reloads by result",
		},
		[]string{"result"},
	)

	LastReloadTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartsrx_last_reload_timestamp_seconds",
			Help: "Unix time of the last successful reload",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ReactiveFunctionsLoaded)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(LastReloadTimestamp)
}
