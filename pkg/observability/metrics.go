// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the vexgate gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LookupBuckets defines histogram buckets suited for key-value reads and
// short request lifetimes, ranging from 1ms to 5s.
var LookupBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexgate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vexgate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LookupBuckets,
		},
		[]string{"method"},
	)

	// DecisionsTotal counts terminal pipeline outcomes by kind.
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexgate_decisions_total",
			Help: "Decision outcomes",
		},
		[]string{"outcome"},
	)

	// StoreRequestsTotal counts key-value reads by backend, operation and
	// result (hit, miss, error).
	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vexgate_store_requests_total",
			Help: "Store reads",
		},
		[]string{"store", "operation", "result"},
	)

	// StoreLatency records key-value read latency in seconds.
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vexgate_store_latency_seconds",
			Help:    "Store read latency",
			Buckets: LookupBuckets,
		},
		[]string{"store", "operation"},
	)

	// PanicsRecoveredTotal counts handler panics converted to 500 responses.
	PanicsRecoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vexgate_panics_recovered_total",
			Help: "Recovered handler panics",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DecisionsTotal,
		StoreRequestsTotal,
		StoreLatency,
		PanicsRecoveredTotal,
	)
}
