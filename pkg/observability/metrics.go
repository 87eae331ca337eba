// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the messagely service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for small JSON API
// latencies, ranging from 1ms to 10s.
var APIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messagely_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// AuthAttemptsTotal counts authentication outcomes per request:
	// accepted, rejected, or anonymous.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_auth_attempts_total",
			Help: "Authentication outcomes",
		},
		[]string{"outcome"},
	)

	// GuardDenialsTotal counts authorization denials by guard.
	GuardDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_guard_denials_total",
			Help: "Authorization guard denials",
		},
		[]string{"guard"},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// MessagesCreatedTotal counts successfully created messages.
	MessagesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messagely_messages_created_total",
			Help: "Messages created",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		GuardDenialsTotal,
		LoginsTotal,
		MessagesCreatedTotal,
	)
}
