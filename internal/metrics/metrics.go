// Package metrics provides Prometheus metrics collection for the server.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics - used by the application.
	// atomic.Pointer gives lock-free nil checks on the hot path.
	requestsTotal        atomic.Pointer[prometheus.CounterVec]
	requestDuration      atomic.Pointer[prometheus.HistogramVec]
	scansTotal           atomic.Pointer[prometheus.CounterVec]
	tokensGeneratedTotal atomic.Pointer[prometheus.Counter]
	authFailuresTotal    atomic.Pointer[prometheus.CounterVec]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "presenza",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "presenza",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	scansTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "presenza",
			Subsystem: "server",
			Name:      "scans_total",
			Help:      "Total number of QR scan attempts by action and result",
		},
		[]string{"action", "result"},
	)
	if err := reg.Register(scansTotalVec); err != nil {
		return fmt.Errorf("failed to register scansTotal: %w", err)
	}

	tokensGeneratedCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "presenza",
			Subsystem: "server",
			Name:      "qr_tokens_generated_total",
			Help:      "Total number of QR tokens generated",
		},
	)
	if err := reg.Register(tokensGeneratedCounter); err != nil {
		return fmt.Errorf("failed to register tokensGenerated: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "presenza",
			Subsystem: "server",
			Name:      "auth_failures_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	scansTotal.Store(scansTotalVec)
	tokensGeneratedTotal.Store(&tokensGeneratedCounter)
	authFailuresTotal.Store(authFailuresTotalVec)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status code.
// The path should be normalized (e.g., "/api/shifts/:id" instead of "/api/shifts/42").
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records the latency for a request in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordScan increments the scan counter.
// Result is "success" or the error code (e.g., "invalid_token", "illegal_transition").
func RecordScan(action, result string) {
	if counter := scansTotal.Load(); counter != nil {
		counter.WithLabelValues(action, result).Inc()
	}
}

// RecordTokenGenerated increments the generated-token counter.
func RecordTokenGenerated() {
	if counter := tokensGeneratedTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordAuthFailure increments the auth failures counter for the given reason.
// Common reasons: "missing_token", "invalid_token", "bad_credentials".
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// Handler returns an HTTP handler serving Prometheus metrics in text format
// from the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
