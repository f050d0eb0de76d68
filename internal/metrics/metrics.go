// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of SQL statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table", "target"}, // target: "write", "read"
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed SQL statements",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBReadFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_read_fallbacks_total",
			Help: "Reads served by the write connection because the read breaker was open",
		},
		[]string{"table"},
	)

	DBOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Open connections per pool",
		},
		[]string{"target"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Auth Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // "success", "user_not_found", "password_mismatch", "disabled", "locked_out", "error"
	)

	FailedLoginsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_failed_logins_recorded_total",
			Help: "Failed login attempts written to the throttle table",
		},
	)

	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_permission_checks_total",
			Help: "Group and module permission checks by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: "group", "module"; outcome: "granted", "denied", "root"
	)

	SessionsCleanedUp = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_sessions_cleaned_up_total",
			Help: "Expired sessions removed by the cleanup service",
		},
	)
)

// RecordDBQuery records a statement's duration and, when err is non-nil, its failure.
func RecordDBQuery(operation, table, target string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table, target).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, errorType(err)).Inc()
	}
}

// errorType maps err onto a fixed label set.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "execution"
	}
}

// RecordReadFallback counts a read rerouted to the write connection.
func RecordReadFallback(table string) {
	DBReadFallbacks.WithLabelValues(table).Inc()
}

// RecordCircuitBreakerTransition updates the state gauge and transition counter.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLogin records the outcome of a login attempt.
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// RecordPermissionCheck records a group or module check.
func RecordPermissionCheck(kind, outcome string) {
	PermissionChecks.WithLabelValues(kind, outcome).Inc()
}

// RecordSessionCleanup adds removed to the cleanup counter.
func RecordSessionCleanup(removed int) {
	if removed > 0 {
		SessionsCleanedUp.Add(float64(removed))
	}
}

// RecordFailedLogin counts one write to the throttle table.
func RecordFailedLogin() {
	FailedLoginsRecorded.Inc()
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
