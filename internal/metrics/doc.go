// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors register with the default registry through promauto and are
served by the /metrics route of the API router.

# Available Metrics

Database Metrics:
  - db_query_duration_seconds: Statement execution time (histogram)
    Labels: operation, table, target
  - db_query_errors_total: Failed statements (counter)
    Labels: operation, table, error_type
  - db_read_fallbacks_total: Reads rerouted to the write pool (counter)
    Labels: table
  - db_open_connections: Open connections per pool (gauge)
    Labels: target

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_state_transitions_total: Labels: name, from, to

API Metrics:
  - api_requests_total: Labels: method, endpoint, status
  - api_request_duration_seconds: Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Labels: endpoint

Auth Metrics:
  - auth_login_attempts_total: Labels: result
  - auth_failed_logins_recorded_total
  - auth_permission_checks_total: Labels: kind, outcome
  - auth_sessions_cleaned_up_total

# Usage

	start := time.Now()
	_, err := stmt.ExecContext(ctx, args)
	metrics.RecordDBQuery("update", "auth_users", "write", time.Since(start), err)
*/
package metrics
