// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package middleware provides the infrastructure HTTP middleware shared by every
route: request IDs, access logging and Prometheus instrumentation.

Session and permission middleware live in the auth package; this package has
no knowledge of users.

The router installs them in this order:

	r.Use(middleware.RequestID)       // X-Request-ID in, request_id in logs
	r.Use(middleware.AccessLog(slow)) // one zerolog line per request
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests with the chi route pattern instead of the
raw path, so /api/v1/auth/modules/{name} is a single series.
*/
package middleware
