// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package api exposes the auth service over HTTP.

Routes:

	GET  /api/v1/health/live          liveness, never touches the database
	GET  /api/v1/health/ready         readiness, pings the database
	POST /api/v1/auth/login           username/password login, sets the session cookie
	POST /api/v1/auth/logout          destroys the current session
	GET  /api/v1/auth/me              the current session (401 without one)
	GET  /api/v1/auth/modules/{name}  200 when the session holds the module, 403 otherwise
	POST /api/v1/users                creates a user (requires the user_manage module)
	GET  /metrics                     Prometheus exposition

Every JSON body uses the APIResponse envelope. Login failures carry the
login result as the error code (USER_NOT_FOUND, PASSWORD_MISMATCH,
USER_DISABLED, LOCKED_OUT).
*/
package api
