// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/warden/internal/logging"
)

// AccessLog writes one log line per request. Requests slower than slow are
// logged at warn level; server errors at error level. A zero slow disables
// the slow request warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusWriter(w)

			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			logger := logging.Ctx(r.Context())

			var ev *zerolog.Event
			switch {
			case rw.status >= http.StatusInternalServerError:
				ev = logger.Error()
			case slow > 0 && elapsed > slow:
				ev = logger.Warn().Bool("slow", true)
			default:
				ev = logger.Debug()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", rw.status).
				Int("bytes", rw.bytes).
				Dur("duration", elapsed).
				Msg("HTTP request")
		})
	}
}
