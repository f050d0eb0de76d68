// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tomtom215/warden/internal/metrics"
)

// RateLimitConfig configures one httprate limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

var (
	// RateLimitLogin bounds login attempts per IP independently of the
	// per-user throttle table.
	RateLimitLogin = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitAPI is the default for authenticated routes.
	RateLimitAPI = RateLimitConfig{Requests: 100, Window: time.Minute}

	// RateLimitHealth is permissive so probes are never throttled in practice.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// rateLimit returns an IP-keyed limiter labelled name in the rate limit
// metric. A disabled or non-positive config yields a pass-through.
func rateLimit(name string, cfg RateLimitConfig, disabled bool) func(http.Handler) http.Handler {
	if disabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(name)
			NewResponseWriter(w, r).TooManyRequests("Too many requests, retry later")
		}),
	)
}

// securityHeaders adds the headers every JSON API response carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
