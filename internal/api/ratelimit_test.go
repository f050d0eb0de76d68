// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/warden/internal/metrics"
)

func TestRateLimit_Login(t *testing.T) {
	cfg := noLimits()
	cfg.DisableRateLimit = false
	cfg.Login = RateLimitConfig{Requests: 2, Window: time.Minute}
	s := newTestServer(t, cfg)
	s.addUser(t, "ada", 0, true)

	hits := metrics.APIRateLimitHits.WithLabelValues("login")
	before := testutil.ToFloat64(hits)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "ada", Password: testPassword})
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "ada", Password: testPassword})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeTooManyRequests)
	}
	if got := testutil.ToFloat64(hits) - before; got != 1 {
		t.Errorf("rate limit hits = %v, want 1", got)
	}

	// Other routes have their own limiter.
	if rec := s.do(t, http.MethodGet, "/api/v1/health/live", nil); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_PassThrough(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RateLimitConfig
		disabled bool
	}{
		{"disabled", RateLimitConfig{Requests: 1, Window: time.Minute}, true},
		{"zero requests", RateLimitConfig{Window: time.Minute}, false},
		{"zero window", RateLimitConfig{Requests: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := rateLimit("test", tt.cfg, tt.disabled)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
				if rec.Code != http.StatusNoContent {
					t.Fatalf("request %d: status = %d", i+1, rec.Code)
				}
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := securityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy", "Cache-Control"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind an HTTPS proxy")
	}
}
