// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/middleware"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	Login  RateLimitConfig
	API    RateLimitConfig
	Health RateLimitConfig

	// DisableRateLimit turns every httprate limiter into a pass-through.
	DisableRateLimit bool

	// SlowRequest is the access log threshold for warn level.
	SlowRequest time.Duration
}

// DefaultRouterConfig returns the package-level limits.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Login:       RateLimitLogin,
		API:         RateLimitAPI,
		Health:      RateLimitHealth,
		SlowRequest: time.Second,
	}
}

// RouterConfigFromSecurity takes the authenticated-route limit from config.
func RouterConfigFromSecurity(sec *config.SecurityConfig) RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.API = RateLimitConfig{Requests: sec.RateLimitReqs, Window: sec.RateLimitWindow}
	return cfg
}

// NewRouter builds the chi router for h.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(cfg.SlowRequest))
	r.Use(middleware.PrometheusMetrics)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rateLimit("health", cfg.Health, cfg.DisableRateLimit))
		r.Use(securityHeaders)
		r.Get("/live", h.Live)
		r.Get("/ready", h.Ready)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeaders)
		r.Use(h.sessions.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit("login", cfg.Login, cfg.DisableRateLimit)).Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(rateLimit("api", cfg.API, cfg.DisableRateLimit))
				r.Post("/logout", h.Logout)
				r.With(h.requireLogin).Get("/me", h.Me)
				r.With(h.requireLogin).Get("/modules/{name}", h.CheckModule)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimit("api", cfg.API, cfg.DisableRateLimit))
			r.Use(h.requireModule(ModuleUserManage))
			r.Post("/users", h.CreateUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	return r
}

// requireLogin is the JSON counterpart of auth.SessionMiddleware.RequireLogin.
func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			NewResponseWriter(w, r).Unauthorized("Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireModule answers 401 without a session and 403 unless the session
// holds module name.
func (h *Handler) requireModule(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := NewResponseWriter(w, r)
			sess := auth.SessionFromContext(r.Context())
			if sess == nil {
				rw.Unauthorized("Authentication required")
				return
			}
			switch err := h.svc.RequireModule(r.Context(), sess, name); {
			case errors.Is(err, auth.ErrPermissionDenied):
				rw.Forbidden("Permission denied")
			case err != nil:
				rw.InternalError(err)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
