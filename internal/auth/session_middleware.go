// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"net/http"

	"github.com/tomtom215/warden/internal/logging"
)

type sessionContextKey struct{}

// SessionFromContext returns the logged-in session attached by Authenticate, or nil.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithSession attaches sess to ctx.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionMiddlewareConfig holds configuration for the session middleware.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// HeaderName is an optional header to read the session token from.
	// If set, the header takes priority over the cookie.
	HeaderName string

	// SlidingSession extends the session on each authenticated request.
	SlidingSession bool

	// CookiePath is the path for the session cookie.
	CookiePath string

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool

	// CookieSameSite sets the SameSite attribute.
	CookieSameSite http.SameSite
}

// DefaultSessionMiddlewareConfig returns sensible defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     "warden_session",
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// SessionMiddleware resolves the request's session through a Service.
type SessionMiddleware struct {
	svc    *Service
	config *SessionMiddlewareConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(svc *Service, config *SessionMiddlewareConfig) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	return &SessionMiddleware{svc: svc, config: config}
}

// Authenticate attaches the logged-in session (if any) and a fresh
// PermissionCache to the request context. Requests without a valid session
// continue unauthenticated; use RequireLogin on protected routes.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithPermissionCache(r.Context(), NewPermissionCache())

		sessionID := m.SessionID(r)
		if sessionID == "" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		sess, ok, err := m.svc.CheckIsLogin(ctx, sessionID)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Session lookup error")
		}
		if !ok {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if m.config.SlidingSession {
			if err := m.svc.Touch(ctx, sess); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Failed to touch session")
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSession(ctx, sess)))
	})
}

// RequireLogin returns 401 Unauthorized unless Authenticate attached a session.
func (m *SessionMiddleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModule returns 401 without a session and 403 unless the session's
// role holds module name.
func (m *SessionMiddleware) RequireModule(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := m.svc.CheckModule(r.Context(), SessionFromContext(r.Context()), name)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("module", name).Msg("Module check failed")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireGroup is RequireModule for group membership.
func (m *SessionMiddleware) RequireGroup(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := m.svc.CheckGroup(r.Context(), SessionFromContext(r.Context()), names...)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Strs("groups", names).Msg("Group check failed")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// SessionID extracts the session ID from the request.
// Priority: Header > Cookie
func (m *SessionMiddleware) SessionID(r *http.Request) string {
	if m.config.HeaderName != "" {
		if v := r.Header.Get(m.config.HeaderName); v != "" {
			return v
		}
	}
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SetSessionCookie sets the session cookie, expiring with the session.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sess.ID,
		Path:     m.config.CookiePath,
		Expires:  sess.ExpiresAt,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// ClearSessionCookie clears the session cookie.
func (m *SessionMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// DestroySession logs the request's session out and clears the cookie.
func (m *SessionMiddleware) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if id := m.SessionID(r); id != "" {
		if err := m.svc.Logout(ctx, id); err != nil {
			return err
		}
	}
	m.ClearSessionCookie(w)
	return nil
}
