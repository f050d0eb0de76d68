// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/warden/internal/auth"
)

// SessionInfo is the public view of a session.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	RoleID    int64     `json:"role_id"`
	RoleGID   int64     `json:"role_gid"`
	IsRoot    bool      `json:"is_root"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionInfo(s *auth.Session) SessionInfo {
	return SessionInfo{
		SessionID: s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		RoleID:    s.RoleID,
		RoleGID:   s.GroupID,
		IsRoot:    s.IsRoot,
		ExpiresAt: s.ExpiresAt,
	}
}

// ModuleCheck is the body of a module permission check.
type ModuleCheck struct {
	Module  string `json:"module"`
	Granted bool   `json:"granted"`
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP has
// already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if !bind(w, r, rw, &req) {
		return
	}

	sess, err := h.svc.Login(r.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
		IP:       clientIP(r),
	})

	switch auth.ResultFromError(err) {
	case auth.LoginSuccess:
		h.sessions.SetSessionCookie(w, sess)
		rw.Success(sessionInfo(sess))
	case auth.LoginUserNotFound:
		rw.Error(http.StatusNotFound, ErrCodeUserNotFound, "Unknown username")
	case auth.LoginPasswordMismatch:
		rw.Error(http.StatusUnauthorized, ErrCodePasswordMismatch, "Wrong password")
	case auth.LoginDisabled:
		rw.Error(http.StatusForbidden, ErrCodeUserDisabled, "User is disabled")
	case auth.LoginLockedOut:
		rw.Error(http.StatusTooManyRequests, ErrCodeLockedOut, "Too many failed logins, retry later")
	default:
		rw.InternalError(err)
	}
}

// Logout handles POST /api/v1/auth/logout. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.sessions.DestroySession(r.Context(), w, r); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(map[string]bool{"logged_out": true})
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		rw.Unauthorized("Authentication required")
		return
	}
	rw.Success(sessionInfo(sess))
}

// CheckModule handles GET /api/v1/auth/modules/{name}.
func (h *Handler) CheckModule(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	name := chi.URLParam(r, "name")
	granted, err := h.svc.CheckModule(r.Context(), sess, name)
	if err != nil {
		rw.InternalError(err)
		return
	}
	if !granted {
		rw.ErrorWithDetails(http.StatusForbidden, ErrCodeForbidden, "Module not granted", ModuleCheck{Module: name})
		return
	}
	rw.Success(ModuleCheck{Module: name, Granted: true})
}
