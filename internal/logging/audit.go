// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// AuthLogger writes authentication audit events. Session IDs are always
// masked and usernames are masked on failures, where they may be attacker input.
type AuthLogger struct {
	logger zerolog.Logger
}

// NewAuthLogger creates an audit logger on top of the global logger.
func NewAuthLogger() *AuthLogger {
	return &AuthLogger{logger: WithComponent("auth")}
}

// NewAuthLoggerWithLogger creates an audit logger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuthLoggerWithLogger(logger zerolog.Logger) *AuthLogger {
	return &AuthLogger{logger: logger.With().Str("component", "auth").Logger()}
}

func (l *AuthLogger) with(ctx context.Context) zerolog.Logger {
	logCtx := l.logger.With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	return logCtx.Logger()
}

// LoginSucceeded records a successful login.
func (l *AuthLogger) LoginSucceeded(ctx context.Context, username, ip, sessionID string, forced bool) {
	lg := l.with(ctx)
	lg.Info().
		Str("event", "login_success").
		Str("username", username).
		Str("ip", ip).
		Str("session_id", SanitizeSessionID(sessionID)).
		Bool("forced", forced).
		Msg("Login succeeded")
}

// LoginFailed records a rejected login with its result code.
func (l *AuthLogger) LoginFailed(ctx context.Context, username, ip, result string) {
	lg := l.with(ctx)
	lg.Warn().
		Str("event", "login_failure").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Str("result", result).
		Msg("Login rejected")
}

// LockedOut records a login refused by the failed-login throttle.
func (l *AuthLogger) LockedOut(ctx context.Context, username, ip string, count int64) {
	lg := l.with(ctx)
	lg.Warn().
		Str("event", "login_locked").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Int64("failed_count", count).
		Msg("Login locked by failed-login throttle")
}

// LoggedOut records a logout.
func (l *AuthLogger) LoggedOut(ctx context.Context, sessionID string) {
	lg := l.with(ctx)
	lg.Info().
		Str("event", "logout").
		Str("session_id", SanitizeSessionID(sessionID)).
		Msg("Session destroyed")
}

// PermissionDenied records a failed group or module check.
func (l *AuthLogger) PermissionDenied(ctx context.Context, username, kind, name string) {
	lg := l.with(ctx)
	lg.Info().
		Str("event", "permission_denied").
		Str("username", username).
		Str("kind", kind).
		Str("name", name).
		Msg("Permission denied")
}

// SanitizeSessionID masks a session ID, keeping 4 characters at each end.
//
//	"abc123def456ghi7" -> "abc1...ghi7"
func SanitizeSessionID(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	if len(sessionID) <= 12 {
		return "***"
	}
	return sessionID[:4] + "..." + sessionID[len(sessionID)-4:]
}

// SanitizeUsername keeps the first 2 characters of a username.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}
