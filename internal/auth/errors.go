// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"errors"
	"fmt"
)

// Login errors
var (
	// ErrUserNotFound is returned when no user has the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrPasswordMismatch is returned when the password does not match the stored hash.
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrUserDisabled is returned when the user's status is not active.
	ErrUserDisabled = errors.New("user disabled")

	// ErrLockedOut is returned while the caller has too many recent failed logins.
	ErrLockedOut = errors.New("locked out after too many failed logins")
)

// Directory and permission errors
var (
	// ErrDuplicateKey is returned when a user, role, module or group name is taken.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrPermissionDenied is returned by RequireGroup and RequireModule.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWeakPassword is returned when a new password fails the password policy.
	ErrWeakPassword = errors.New("weak password")
)

// Session errors
var (
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when trying to access an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// LoginResult classifies the outcome of a login attempt.
type LoginResult int

const (
	// LoginSuccess means a session was created.
	LoginSuccess LoginResult = iota
	// LoginUserNotFound means the username is unknown.
	LoginUserNotFound
	// LoginPasswordMismatch means the password was wrong.
	LoginPasswordMismatch
	// LoginDisabled means the user exists but is not active.
	LoginDisabled
	// LoginLockedOut means the throttle refused the attempt.
	LoginLockedOut
	// LoginError means the attempt failed for an infrastructure reason.
	LoginError
)

// String returns the snake_case name used in logs, metrics and HTTP bodies.
func (r LoginResult) String() string {
	switch r {
	case LoginSuccess:
		return "success"
	case LoginUserNotFound:
		return "user_not_found"
	case LoginPasswordMismatch:
		return "password_mismatch"
	case LoginDisabled:
		return "disabled"
	case LoginLockedOut:
		return "locked_out"
	default:
		return "error"
	}
}

// ResultFromError maps an error returned by Service.Login to its LoginResult.
func ResultFromError(err error) LoginResult {
	switch {
	case err == nil:
		return LoginSuccess
	case errors.Is(err, ErrUserNotFound):
		return LoginUserNotFound
	case errors.Is(err, ErrPasswordMismatch):
		return LoginPasswordMismatch
	case errors.Is(err, ErrUserDisabled):
		return LoginDisabled
	case errors.Is(err, ErrLockedOut):
		return LoginLockedOut
	default:
		return LoginError
	}
}

// StepError reports which step of a multi-step operation failed. Steps run in
// order and are not rolled back, so every step before Step has taken effect.
type StepError struct {
	Op   string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
