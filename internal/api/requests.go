// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/warden/internal/validation"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 64 << 10

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=72"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64,username"`
	Password string `json:"password" validate:"required,max=72"`
	RoleID   int64  `json:"role_id" validate:"gte=0"`

	// Active defaults to true when omitted.
	Active *bool `json:"active,omitempty"`
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON decodes one JSON object into dst, rejecting unknown fields and
// bodies over maxRequestBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// bind decodes and validates a request body, writing the 400 response
// itself. It reports whether the handler should continue.
func bind(w http.ResponseWriter, r *http.Request, rw *ResponseWriter, dst interface{}) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		rw.BadRequest(err.Error())
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		var details interface{}
		if len(apiErr.Details) > 0 {
			details = apiErr.Details
		}
		rw.ValidationError(apiErr.Message, details)
		return false
	}
	return true
}
