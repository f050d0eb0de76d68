// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/warden/internal/auth"
)

// ModuleUserManage is the module required to create users.
const ModuleUserManage = "user_manage"

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateUserRequest
	if !bind(w, r, rw, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	id, err := h.svc.Users().Add(r.Context(), auth.NewUser{
		Username: req.Username,
		Password: req.Password,
		RoleID:   req.RoleID,
		Active:   active,
	})
	switch {
	case errors.Is(err, auth.ErrDuplicateKey):
		rw.Conflict("Username already exists")
		return
	case errors.Is(err, auth.ErrWeakPassword):
		rw.ValidationError(err.Error(), map[string]string{"field": "password"})
		return
	case err != nil:
		rw.InternalError(err)
		return
	}

	user, err := h.svc.Users().Get(r.Context(), id)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(user)
}
