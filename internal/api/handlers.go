// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"context"
	"time"

	"github.com/tomtom215/warden/internal/auth"
)

// Pinger is the readiness dependency; *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of every route.
type Handler struct {
	svc       *auth.Service
	sessions  *auth.SessionMiddleware
	db        Pinger
	startTime time.Time
}

// NewHandler creates a Handler. db may be nil, in which case readiness only
// reports the process as up.
func NewHandler(svc *auth.Service, sessions *auth.SessionMiddleware, db Pinger) *Handler {
	return &Handler{
		svc:       svc,
		sessions:  sessions,
		db:        db,
		startTime: time.Now(),
	}
}
