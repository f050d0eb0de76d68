// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// Task is one run of a periodic job. It returns how many items it removed.
type Task func(ctx context.Context) (int64, error)

// PeriodicService runs a Task every interval. A failing run is logged and
// retried on the next tick; it never makes Serve return, so the supervisor
// does not count it as a crash.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task
	logger   zerolog.Logger

	// onRun observes each successful run (metrics hook).
	onRun func(removed int64)
}

// NewPeriodicService creates a PeriodicService. A non-positive interval
// means one minute.
func NewPeriodicService(name string, interval time.Duration, task Task) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logging.WithComponent(name),
	}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *PeriodicService) runOnce(ctx context.Context) {
	removed, err := p.task(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn().Err(err).Msg("Periodic task failed")
		}
		return
	}
	if p.onRun != nil {
		p.onRun(removed)
	}
	if removed > 0 {
		p.logger.Debug().Int64("removed", removed).Msg("Periodic task completed")
	}
}

// String implements fmt.Stringer.
func (p *PeriodicService) String() string {
	return p.name
}

// SessionCleaner is satisfied by every auth.SessionStore.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// NewSessionCleanupService removes expired sessions every interval and
// counts them in auth_sessions_cleaned_up_total.
func NewSessionCleanupService(store SessionCleaner, interval time.Duration) *PeriodicService {
	svc := NewPeriodicService("session-cleanup", interval, func(ctx context.Context) (int64, error) {
		n, err := store.CleanupExpired(ctx)
		return int64(n), err
	})
	svc.onRun = func(removed int64) { metrics.RecordSessionCleanup(int(removed)) }
	return svc
}

// ThrottlePurger is satisfied by *auth.Throttle.
type ThrottlePurger interface {
	Purge(ctx context.Context) (int64, error)
}

// NewThrottlePurgeService deletes failed-login records whose lockout window
// has elapsed every interval.
func NewThrottlePurgeService(throttle ThrottlePurger, interval time.Duration) *PeriodicService {
	return NewPeriodicService("throttle-purge", interval, throttle.Purge)
}
