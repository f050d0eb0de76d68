// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/database/query"
	"github.com/tomtom215/warden/internal/metrics"
)

// ThrottleStatus is the lockout state of one (ip, username) pair.
type ThrottleStatus int

const (
	// NoRecord means no failed login is on file.
	NoRecord ThrottleStatus = iota
	// RecordedNotLocked means failures are on file but below the limit.
	RecordedNotLocked
	// Locked means the limit was reached inside the lockout window.
	Locked
)

func (s ThrottleStatus) String() string {
	switch s {
	case RecordedNotLocked:
		return "recorded"
	case Locked:
		return "locked"
	default:
		return "none"
	}
}

// ThrottleConfig holds the lockout rules.
type ThrottleConfig struct {
	// MaxAttempts is the failure count at which logins are refused.
	MaxAttempts int

	// Window is how long a record stays live after its last failure.
	Window time.Duration
}

// DefaultThrottleConfig returns 5 attempts per 30 minutes.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts: 5,
		Window:      30 * time.Minute,
	}
}

// FailedLogin is one row of the failed_logins table.
type FailedLogin struct {
	IP          string
	Username    string
	Count       int64
	LastAttempt time.Time
}

// Throttle counts failed logins per (ip, username) and locks the pair out
// once MaxAttempts failures fall inside Window. Time comes from the DB clock.
type Throttle struct {
	db    *database.DB
	table *database.Table
	cfg   ThrottleConfig
}

// NewThrottle creates a throttle over the failed_logins table. Zero fields in
// cfg take their DefaultThrottleConfig values.
func NewThrottle(db *database.DB, cfg ThrottleConfig) *Throttle {
	def := DefaultThrottleConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return &Throttle{
		db:    db,
		table: db.Table("failed_logins", database.WithoutTimestamps()),
		cfg:   cfg,
	}
}

// Config returns the effective lockout rules.
func (t *Throttle) Config() ThrottleConfig {
	return t.cfg
}

func identity(ip, username string) *query.Condition {
	return query.Where().Eq("ip", ip).Eq("username", username)
}

// dueTime is the oldest last_attempt_time that still counts toward a lockout.
func (t *Throttle) dueTime() int64 {
	return t.db.Now().Add(-t.cfg.Window).Unix()
}

// Get returns the record for the pair, or an error wrapping
// database.ErrNotFound when there is none.
func (t *Throttle) Get(ctx context.Context, ip, username string) (*FailedLogin, error) {
	row, err := t.table.SelectOne(ctx, identity(ip, username), nil)
	if err != nil {
		return nil, err
	}
	return &FailedLogin{
		IP:          row.String("ip"),
		Username:    row.String("username"),
		Count:       row.Int64("count"),
		LastAttempt: time.Unix(row.Int64("last_attempt_time"), 0).UTC(),
	}, nil
}

// Status reports the pair's lockout state. A record whose window has elapsed
// is deleted and reported as NoRecord.
func (t *Throttle) Status(ctx context.Context, ip, username string) (ThrottleStatus, error) {
	rec, err := t.Get(ctx, ip, username)
	if errors.Is(err, database.ErrNotFound) {
		return NoRecord, nil
	}
	if err != nil {
		return NoRecord, fmt.Errorf("throttle status: %w", err)
	}

	if rec.LastAttempt.Unix() <= t.dueTime() {
		if err := t.Release(ctx, ip, username); err != nil {
			return NoRecord, err
		}
		return NoRecord, nil
	}
	if rec.Count >= int64(t.cfg.MaxAttempts) {
		return Locked, nil
	}
	return RecordedNotLocked, nil
}

// RecordFailure counts one failed login and returns the pair's new count.
//
// A live record is incremented in a single statement, so concurrent failures
// never lose an increment. An expired record is reset to 1, and a missing one
// is inserted with count 1. If a concurrent request inserts first, the
// increment is retried once.
func (t *Throttle) RecordFailure(ctx context.Context, ip, username string) (int64, error) {
	count, err := t.recordFailure(ctx, ip, username)
	if err != nil && database.IsDuplicateKey(err) {
		count, err = t.increment(ctx, ip, username)
		if err == nil && count == 0 {
			err = fmt.Errorf("failed login record for %s vanished during retry", ip)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	metrics.RecordFailedLogin()
	return count, nil
}

func (t *Throttle) recordFailure(ctx context.Context, ip, username string) (int64, error) {
	if count, err := t.increment(ctx, ip, username); err != nil || count > 0 {
		return count, err
	}

	now := t.db.Now().Unix()
	n, err := t.table.Update(ctx,
		query.Set("count", 1).Set("last_attempt_time", now),
		identity(ip, username))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 1, nil
	}

	_, err = t.table.Insert(ctx, query.
		Set("ip", ip).
		Set("username", username).
		Set("count", 1).
		Set("last_attempt_time", now))
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// increment bumps a live record and returns its new count, or 0 when no live
// record matched.
func (t *Throttle) increment(ctx context.Context, ip, username string) (int64, error) {
	live := identity(ip, username).Gt("last_attempt_time", t.dueTime())
	n, err := t.table.Counter(ctx, live, "count", 1, "+",
		query.Set("last_attempt_time", t.db.Now().Unix()))
	if err != nil || n == 0 {
		return 0, err
	}

	rec, err := t.Get(ctx, ip, username)
	if err != nil {
		return 0, err
	}
	return rec.Count, nil
}

// Release deletes the pair's record.
func (t *Throttle) Release(ctx context.Context, ip, username string) error {
	if _, err := t.table.Delete(ctx, identity(ip, username)); err != nil {
		return fmt.Errorf("release failed login: %w", err)
	}
	return nil
}

// Purge deletes every record whose window has elapsed and returns how many
// were removed.
func (t *Throttle) Purge(ctx context.Context) (int64, error) {
	n, err := t.table.Delete(ctx, query.Where().Le("last_attempt_time", t.dueTime()))
	if err != nil {
		return 0, fmt.Errorf("purge failed logins: %w", err)
	}
	return n, nil
}
