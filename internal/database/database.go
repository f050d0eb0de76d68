// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// BreakerConfig tunes the circuit breaker guarding the read connection.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic reset period for counts while closed.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive connection failures
	// that opens the circuit.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "read-replica",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// DB routes statements over a write connection and a read connection.
// Mutations always use the write connection. Reads use the read connection
// and fall back to the write connection while the read breaker is open.
// A DB is safe for concurrent use.
type DB struct {
	write   *sqlx.DB
	read    *sqlx.DB
	breaker *gobreaker.CircuitBreaker[struct{}]

	breakerCfg    BreakerConfig
	prefix        string
	createdColumn string
	updatedColumn string
	clock         func() time.Time
	logger        zerolog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithTablePrefix prepends prefix to every table name passed to Table.
func WithTablePrefix(prefix string) Option {
	return func(db *DB) { db.prefix = prefix }
}

// WithTimestampColumns sets the default auto-maintained columns for tables.
// Empty names disable the behaviour. Table options override these per table.
func WithTimestampColumns(created, updated string) Option {
	return func(db *DB) {
		db.createdColumn = created
		db.updatedColumn = updated
	}
}

// WithClock replaces time.Now for timestamp columns.
func WithClock(clock func() time.Time) Option {
	return func(db *DB) { db.clock = clock }
}

// WithReadBreaker configures the read connection circuit breaker.
func WithReadBreaker(cfg BreakerConfig) Option {
	return func(db *DB) { db.breakerCfg = cfg }
}

// WithLogger replaces the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// New wraps already open connections. read may be nil or the same handle as
// write, in which case reads share the write connection and no breaker is used.
func New(write, read *sqlx.DB, opts ...Option) (*DB, error) {
	if write == nil {
		return nil, fmt.Errorf("write connection is required")
	}
	db := &DB{
		write:      write,
		read:       read,
		breakerCfg: DefaultBreakerConfig(),
		clock:      time.Now,
		logger:     logging.WithComponent("database"),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.read == nil {
		db.read = write
	}
	if db.read != db.write {
		db.breaker = newReadBreaker(db.breakerCfg)
	}
	return db, nil
}

func newReadBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[struct{}] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Statement errors say nothing about replica health.
		IsSuccessful: func(err error) bool {
			return !isConnectionError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			event := logging.Info()
			if to == gobreaker.StateOpen {
				event = logging.Warn()
			}
			event.Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Read connection circuit breaker state changed")
		},
	})
}

// Table returns a handle for the prefixed table name.
func (db *DB) Table(name string, opts ...TableOption) *Table {
	t := &Table{
		db:            db,
		name:          db.prefix + name,
		createdColumn: db.createdColumn,
		updatedColumn: db.updatedColumn,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TableName returns name with the configured prefix applied.
func (db *DB) TableName(name string) string {
	return db.prefix + name
}

// Writer returns the write connection.
func (db *DB) Writer() *sqlx.DB { return db.write }

// Reader returns the read connection.
func (db *DB) Reader() *sqlx.DB { return db.read }

// Ping verifies both connections.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.write.PingContext(ctx); err != nil {
		return fmt.Errorf("ping write connection: %w", err)
	}
	if db.read != db.write {
		if err := db.read.PingContext(ctx); err != nil {
			return fmt.Errorf("ping read connection: %w", err)
		}
	}
	return nil
}

// Close closes both connections.
func (db *DB) Close() error {
	var errs []error
	if err := db.write.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close write connection: %w", err))
	}
	if db.read != db.write {
		if err := db.read.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close read connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Now returns the current time from the DB's clock (see WithClock).
func (db *DB) Now() time.Time {
	return db.clock()
}

// withReader runs fn on the read connection. While the breaker is open, or
// when the read connection itself fails, fn is retried on the write connection.
func (db *DB) withReader(table string, fn func(conn *sqlx.DB) error) error {
	if db.breaker == nil {
		return fn(db.read)
	}

	_, err := db.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn(db.read)
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, gobreaker.ErrOpenState) &&
		!errors.Is(err, gobreaker.ErrTooManyRequests) &&
		!isConnectionError(err) {
		return err
	}

	metrics.RecordReadFallback(table)
	db.logger.Debug().Err(err).Str("table", table).Msg("Read falling back to write connection")
	return fn(db.write)
}
