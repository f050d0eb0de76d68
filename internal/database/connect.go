// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/logging"
)

const pingTimeout = 5 * time.Second

// Connect opens the write connection and one randomly chosen read host
// described by cfg. With no read hosts configured, reads use the write
// connection.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*DB, error) {
	write, err := open(ctx, cfg, cfg.Write.Addr())
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}

	read := write
	if host := pickReadHost(cfg.ReadHosts, cfg.Write.Port); host != "" {
		read, err = open(ctx, cfg, host)
		if err != nil {
			// Reads are served by the write connection until the replica returns.
			logging.Warn().Err(err).Str("host", host).Msg("Read host unavailable, using write connection")
			read = write
		}
	}

	defaults := []Option{
		WithTablePrefix(cfg.TablePrefix),
		WithTimestampColumns(cfg.CreatedColumn, cfg.UpdatedColumn),
		WithReadBreaker(BreakerConfig{
			Name:             "read-replica",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          cfg.ReadBreaker.Timeout,
			FailureThreshold: cfg.ReadBreaker.FailureThreshold,
		}),
	}
	db, err := New(write, read, append(defaults, opts...)...)
	if err != nil {
		closeQuietly(write)
		if read != write {
			closeQuietly(read)
		}
		return nil, err
	}

	logging.Info().
		Str("write", cfg.Write.Addr()).
		Bool("replica", read != write).
		Str("database", cfg.Write.Name).
		Msg("Database connected")
	return db, nil
}

// DSN renders the go-sql-driver/mysql data source name for addr.
func DSN(cfg *config.DatabaseConfig, addr string) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Write.User
	mc.Passwd = cfg.Write.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = cfg.Write.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	if len(cfg.Write.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Write.Params))
		for k, v := range cfg.Write.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

func open(ctx context.Context, cfg *config.DatabaseConfig, addr string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("mysql", DSN(cfg, addr))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", addr, err)
	}
	configureConnectionPool(conn, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping %s: %w", addr, err)
	}
	return conn, nil
}

// configureConnectionPool applies the configured pool limits.
func configureConnectionPool(conn *sqlx.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// pickReadHost returns one of hosts at random, adding defaultPort when a
// host omits it. It returns "" for an empty list.
func pickReadHost(hosts []string, defaultPort int) string {
	if len(hosts) == 0 {
		return ""
	}
	host := hosts[rand.IntN(len(hosts))]
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, strconv.Itoa(defaultPort))
	}
	return host
}
