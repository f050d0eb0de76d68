// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := database.Connect(ctx, cfg.Database)
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig describes the write connection, the read replicas and the
// table naming conventions shared by every table handle.
type DatabaseConfig struct {
	Write WriteConfig `koanf:"write"`

	// ReadHosts are host[:port] entries. One is picked at random on connect;
	// when empty, reads share the write connection.
	ReadHosts []string `koanf:"read_hosts"`

	TablePrefix   string `koanf:"table_prefix"`
	CreatedColumn string `koanf:"created_column"`
	UpdatedColumn string `koanf:"updated_column"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	ReadBreaker ReadBreakerConfig `koanf:"read_breaker"`
}

// WriteConfig holds the primary connection DSN fields.
type WriteConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	// Params are extra DSN parameters (e.g. charset=utf8mb4).
	Params map[string]string `koanf:"params"`
}

// Addr returns host:port for the write connection.
func (w WriteConfig) Addr() string {
	return net.JoinHostPort(w.Host, strconv.Itoa(w.Port))
}

// ReadBreakerConfig tunes the circuit breaker in front of the read replica.
type ReadBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32 `koanf:"failure_threshold"`
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds session, throttle and rate limit settings.
type SecurityConfig struct {
	SessionStore     string        `koanf:"session_store"` // memory or badger
	SessionStorePath string        `koanf:"session_store_path"`
	SessionTimeout   time.Duration `koanf:"session_timeout"`

	CookieName   string `koanf:"cookie_name"`
	CookieSecure bool   `koanf:"cookie_secure"`

	LoginMaxAttempts   int           `koanf:"login_max_attempts"`
	LoginLockoutWindow time.Duration `koanf:"login_lockout_window"`

	BcryptCost        int `koanf:"bcrypt_cost"`
	PasswordMinLength int `koanf:"password_min_length"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// Table returns name with the configured prefix applied.
func (d DatabaseConfig) Table(name string) string {
	return d.TablePrefix + name
}

// Load reads configuration using Koanf. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
