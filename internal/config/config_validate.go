// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 10000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour

	minPasswordLength = 6
)

// identPattern restricts table prefixes and timestamp column names to plain identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	d := c.Database
	if d.Write.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Write.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.Write.Port < 1 || d.Write.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535")
	}
	for _, host := range d.ReadHosts {
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("DB_READ_HOSTS contains an empty entry")
		}
	}
	if d.TablePrefix != "" && !identPattern.MatchString(d.TablePrefix) {
		return fmt.Errorf("DB_TABLE_PREFIX %q is not a valid identifier", d.TablePrefix)
	}
	for name, col := range map[string]string{
		"DB_CREATED_COLUMN": d.CreatedColumn,
		"DB_UPDATED_COLUMN": d.UpdatedColumn,
	} {
		if col != "" && !identPattern.MatchString(col) {
			return fmt.Errorf("%s %q is not a valid identifier", name, col)
		}
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		return fmt.Errorf("connection pool limits must not be negative")
	}
	if d.MaxOpenConns > 0 && d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)", d.MaxIdleConns, d.MaxOpenConns)
	}
	if d.ReadBreaker.FailureThreshold < 1 {
		return fmt.Errorf("DB_READ_BREAKER_FAILURES must be at least 1")
	}
	if d.ReadBreaker.Timeout <= 0 {
		return fmt.Errorf("DB_READ_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	switch s.SessionStore {
	case "memory":
	case "badger":
		if s.SessionStorePath == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be 'memory' or 'badger', got %q", s.SessionStore)
	}
	if s.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if s.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	if s.LoginMaxAttempts < 1 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if s.LoginLockoutWindow <= 0 {
		return fmt.Errorf("LOGIN_LOCKOUT_WINDOW must be positive")
	}
	if s.BcryptCost < bcrypt.MinCost || s.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if s.PasswordMinLength < minPasswordLength {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least %d", minPasswordLength)
	}
	return c.validateRateLimits()
}

func (c *Config) validateRateLimits() error {
	s := c.Security
	if s.RateLimitReqs < minRateLimitRequests || s.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if s.RateLimitWindow < minRateLimitWindow || s.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console'")
	}
	return nil
}
