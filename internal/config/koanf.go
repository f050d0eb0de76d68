// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/warden/config.yaml",
	"/etc/warden/config.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config populated with default values.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Write: WriteConfig{
				Host:   "127.0.0.1",
				Port:   3306,
				User:   "warden",
				Name:   "warden",
				Params: map[string]string{"charset": "utf8mb4"},
			},
			ReadHosts:       []string{},
			TablePrefix:     "auth_",
			CreatedColumn:   "created_at",
			UpdatedColumn:   "updated_at",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ReadBreaker: ReadBreakerConfig{
				FailureThreshold: 5,
				Timeout:          30 * time.Second,
			},
		},
		Security: SecurityConfig{
			SessionStore:       "memory",
			SessionStorePath:   "/data/sessions",
			SessionTimeout:     24 * time.Hour,
			CookieName:         "warden_session",
			CookieSecure:       true,
			LoginMaxAttempts:   5,
			LoginLockoutWindow: 30 * time.Minute,
			BcryptCost:         12,
			PasswordMinLength:  8,
			RateLimitReqs:      20,
			RateLimitWindow:    time.Minute,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: struct defaults, an
// optional YAML file, then environment variables. The result is validated
// before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// DB_HOST -> database.write.host
	// LOGIN_MAX_ATTEMPTS -> security.login_max_attempts
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"database.read_hosts",
}

// processSliceFields splits comma-separated string values into slices.
// Values already loaded as slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		trimmed := make([]string, 0)
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Database
	"db_host":                  "database.write.host",
	"db_port":                  "database.write.port",
	"db_user":                  "database.write.user",
	"db_password":              "database.write.password",
	"db_name":                  "database.write.name",
	"db_read_hosts":            "database.read_hosts",
	"db_table_prefix":          "database.table_prefix",
	"db_created_column":        "database.created_column",
	"db_updated_column":        "database.updated_column",
	"db_max_open_conns":        "database.max_open_conns",
	"db_max_idle_conns":        "database.max_idle_conns",
	"db_conn_max_lifetime":     "database.conn_max_lifetime",
	"db_read_breaker_failures": "database.read_breaker.failure_threshold",
	"db_read_breaker_timeout":  "database.read_breaker.timeout",

	// Security
	"session_store":         "security.session_store",
	"session_store_path":    "security.session_store_path",
	"session_timeout":       "security.session_timeout",
	"session_cookie_name":   "security.cookie_name",
	"session_cookie_secure": "security.cookie_secure",
	"login_max_attempts":    "security.login_max_attempts",
	"login_lockout_window":  "security.login_lockout_window",
	"bcrypt_cost":           "security.bcrypt_cost",
	"password_min_length":   "security.password_min_length",
	"rate_limit_requests":   "security.rate_limit_reqs",
	"rate_limit_window":     "security.rate_limit_window",

	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are ignored.
func envTransformFunc(s string) string {
	return envMappings[strings.ToLower(s)]
}
