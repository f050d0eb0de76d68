// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package config loads and validates Warden configuration.

Configuration is layered with Koanf v2: struct defaults first, then an
optional YAML file, then environment variables. The file is taken from
CONFIG_PATH when set, otherwise from the first of DefaultConfigPaths that
exists.

# Environment Variables

Database:
  - DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME: write connection
  - DB_READ_HOSTS: comma-separated read replicas (default: none, reads use the write connection)
  - DB_TABLE_PREFIX: table name prefix (default: auth_)
  - DB_CREATED_COLUMN, DB_UPDATED_COLUMN: auto-timestamp columns
  - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME: pool limits
  - DB_READ_BREAKER_FAILURES, DB_READ_BREAKER_TIMEOUT: read replica circuit breaker

Security:
  - SESSION_STORE: memory or badger (default: memory)
  - SESSION_STORE_PATH: badger directory
  - SESSION_TIMEOUT: session lifetime (default: 24h)
  - SESSION_COOKIE_NAME, SESSION_COOKIE_SECURE: session cookie
  - LOGIN_MAX_ATTEMPTS: failures before lockout (default: 5)
  - LOGIN_LOCKOUT_WINDOW: lockout duration (default: 30m)
  - BCRYPT_COST, PASSWORD_MIN_LENGTH: password hashing and policy
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: login endpoint rate limit

Server and logging:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example YAML

	database:
	  write:
	    host: db.internal
	    name: warden
	  read_hosts:
	    - replica-1.internal:3306
	security:
	  session_store: badger
	  session_store_path: /data/sessions
*/
package config
