// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Command server runs the Warden auth API.

Startup order:

 1. Configuration: koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog, level and format from config
 3. Database: MySQL write connection plus an optional read replica
 4. Session store: memory or BadgerDB (SESSION_STORE)
 5. Auth service: throttle, password policy, audit logger
 6. HTTP router: chi, httprate, Prometheus
 7. Supervisor tree: http-server, session-cleanup, throttle-purge

The process stops on SIGINT or SIGTERM. In-flight requests get
SERVER_TIMEOUT to finish, then the session store and database are closed.

Print the MySQL DDL for the configured table prefix and exit:

	./warden -print-schema | mysql warden

Common environment:

	DB_HOST=db DB_USER=warden DB_PASSWORD=... DB_NAME=warden
	DB_READ_HOSTS=replica1,replica2
	SESSION_STORE=badger SESSION_STORE_PATH=/data/sessions
	LOGIN_MAX_ATTEMPTS=5 LOGIN_LOCKOUT_WINDOW=30m
	LOG_LEVEL=info LOG_FORMAT=json
*/
package main
