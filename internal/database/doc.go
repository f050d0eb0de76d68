// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package database executes statements built by the query package over a split
write/read pair of MySQL-family connections.

# Routing

Inserts, updates, deletes and counters run on the write connection. Selects,
counts, sums and column listings run on the read connection. A circuit
breaker (sony/gobreaker) guards the read connection: after repeated
connection failures reads are served by the write connection until the
breaker closes again. Statement errors such as a missing table do not trip
the breaker.

# Usage

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	users := db.Table("users")
	id, err := users.Insert(ctx, query.Set("username", "ada").Set("status", "Y"))
	n, err := users.Count(ctx, query.Where().Eq("status", "Y"), "")

Statements bind their values through sqlx named parameters; no value is
ever interpolated into SQL text.

# Errors

Every driver failure is wrapped in ErrStatementExecution, so a failing
statement is distinguishable from one that matched no rows. SelectOne
returns ErrNotFound when nothing matches. IsDuplicateKey recognizes unique
key violations from MySQL and SQLite.

# Timestamps

Tables stamp a created column on insert and an updated column on update and
counter, unless the caller sets that column explicitly. The clock is
injectable with WithClock.
*/
package database
