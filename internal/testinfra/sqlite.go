// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package testinfra

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultPrefix is the table prefix used by SQLiteSchema when none is given.
const DefaultPrefix = "auth_"

var dbCounter atomic.Int64

// SQLiteSchema is the auth table layout in SQLite syntax. It mirrors the
// MySQL reference schema closely enough for the query builder's output to
// run unchanged.
func SQLiteSchema(prefix string) []string {
	r := strings.NewReplacer("{p}", prefix)
	stmts := []string{
		"CREATE TABLE `{p}users` (" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"`username` TEXT NOT NULL UNIQUE, " +
			"`password_hash` TEXT NOT NULL, " +
			"`is_root` TEXT NOT NULL DEFAULT 'N', " +
			"`role_id` INTEGER NOT NULL DEFAULT 0, " +
			"`status` TEXT NOT NULL DEFAULT 'Y', " +
			"`last_ip` TEXT NOT NULL DEFAULT '', " +
			"`last_login_at` DATETIME NULL, " +
			"`created_at` DATETIME NOT NULL, " +
			"`updated_at` DATETIME NULL)",
		"CREATE TABLE `{p}roles` (" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"`group_id` INTEGER NOT NULL DEFAULT 0, " +
			"`name` TEXT NOT NULL UNIQUE, " +
			"`display_name` TEXT NOT NULL DEFAULT '', " +
			"`created_at` DATETIME NOT NULL, " +
			"`updated_at` DATETIME NULL)",
		"CREATE TABLE `{p}groups` (" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"`name` TEXT NOT NULL UNIQUE, " +
			"`display_name` TEXT NOT NULL DEFAULT '', " +
			"`created_at` DATETIME NOT NULL, " +
			"`updated_at` DATETIME NULL)",
		"CREATE TABLE `{p}modules` (" +
			"`id` INTEGER PRIMARY KEY AUTOINCREMENT, " +
			"`name` TEXT NOT NULL UNIQUE, " +
			"`display_name` TEXT NOT NULL DEFAULT '', " +
			"`parent_id` INTEGER NOT NULL DEFAULT 0, " +
			"`created_at` DATETIME NOT NULL, " +
			"`updated_at` DATETIME NULL)",
		"CREATE TABLE `{p}role_modules` (" +
			"`role_id` INTEGER NOT NULL, " +
			"`module_id` INTEGER NOT NULL, " +
			"PRIMARY KEY (`role_id`, `module_id`))",
		"CREATE TABLE `{p}failed_logins` (" +
			"`ip` TEXT NOT NULL, " +
			"`username` TEXT NOT NULL, " +
			"`count` INTEGER NOT NULL DEFAULT 1, " +
			"`last_attempt_time` INTEGER NOT NULL, " +
			"PRIMARY KEY (`ip`, `username`))",
	}
	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// SQLite is an in-memory database reachable through two independent handles,
// standing in for a write primary and a read replica.
type SQLite struct {
	Write *sqlx.DB
	Read  *sqlx.DB
	DSN   string
}

// NewSQLite opens a fresh shared-cache in-memory database with the auth schema
// applied under prefix. Both handles are closed when the test ends.
func NewSQLite(t testing.TB, prefix string) *SQLite {
	t.Helper()

	dsn := fmt.Sprintf("file:warden_%d?mode=memory&cache=shared", dbCounter.Add(1))
	write := openSQLite(t, dsn)
	read := openSQLite(t, dsn)

	for _, stmt := range SQLiteSchema(prefix) {
		if _, err := write.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}

	return &SQLite{Write: write, Read: read, DSN: dsn}
}

// Exec runs raw SQL on the write handle, failing the test on error.
func (s *SQLite) Exec(t testing.TB, stmt string, args ...interface{}) {
	t.Helper()
	if _, err := s.Write.Exec(stmt, args...); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}

func openSQLite(t testing.TB, dsn string) *sqlx.DB {
	t.Helper()
	raw, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection per handle keeps shared-cache table locks predictable.
	raw.SetMaxOpenConns(1)
	db := sqlx.NewDb(raw, "sqlite3")
	t.Cleanup(func() { _ = db.Close() })
	return db
}
