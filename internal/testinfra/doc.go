// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package testinfra provides test infrastructure for exercising the executor
// and auth layers against a real SQL engine.
//
// Tests run against an in-memory modernc.org/sqlite database opened twice, so
// the write and read routing paths use distinct connection pools:
//
//	func TestInsert(t *testing.T) {
//	    sqlite := testinfra.NewSQLite(t, testinfra.DefaultPrefix)
//	    db, err := database.New(sqlite.Write, sqlite.Read, database.WithTablePrefix("auth_"))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    // ...
//	}
//
// The schema in SQLiteSchema follows the MySQL reference schema shipped by
// the database package.
package testinfra
