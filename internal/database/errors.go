// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrStatementExecution wraps every failure reported by the driver while
	// preparing or running a statement. A successful statement that touches no
	// rows is not an error.
	ErrStatementExecution = errors.New("statement execution failed")

	// ErrNotFound is returned by SelectOne when no row matches.
	ErrNotFound = errors.New("row not found")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err was caused by a unique or primary key
// violation. Both MySQL (error 1062) and SQLite constraint failures are recognized.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// isConnectionError checks if an error indicates the connection itself is
// unusable, as opposed to a failing statement.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "bad connection") ||
		strings.Contains(errMsg, "i/o timeout") ||
		strings.Contains(errMsg, "database is closed")
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
