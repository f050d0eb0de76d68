// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/warden/internal/database/query"
	"github.com/tomtom215/warden/internal/metrics"
)

// Row is one result row keyed by column name. Text columns are returned as
// string rather than []byte.
type Row map[string]interface{}

// String returns the column as a string, or "" when absent or NULL.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an int64, or 0 when absent, NULL or not numeric.
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// Time returns the column as a time, or the zero time when absent or unparseable.
func (r Row) Time(column string) time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// exec runs a mutation and returns the result.
func (db *DB) exec(ctx context.Context, stmt query.Statement) (sql.Result, error) {
	var res sql.Result
	err := db.run(ctx, stmt, func(ns *sqlx.NamedStmt, arg map[string]interface{}) error {
		var err error
		res, err = ns.ExecContext(ctx, arg)
		return err
	})
	return res, err
}

// rows runs a query and scans every row.
func (db *DB) rows(ctx context.Context, stmt query.Statement) ([]Row, error) {
	var out []Row
	err := db.run(ctx, stmt, func(ns *sqlx.NamedStmt, arg map[string]interface{}) error {
		rows, err := ns.QueryxContext(ctx, arg)
		if err != nil {
			return err
		}
		defer closeQuietly(rows)

		out = make([]Row, 0)
		for rows.Next() {
			m := make(map[string]interface{})
			if err := rows.MapScan(m); err != nil {
				return err
			}
			out = append(out, normalizeRow(m))
		}
		return rows.Err()
	})
	return out, err
}

// scalar runs a single-value query and scans the first column of the first
// row into dest. The column is read positionally, so its name does not matter.
func (db *DB) scalar(ctx context.Context, stmt query.Statement, dest interface{}) error {
	return db.run(ctx, stmt, func(ns *sqlx.NamedStmt, arg map[string]interface{}) error {
		return ns.QueryRowxContext(ctx, arg).Scan(dest)
	})
}

// run prepares stmt on the connection chosen by its target and hands the
// named statement to fn. Failures are logged, counted and wrapped in
// ErrStatementExecution.
func (db *DB) run(ctx context.Context, stmt query.Statement, fn func(*sqlx.NamedStmt, map[string]interface{}) error) error {
	start := time.Now()
	arg := stmt.Params.Map()

	onConn := func(conn *sqlx.DB) error {
		ns, err := conn.PrepareNamedContext(ctx, stmt.SQL)
		if err != nil {
			return err
		}
		defer closeQuietly(ns)
		return fn(ns, arg)
	}

	var err error
	if stmt.Target == query.Write {
		err = onConn(db.write)
	} else {
		err = db.withReader(stmt.Table, onConn)
	}

	duration := time.Since(start)
	metrics.RecordDBQuery(string(stmt.Kind), stmt.Table, stmt.Target.String(), duration, err)

	if err != nil {
		db.logger.Warn().
			Err(err).
			Str("operation", string(stmt.Kind)).
			Str("table", stmt.Table).
			Dur("duration", duration).
			Msg("Statement failed")
		return fmt.Errorf("%w: %s %s: %w", ErrStatementExecution, stmt.Kind, stmt.Table, err)
	}

	db.logger.Trace().
		Str("operation", string(stmt.Kind)).
		Str("table", stmt.Table).
		Str("sql", stmt.SQL).
		Dur("duration", duration).
		Msg("Statement executed")
	return nil
}

func normalizeRow(m map[string]interface{}) Row {
	row := make(Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
			continue
		}
		row[k] = v
	}
	return row
}
