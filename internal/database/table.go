// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/warden/internal/database/query"
)

// Table binds a table name and its timestamp columns to a DB.
//
//	users := db.Table("users")
//	id, err := users.Insert(ctx, query.Set("username", "ada").Set("status", "Y"))
//	row, err := users.SelectOne(ctx, query.Where().Eq("id", id), query.Cols("username"))
type Table struct {
	db            *DB
	name          string
	createdColumn string
	updatedColumn string
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithCreatedColumn sets the column stamped on insert. "" disables it.
func WithCreatedColumn(column string) TableOption {
	return func(t *Table) { t.createdColumn = column }
}

// WithUpdatedColumn sets the column stamped on update and counter. "" disables it.
func WithUpdatedColumn(column string) TableOption {
	return func(t *Table) { t.updatedColumn = column }
}

// WithoutTimestamps disables both timestamp columns.
func WithoutTimestamps() TableOption {
	return func(t *Table) {
		t.createdColumn = ""
		t.updatedColumn = ""
	}
}

// Name returns the full (prefixed) table name.
func (t *Table) Name() string { return t.name }

// Column returns name qualified with the table, e.g. auth_users.id.
func (t *Table) Column(name string) string { return t.name + "." + name }

func (t *Table) timestamps() query.Timestamps {
	return query.Timestamps{
		CreatedColumn: t.createdColumn,
		UpdatedColumn: t.updatedColumn,
		Now:           t.db.Now(),
	}
}

// Insert adds a row and returns its last insert id.
func (t *Table) Insert(ctx context.Context, values query.Values) (int64, error) {
	stmt, err := query.BuildInsert(t.name, values, t.timestamps())
	if err != nil {
		return 0, err
	}
	res, err := t.db.exec(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return lastInsertID(res)
}

// Update sets values on the rows matching where and returns the affected count.
func (t *Table) Update(ctx context.Context, values query.Values, where *query.Condition) (int64, error) {
	stmt, err := query.BuildUpdate(t.name, values, where, t.timestamps())
	if err != nil {
		return 0, err
	}
	return t.affected(ctx, stmt)
}

// Delete removes the rows matching where and returns the affected count.
func (t *Table) Delete(ctx context.Context, where *query.Condition) (int64, error) {
	return t.affected(ctx, query.BuildDelete(t.name, where))
}

// Counter adjusts column by delta in place. op is "+" or "-"; anything else
// is treated as "+". extra adds further assignments to the same statement.
func (t *Table) Counter(ctx context.Context, where *query.Condition, column string, delta int64, op string, extra query.Values) (int64, error) {
	return t.affected(ctx, query.BuildCounter(t.name, where, column, delta, op, extra, t.timestamps()))
}

// SelectOne returns the first row matching where, or ErrNotFound.
func (t *Table) SelectOne(ctx context.Context, where *query.Condition, cols query.Columns) (Row, error) {
	rows, err := t.db.rows(ctx, query.BuildSelect(t.name, query.SelectSpec{
		Columns: cols,
		Where:   where,
		Limit:   query.First(1),
	}))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", t.name, ErrNotFound)
	}
	return rows[0], nil
}

// Select returns every row matching where. sort, limit and cols may be zero.
func (t *Table) Select(ctx context.Context, where *query.Condition, sort query.Sort, limit query.Limit, cols query.Columns) ([]Row, error) {
	return t.db.rows(ctx, query.BuildSelect(t.name, query.SelectSpec{
		Columns: cols,
		Where:   where,
		Sort:    sort,
		Limit:   limit,
	}))
}

// LeftJoin selects with every join forced to LEFT JOIN.
func (t *Table) LeftJoin(ctx context.Context, joins []query.Join, where *query.Condition, sort query.Sort, limit query.Limit, cols query.Columns) ([]Row, error) {
	return t.db.rows(ctx, query.BuildSelectJoin(t.name, query.LeftJoin, query.SelectSpec{
		Columns: cols,
		Joins:   joins,
		Where:   where,
		Sort:    sort,
		Limit:   limit,
	}))
}

// Join selects honouring each join's own type.
func (t *Table) Join(ctx context.Context, joins []query.Join, where *query.Condition, sort query.Sort, limit query.Limit, cols query.Columns) ([]Row, error) {
	return t.db.rows(ctx, query.BuildSelect(t.name, query.SelectSpec{
		Columns: cols,
		Joins:   joins,
		Where:   where,
		Sort:    sort,
		Limit:   limit,
	}))
}

// Count returns COUNT(column) over the rows matching where. "" counts *.
func (t *Table) Count(ctx context.Context, where *query.Condition, column string) (int64, error) {
	var n sql.NullInt64
	if err := t.db.scalar(ctx, query.BuildCount(t.name, where, column), &n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}

// Sum returns SUM(column) over the rows matching where, 0 when none match.
// "" sums the count column.
func (t *Table) Sum(ctx context.Context, where *query.Condition, column string) (float64, error) {
	var total sql.NullFloat64
	if err := t.db.scalar(ctx, query.BuildSum(t.name, where, column), &total); err != nil {
		return 0, err
	}
	return total.Float64, nil
}

// ShowColumns describes the table (MySQL only). With fieldsOnly each row is
// reduced to its Field entry.
func (t *Table) ShowColumns(ctx context.Context, fieldsOnly bool) ([]Row, error) {
	rows, err := t.db.rows(ctx, query.BuildShowColumns(t.name))
	if err != nil || !fieldsOnly {
		return rows, err
	}
	fields := make([]Row, len(rows))
	for i, r := range rows {
		fields[i] = Row{"Field": r["Field"]}
	}
	return fields, nil
}

func (t *Table) affected(ctx context.Context, stmt query.Statement) (int64, error) {
	res, err := t.db.exec(ctx, stmt)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", ErrStatementExecution, err)
	}
	return n, nil
}

func lastInsertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %w", ErrStatementExecution, err)
	}
	return id, nil
}
