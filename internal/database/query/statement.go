// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"strings"
	"time"
)

// Target is the connection a statement must run on.
type Target int

const (
	// Write is the primary connection. Every mutation runs here.
	Write Target = iota
	// Read is the replica connection.
	Read
)

func (t Target) String() string {
	if t == Read {
		return "read"
	}
	return "write"
}

// Kind identifies the statement shape, used for metrics and result handling.
type Kind string

const (
	KindInsert      Kind = "insert"
	KindUpdate      Kind = "update"
	KindCounter     Kind = "counter"
	KindDelete      Kind = "delete"
	KindSelect      Kind = "select"
	KindCount       Kind = "count"
	KindSum         Kind = "sum"
	KindShowColumns Kind = "show_columns"
)

// Statement is SQL text with named parameters, ready for execution.
type Statement struct {
	Kind   Kind
	Table  string
	SQL    string
	Params *Params
	Target Target
}

// Timestamps configures the automatically maintained time columns of a table.
// Empty column names disable the behaviour.
type Timestamps struct {
	CreatedColumn string
	UpdatedColumn string
	Now           time.Time
}

func (ts Timestamps) now() time.Time {
	if ts.Now.IsZero() {
		return time.Now()
	}
	return ts.Now
}

// SelectSpec gathers the optional clauses of a SELECT.
type SelectSpec struct {
	Columns Columns
	Joins   []Join
	Where   *Condition
	Sort    Sort
	Limit   Limit
}

// BuildInsert renders INSERT INTO table (...) VALUES (...).
// The created column is appended unless values already sets it.
func BuildInsert(table string, values Values, ts Timestamps) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("insert into %s: %w", table, ErrEmptyParameters)
	}
	if ts.CreatedColumn != "" && !values.Has(ts.CreatedColumn) {
		values = append(values[:len(values):len(values)], Assignment{Column: ts.CreatedColumn, Value: ts.now()})
	}

	p := &Params{}
	cols := make([]string, len(values))
	holders := make([]string, len(values))
	for i, v := range values {
		cols[i] = Quote(v.Column)
		holders[i] = p.add(placeholderName(v.Column), v.Value)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		Quote(table), strings.Join(cols, ", "), strings.Join(holders, ", "))
	return Statement{Kind: KindInsert, Table: table, SQL: sql, Params: p, Target: Write}, nil
}

// BuildUpdate renders UPDATE table SET ... WHERE ....
// The updated column is appended unless values already sets it.
func BuildUpdate(table string, values Values, where *Condition, ts Timestamps) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("update %s: %w", table, ErrEmptyParameters)
	}
	p := &Params{}
	sets := assignments(values, ts, p)

	sql := fmt.Sprintf("UPDATE %s SET %s", Quote(table), strings.Join(sets, ", "))
	sql += whereClause(where, p)
	return Statement{Kind: KindUpdate, Table: table, SQL: sql, Params: p, Target: Write}, nil
}

// BuildCounter renders an in-place increment (op "+") or decrement (op "-")
// of column by delta, with optional extra assignments. Any op other than "-" is "+".
func BuildCounter(table string, where *Condition, column string, delta int64, op string, extra Values, ts Timestamps) Statement {
	if op != "-" {
		op = "+"
	}
	p := &Params{}
	col := Quote(column)
	sets := []string{fmt.Sprintf("%s = %s %s %s", col, col, op, p.add("counter_"+placeholderName(column), delta))}
	sets = append(sets, assignments(extra, ts, p)...)

	sql := fmt.Sprintf("UPDATE %s SET %s", Quote(table), strings.Join(sets, ", "))
	sql += whereClause(where, p)
	return Statement{Kind: KindCounter, Table: table, SQL: sql, Params: p, Target: Write}
}

// BuildDelete renders DELETE FROM table WHERE ....
func BuildDelete(table string, where *Condition) Statement {
	p := &Params{}
	sql := "DELETE FROM " + Quote(table) + whereClause(where, p)
	return Statement{Kind: KindDelete, Table: table, SQL: sql, Params: p, Target: Write}
}

// BuildSelect renders SELECT cols FROM table [JOIN ...] [WHERE ...] [ORDER BY ...] [LIMIT ...].
func BuildSelect(table string, spec SelectSpec) Statement {
	p := &Params{}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(spec.Columns.Build())
	b.WriteString(" FROM ")
	b.WriteString(Quote(table))
	if joins := BuildJoins(spec.Joins); joins != "" {
		b.WriteString(" ")
		b.WriteString(joins)
	}
	b.WriteString(whereClause(spec.Where, p))
	b.WriteString(spec.Sort.build(p))
	b.WriteString(spec.Limit.Build())
	return Statement{Kind: KindSelect, Table: table, SQL: b.String(), Params: p, Target: Read}
}

// BuildSelectJoin renders a SELECT where every join is forced to joinType.
func BuildSelectJoin(table string, joinType JoinType, spec SelectSpec) Statement {
	spec.Joins = withType(spec.Joins, joinType)
	return BuildSelect(table, spec)
}

// BuildCount renders SELECT COUNT(column). An empty column counts *.
func BuildCount(table string, where *Condition, column string) Statement {
	return aggregate(KindCount, "COUNT", table, where, column, wildcard)
}

// BuildSum renders SELECT SUM(column). An empty column sums "count".
func BuildSum(table string, where *Condition, column string) Statement {
	return aggregate(KindSum, "SUM", table, where, column, "count")
}

// BuildShowColumns renders SHOW FULL COLUMNS FROM table.
func BuildShowColumns(table string) Statement {
	return Statement{
		Kind:   KindShowColumns,
		Table:  table,
		SQL:    "SHOW FULL COLUMNS FROM " + Quote(table),
		Params: &Params{},
		Target: Read,
	}
}

func aggregate(kind Kind, fn, table string, where *Condition, column, fallback string) Statement {
	if strings.TrimSpace(column) == "" {
		column = fallback
	}
	p := &Params{}
	sql := fmt.Sprintf("SELECT %s(%s) FROM %s", fn, Quote(column), Quote(table))
	sql += whereClause(where, p)
	return Statement{Kind: kind, Table: table, SQL: sql, Params: p, Target: Read}
}

// assignments renders col = :set_col pairs, appending the updated column
// when configured and not set explicitly.
func assignments(values Values, ts Timestamps, p *Params) []string {
	if ts.UpdatedColumn != "" && !values.Has(ts.UpdatedColumn) {
		values = append(values[:len(values):len(values)], Assignment{Column: ts.UpdatedColumn, Value: ts.now()})
	}
	sets := make([]string, 0, len(values))
	for _, v := range values {
		sets = append(sets, fmt.Sprintf("%s = %s", Quote(v.Column), p.add("set_"+placeholderName(v.Column), v.Value)))
	}
	return sets
}

func whereClause(where *Condition, p *Params) string {
	if sql := where.build(p); sql != "" {
		return " WHERE " + sql
	}
	return ""
}
