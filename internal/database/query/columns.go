// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import "strings"

// Column is one projected column, optionally aliased.
type Column struct {
	Name  string
	Alias string
}

// Columns is a SELECT projection. An empty projection selects *.
type Columns []Column

// Cols projects the named columns without aliases.
//
//	query.Cols("id", "auth_roles.*")
func Cols(names ...string) Columns {
	cols := make(Columns, 0, len(names))
	for _, n := range names {
		cols = append(cols, Column{Name: n})
	}
	return cols
}

// As projects name under alias.
func As(alias, name string) Column {
	return Column{Name: name, Alias: alias}
}

// With appends columns to the projection.
func (c Columns) With(cols ...Column) Columns {
	out := make(Columns, len(c), len(c)+len(cols))
	copy(out, c)
	return append(out, cols...)
}

// Build renders the projection.
func (c Columns) Build() string {
	if len(c) == 0 {
		return wildcard
	}
	parts := make([]string, 0, len(c))
	for _, col := range c {
		if strings.TrimSpace(col.Name) == "" {
			continue
		}
		sql := Quote(col.Name)
		if col.Alias != "" {
			sql += " AS " + QuoteAlias(col.Alias)
		}
		parts = append(parts, sql)
	}
	if len(parts) == 0 {
		return wildcard
	}
	return strings.Join(parts, ", ")
}
