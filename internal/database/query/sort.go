// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"strconv"
	"strings"
)

type sortKind int

const (
	sortBare sortKind = iota
	sortAsc
	sortDesc
	sortField
)

// SortTerm is one ORDER BY entry.
type SortTerm struct {
	kind   sortKind
	column string
	values []interface{}
}

// Sort is an ordered ORDER BY list.
type Sort []SortTerm

// Asc orders by column ascending.
func Asc(column string) SortTerm { return SortTerm{kind: sortAsc, column: column} }

// Desc orders by column descending.
func Desc(column string) SortTerm { return SortTerm{kind: sortDesc, column: column} }

// Bare orders by column with the engine's default direction.
func Bare(column string) SortTerm { return SortTerm{kind: sortBare, column: column} }

// Field orders rows by the position of column's value in values,
// rendered as FIELD(column, v1, v2, ...). Values are bound.
func Field(column string, values ...interface{}) SortTerm {
	list, scalar := listValues(variadicList(values))
	if list == nil {
		list = []interface{}{scalar}
	}
	return SortTerm{kind: sortField, column: column, values: list}
}

// OrderBy is shorthand for Sort{terms...}.
func OrderBy(terms ...SortTerm) Sort {
	return Sort(terms)
}

// Direction builds an Asc or Desc term from a direction string.
// ok is false when dir is neither ASC nor DESC (any case).
func Direction(column, dir string) (term SortTerm, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "ASC":
		return Asc(column), true
	case "DESC":
		return Desc(column), true
	default:
		return SortTerm{}, false
	}
}

// Build renders " ORDER BY ..." or "" for an empty sort.
func (s Sort) Build() Fragment {
	p := &Params{}
	return Fragment{SQL: s.build(p), Params: p}
}

func (s Sort) build(p *Params) string {
	parts := make([]string, 0, len(s))
	for _, t := range s {
		if sql := t.build(p); sql != "" {
			parts = append(parts, sql)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (t SortTerm) build(p *Params) string {
	if strings.TrimSpace(t.column) == "" {
		return ""
	}
	column := Quote(t.column)
	switch t.kind {
	case sortAsc:
		return column + " ASC"
	case sortDesc:
		return column + " DESC"
	case sortField:
		if len(t.values) == 0 {
			return column
		}
		base := "field_" + placeholderName(t.column)
		names := make([]string, len(t.values))
		for i, v := range t.values {
			names[i] = p.add(base+"_"+strconv.Itoa(i), v)
		}
		return fmt.Sprintf("FIELD(%s, %s)", column, strings.Join(names, ", "))
	default:
		return column
	}
}
