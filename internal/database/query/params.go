// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"sort"
	"strconv"
)

// Param is a single named bind parameter. Name has no leading colon.
type Param struct {
	Name  string
	Value interface{}
}

// Params is an ordered set of bind parameters with unique names.
// The zero value is ready to use.
type Params struct {
	list  []Param
	index map[string]int
}

// add binds value under base, or under base_<n> if base is taken, and
// returns the placeholder (with leading colon) that must appear in SQL.
func (p *Params) add(base string, value interface{}) string {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	name := base
	for n := 1; ; n++ {
		if _, taken := p.index[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(n)
	}
	p.index[name] = len(p.list)
	p.list = append(p.list, Param{Name: name, Value: value})
	return ":" + name
}

// Len returns the number of bound parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// List returns the parameters in binding order.
func (p *Params) List() []Param {
	if p == nil {
		return nil
	}
	out := make([]Param, len(p.list))
	copy(out, p.list)
	return out
}

// Get returns the value bound under name.
func (p *Params) Get(name string) (interface{}, bool) {
	if p == nil || p.index == nil {
		return nil, false
	}
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.list[i].Value, true
}

// Map returns the parameters keyed by name, the shape sqlx named statements bind from.
func (p *Params) Map() map[string]interface{} {
	m := make(map[string]interface{}, p.Len())
	if p == nil {
		return m
	}
	for _, param := range p.list {
		m[param.Name] = param.Value
	}
	return m
}

// Assignment is one column = value pair for INSERT and UPDATE.
type Assignment struct {
	Column string
	Value  interface{}
}

// Values is an ordered list of column assignments.
type Values []Assignment

// Set starts a Values list.
//
//	query.Set("name", "x").Set("status", "Y")
func Set(column string, value interface{}) Values {
	return Values{{Column: column, Value: value}}
}

// Set appends an assignment. Setting a column twice replaces the earlier value.
func (v Values) Set(column string, value interface{}) Values {
	for i := range v {
		if v[i].Column == column {
			v[i].Value = value
			return v
		}
	}
	return append(v, Assignment{Column: column, Value: value})
}

// Has reports whether column is assigned.
func (v Values) Has(column string) bool {
	for _, a := range v {
		if a.Column == column {
			return true
		}
	}
	return false
}

// ValuesFromMap converts a map to Values ordered by column name so the
// generated SQL is deterministic.
func ValuesFromMap(m map[string]interface{}) Values {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	v := make(Values, 0, len(cols))
	for _, c := range cols {
		v = append(v, Assignment{Column: c, Value: m[c]})
	}
	return v
}
