// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Fragment is a piece of SQL text with the parameters it binds.
type Fragment struct {
	SQL    string
	Params *Params
}

// IsEmpty reports whether the fragment contributes no SQL.
func (f Fragment) IsEmpty() bool {
	return f.SQL == ""
}

type predicate struct {
	column string
	value  interface{}
	list   []interface{}
}

type group struct {
	op    Operator
	preds []predicate
}

// Condition is a WHERE tree: ordered operator groups, each holding ordered
// column predicates. Everything is joined with AND. A nil *Condition is an
// empty condition.
type Condition struct {
	groups []group
}

// Where starts an empty condition.
func Where() *Condition {
	return &Condition{}
}

// Add appends a predicate to the group for op, creating the group on first
// use. Re-adding a column to the same group replaces its value.
func (c *Condition) Add(op Operator, column string, value interface{}) *Condition {
	p := predicate{column: column, value: value}
	if op.IsList() {
		p.list, p.value = listValues(value)
	}

	for gi := range c.groups {
		if c.groups[gi].op != op {
			continue
		}
		for pi := range c.groups[gi].preds {
			if c.groups[gi].preds[pi].column == column {
				c.groups[gi].preds[pi] = p
				return c
			}
		}
		c.groups[gi].preds = append(c.groups[gi].preds, p)
		return c
	}
	c.groups = append(c.groups, group{op: op, preds: []predicate{p}})
	return c
}

// Eq adds column = value.
func (c *Condition) Eq(column string, value interface{}) *Condition {
	return c.Add(OpEq, column, value)
}

// Ne adds column != value.
func (c *Condition) Ne(column string, value interface{}) *Condition {
	return c.Add(OpNe, column, value)
}

// Gt adds column > value.
func (c *Condition) Gt(column string, value interface{}) *Condition {
	return c.Add(OpGt, column, value)
}

// Ge adds column >= value.
func (c *Condition) Ge(column string, value interface{}) *Condition {
	return c.Add(OpGe, column, value)
}

// Lt adds column < value.
func (c *Condition) Lt(column string, value interface{}) *Condition {
	return c.Add(OpLt, column, value)
}

// Le adds column <= value.
func (c *Condition) Le(column string, value interface{}) *Condition {
	return c.Add(OpLe, column, value)
}

// Like adds column LIKE %value%.
func (c *Condition) Like(column string, value interface{}) *Condition {
	return c.Add(OpLike, column, value)
}

// In adds column IN (values...). A single slice argument is expanded.
func (c *Condition) In(column string, values ...interface{}) *Condition {
	return c.Add(OpIn, column, variadicList(values))
}

// NotIn adds column NOT IN (values...). A single slice argument is expanded.
func (c *Condition) NotIn(column string, values ...interface{}) *Condition {
	return c.Add(OpNotIn, column, variadicList(values))
}

// IsEmpty reports whether the condition has no predicates.
func (c *Condition) IsEmpty() bool {
	if c == nil {
		return true
	}
	for _, g := range c.groups {
		if len(g.preds) > 0 {
			return false
		}
	}
	return true
}

// Build renders the condition without a leading WHERE.
func (c *Condition) Build() Fragment {
	p := &Params{}
	return Fragment{SQL: c.build(p), Params: p}
}

func (c *Condition) build(p *Params) string {
	if c == nil {
		return ""
	}
	var parts []string
	for _, g := range c.groups {
		for _, pred := range g.preds {
			if sql := pred.build(g.op, p); sql != "" {
				parts = append(parts, sql)
			}
		}
	}
	return strings.Join(parts, " AND ")
}

func (pred predicate) build(op Operator, p *Params) string {
	column := Quote(pred.column)
	base := op.Alias() + "_" + placeholderName(pred.column)

	switch {
	case op.IsList() && pred.list != nil:
		if len(pred.list) == 0 {
			return ""
		}
		names := make([]string, len(pred.list))
		for i, v := range pred.list {
			names[i] = p.add(base+"_"+strconv.Itoa(i), v)
		}
		return fmt.Sprintf("%s %s (%s)", column, op, strings.Join(names, ", "))
	case op.IsList():
		return fmt.Sprintf("%s %s (%s)", column, op, p.add(base, pred.value))
	case op == OpLike:
		return fmt.Sprintf("%s %s %s", column, op, p.add(base, fmt.Sprintf("%%%v%%", pred.value)))
	default:
		return fmt.Sprintf("%s %s %s", column, op, p.add(base, pred.value))
	}
}

// ConditionFromMap decodes the loose operator -> column -> value shape.
// Operators and columns are visited in sorted order; use ParseConditionJSON
// when the caller's order matters. A group that is not a map fails with
// ErrInvalidConditionShape.
func ConditionFromMap(m map[string]interface{}) (*Condition, error) {
	c := Where()
	ops := make([]string, 0, len(m))
	for op := range m {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for _, op := range ops {
		row, ok := toStringMap(m[op])
		if !ok {
			return nil, fmt.Errorf("%w: group %q is %T", ErrInvalidConditionShape, op, m[op])
		}
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		operator := ParseOperator(op)
		for _, col := range cols {
			c.Add(operator, col, row[col])
		}
	}
	return c, nil
}

func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch row := v.(type) {
	case map[string]interface{}:
		return row, true
	case map[string]string:
		out := make(map[string]interface{}, len(row))
		for k, val := range row {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// variadicList lets In("id", 1, 2) and In("id", []int{1, 2}) mean the same thing.
func variadicList(values []interface{}) interface{} {
	if len(values) == 1 {
		if list, _ := listValues(values[0]); list != nil {
			return list
		}
	}
	if values == nil {
		return []interface{}{}
	}
	return values
}

// listValues splits a value into a list (when it is a slice or array) or a scalar.
// Byte slices are scalars.
func listValues(v interface{}) ([]interface{}, interface{}) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return nil, v
	case []interface{}:
		if list == nil {
			list = []interface{}{}
		}
		return list, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, v
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
