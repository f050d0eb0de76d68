// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseConditionJSON decodes {"<op>": {"<column>": <value>, ...}, ...}
// keeping document order. Empty input and null decode to an empty condition.
//
//	{"=": {"status": "Y"}, "IN": {"id": [3, 1, 2]}, "like": {"username": "adm"}}
func ParseConditionJSON(data []byte) (*Condition, error) {
	root, empty, err := parseRoot(data, ErrInvalidConditionShape)
	if err != nil {
		return nil, err
	}
	if empty {
		return Where(), nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: condition must be an object", ErrInvalidConditionShape)
	}

	c := Where()
	root.ForEach(func(op, row gjson.Result) bool {
		if !row.IsObject() {
			err = fmt.Errorf("%w: group %q is not an object", ErrInvalidConditionShape, op.String())
			return false
		}
		operator := ParseOperator(op.String())
		row.ForEach(func(col, val gjson.Result) bool {
			if val.IsObject() {
				err = fmt.Errorf("%w: value of %q is an object", ErrInvalidConditionShape, col.String())
				return false
			}
			c.Add(operator, col.String(), jsonValue(val))
			return true
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ParseSortJSON decodes a sort spec. Objects map column to "asc"/"desc";
// numeric keys and bare array strings name columns without a direction; the
// FIELD key maps columns to value lists. Entries with any other direction are
// dropped.
//
//	{"price": "asc", "created_at": "DESC", "FIELD": {"id": [3, 1, 2]}}
//	["id", {"name": "desc"}]
func ParseSortJSON(data []byte) (Sort, error) {
	root, empty, err := parseRoot(data, ErrInvalidClause)
	if err != nil || empty {
		return nil, err
	}
	var s Sort
	switch {
	case root.IsObject():
		s = appendSortObject(s, root)
	case root.IsArray():
		for _, item := range root.Array() {
			if item.IsObject() {
				s = appendSortObject(s, item)
			} else if item.Type == gjson.String {
				s = append(s, Bare(item.String()))
			}
		}
	case root.Type == gjson.String:
		s = append(s, Bare(root.String()))
	default:
		return nil, fmt.Errorf("%w: sort must be an object, array or string", ErrInvalidClause)
	}
	return s, nil
}

func appendSortObject(s Sort, obj gjson.Result) Sort {
	obj.ForEach(func(key, val gjson.Result) bool {
		k := key.String()
		switch {
		case isNumericKey(k):
			if val.Type == gjson.String {
				s = append(s, Bare(val.String()))
			}
		case strings.EqualFold(k, "FIELD"):
			val.ForEach(func(col, list gjson.Result) bool {
				s = append(s, Field(col.String(), jsonValue(list)))
				return true
			})
		default:
			if term, ok := Direction(k, val.String()); ok {
				s = append(s, term)
			}
		}
		return true
	})
	return s
}

// ParseJoinsJSON decodes {"<table>": {"<op>": {"<left>": "<right>"}}} in
// document order. Every join gets joinType.
func ParseJoinsJSON(data []byte, joinType JoinType) ([]Join, error) {
	root, empty, err := parseRoot(data, ErrInvalidClause)
	if err != nil || empty {
		return nil, err
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: join must be an object", ErrInvalidClause)
	}

	var joins []Join
	root.ForEach(func(table, on gjson.Result) bool {
		if !on.IsObject() {
			err = fmt.Errorf("%w: join %q has no ON object", ErrInvalidClause, table.String())
			return false
		}
		j := Join{Type: joinType, Table: table.String()}
		on.ForEach(func(op, pairs gjson.Result) bool {
			if !pairs.IsObject() {
				err = fmt.Errorf("%w: join %q group %q is not an object", ErrInvalidClause, table.String(), op.String())
				return false
			}
			operator := ParseOperator(op.String())
			pairs.ForEach(func(left, right gjson.Result) bool {
				j.On = append(j.On, OnPredicate{Left: left.String(), Op: operator, Right: right.String()})
				return true
			})
			return true
		})
		joins = append(joins, j)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return joins, nil
}

// ParseLimitJSON decodes {"page": p, "limit": n}, {"from": f, "limit": n} or a bare number n.
func ParseLimitJSON(data []byte) (Limit, error) {
	root, empty, err := parseRoot(data, ErrInvalidClause)
	if err != nil || empty {
		return Limit{}, err
	}
	switch {
	case root.Type == gjson.Number:
		return First(root.Int()), nil
	case root.IsObject():
		limit := root.Get("limit").Int()
		if page := root.Get("page"); page.Exists() {
			return Page(page.Int(), limit), nil
		}
		return From(root.Get("from").Int(), limit), nil
	default:
		return Limit{}, fmt.Errorf("%w: limit must be an object or number", ErrInvalidClause)
	}
}

// ParseColumnsJSON decodes "col", ["a", "b"] or {"alias": "col", "0": "plain"}.
func ParseColumnsJSON(data []byte) (Columns, error) {
	root, empty, err := parseRoot(data, ErrInvalidClause)
	if err != nil || empty {
		return nil, err
	}
	switch {
	case root.Type == gjson.String:
		return Cols(root.String()), nil
	case root.IsArray():
		var cols Columns
		for _, item := range root.Array() {
			cols = append(cols, Column{Name: item.String()})
		}
		return cols, nil
	case root.IsObject():
		var cols Columns
		root.ForEach(func(key, val gjson.Result) bool {
			if isNumericKey(key.String()) {
				cols = append(cols, Column{Name: val.String()})
			} else {
				cols = append(cols, As(key.String(), val.String()))
			}
			return true
		})
		return cols, nil
	default:
		return nil, fmt.Errorf("%w: columns must be a string, array or object", ErrInvalidClause)
	}
}

// parseRoot validates data. empty is true for blank input and JSON null.
func parseRoot(data []byte, shapeErr error) (root gjson.Result, empty bool, err error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return gjson.Result{}, true, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, false, fmt.Errorf("%w: malformed JSON", shapeErr)
	}
	root = gjson.ParseBytes(data)
	return root, root.Type == gjson.Null, nil
}

// jsonValue converts a gjson value into a bindable Go value. Integral numbers
// become int64 so ids bind as integers.
func jsonValue(r gjson.Result) interface{} {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		f := r.Float()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return r.Int()
		}
		return f
	case gjson.String:
		return r.String()
	}
	if r.IsArray() {
		items := r.Array()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	}
	return r.Raw
}

func isNumericKey(k string) bool {
	_, err := strconv.Atoi(k)
	return err == nil
}
