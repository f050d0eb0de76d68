// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"strings"
)

// JoinType selects the JOIN keyword.
type JoinType int

const (
	// InnerJoin is the default when no type is given.
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
)

// ParseJoinType maps "left" and "right" (any case) to their types. Anything else is InnerJoin.
func ParseJoinType(s string) JoinType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return LeftJoin
	case "right":
		return RightJoin
	default:
		return InnerJoin
	}
}

func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	default:
		return "INNER JOIN"
	}
}

// OnPredicate compares two column references. Neither side is bound.
type OnPredicate struct {
	Left  string
	Op    Operator
	Right string
}

// Join is one joined table with its ON predicates.
type Join struct {
	Type  JoinType
	Table string
	On    []OnPredicate
}

// JoinOn builds a join whose ON clause is left = right.
//
//	query.JoinOn(query.LeftJoin, "auth_modules", "auth_modules.id", "auth_role_modules.module_id")
func JoinOn(t JoinType, table, left, right string) Join {
	return Join{Type: t, Table: table, On: []OnPredicate{{Left: left, Op: OpEq, Right: right}}}
}

// And appends another ON predicate. Non-comparison operators become "=".
func (j Join) And(left string, op Operator, right string) Join {
	on := make([]OnPredicate, len(j.On), len(j.On)+1)
	copy(on, j.On)
	j.On = append(on, OnPredicate{Left: left, Op: op, Right: right})
	return j
}

// BuildJoins renders joins in order, separated by spaces.
func BuildJoins(joins []Join) string {
	parts := make([]string, 0, len(joins))
	for _, j := range joins {
		if sql := j.build(); sql != "" {
			parts = append(parts, sql)
		}
	}
	return strings.Join(parts, " ")
}

func (j Join) build() string {
	if strings.TrimSpace(j.Table) == "" {
		return ""
	}
	preds := make([]string, 0, len(j.On))
	for _, on := range j.On {
		op := on.Op
		if !op.IsComparison() {
			op = OpEq
		}
		preds = append(preds, fmt.Sprintf("%s %s %s", Quote(on.Left), op, Quote(on.Right)))
	}
	if len(preds) == 0 {
		return fmt.Sprintf("%s %s", j.Type, Quote(j.Table))
	}
	return fmt.Sprintf("%s %s ON %s", j.Type, Quote(j.Table), strings.Join(preds, " AND "))
}

// withType returns a copy of joins with every type forced to t.
func withType(joins []Join, t JoinType) []Join {
	out := make([]Join, len(joins))
	for i, j := range joins {
		j.Type = t
		out[i] = j
	}
	return out
}
