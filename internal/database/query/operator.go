// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import "strings"

// Operator is a predicate operator accepted in conditions.
type Operator int

const (
	OpEq Operator = iota
	OpGt
	OpLt
	OpGe
	OpLe
	OpNe
	OpLike
	OpIn
	OpNotIn
)

var operatorSymbols = [...]string{
	OpEq:    "=",
	OpGt:    ">",
	OpLt:    "<",
	OpGe:    ">=",
	OpLe:    "<=",
	OpNe:    "!=",
	OpLike:  "LIKE",
	OpIn:    "IN",
	OpNotIn: "NOT IN",
}

// operatorAliases double as placeholder prefixes.
var operatorAliases = [...]string{
	OpEq:    "eq",
	OpGt:    "gt",
	OpLt:    "lt",
	OpGe:    "ge",
	OpLe:    "le",
	OpNe:    "ne",
	OpLike:  "like",
	OpIn:    "in",
	OpNotIn: "nin",
}

// ParseOperator resolves a symbol ("=", "NOT IN") or alias ("eq", "nin").
// Symbols are matched case-insensitively. Anything unrecognized is OpEq.
func ParseOperator(s string) Operator {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for op, sym := range operatorSymbols {
		if sym == upper {
			return Operator(op)
		}
	}
	lower := strings.ToLower(s)
	for op, alias := range operatorAliases {
		if alias == lower {
			return Operator(op)
		}
	}
	return OpEq
}

// String returns the SQL symbol.
func (o Operator) String() string {
	if o < OpEq || o > OpNotIn {
		return operatorSymbols[OpEq]
	}
	return operatorSymbols[o]
}

// Alias returns the short name used in placeholders.
func (o Operator) Alias() string {
	if o < OpEq || o > OpNotIn {
		return operatorAliases[OpEq]
	}
	return operatorAliases[o]
}

// IsList reports whether the operator takes a value list.
func (o Operator) IsList() bool {
	return o == OpIn || o == OpNotIn
}

// IsComparison reports whether the operator may compare two columns in a JOIN.
func (o Operator) IsComparison() bool {
	return o >= OpEq && o <= OpNe
}
