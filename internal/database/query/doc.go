// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package query builds parameterized MySQL-family statements from typed
// clause values.
//
// The package never touches a connection. It turns conditions, joins, sort
// terms, limits and projections into SQL text plus an ordered set of named
// parameters, and tags each statement with the connection it must run on
// (write or read). The database package executes the result.
//
// # Injection Safety
//
// Identifiers (tables, columns, aliases) only ever reach SQL text through
// Quote. Values only ever reach the engine as bound parameters. Nothing else is
// concatenated.
//
// # Conditions
//
// A Condition is an ordered list of operator groups. Groups and the predicates
// inside them are combined with AND:
//
//	where := query.Where().
//	    Eq("status", "Y").
//	    Ne("id", 7).
//	    In("role_id", 3, 1, 2).
//	    Like("username", "adm")
//	frag := where.Build()
//	// frag.SQL:    "`status` = :eq_status AND `id` != :ne_id AND `role_id` IN (:in_role_id_0, :in_role_id_1, :in_role_id_2) AND `username` LIKE :like_username"
//	// frag.Params: eq_status=Y ne_id=7 in_role_id_0=3 in_role_id_1=1 in_role_id_2=2 like_username=%adm%
//
// Conditions decoded from untrusted structures go through ConditionFromMap or
// ParseConditionJSON, which reject malformed shapes with
// ErrInvalidConditionShape. Unknown operator symbols fall back to "=".
//
// # Statements
//
//	stmt, err := query.BuildUpdate("auth_users", query.Set("last_ip", ip), where,
//	    query.Timestamps{UpdatedColumn: "updated_at"})
//	// stmt.SQL:    "UPDATE `auth_users` SET `last_ip` = :set_last_ip, `updated_at` = :set_updated_at WHERE ..."
//	// stmt.Target: query.Write
//
// Placeholder names are derived from the operator alias and column name, so
// the same column may appear under several operators in one statement without
// collisions.
package query
