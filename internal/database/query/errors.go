// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import "errors"

var (
	// ErrInvalidConditionShape is returned when a decoded condition group is not a mapping.
	ErrInvalidConditionShape = errors.New("invalid condition shape")

	// ErrEmptyParameters is returned when INSERT or UPDATE is given no columns.
	ErrEmptyParameters = errors.New("empty parameters")

	// ErrInvalidClause is returned when a decoded sort, join or limit has the wrong shape.
	ErrInvalidClause = errors.New("invalid clause")
)
