// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/database/query"
)

// Flag values stored in the status and is_root columns.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

func flag(b bool) string {
	if b {
		return FlagYes
	}
	return FlagNo
}

// tables are the auth tables bound to one DB.
type tables struct {
	users       *database.Table
	roles       *database.Table
	groups      *database.Table
	modules     *database.Table
	roleModules *database.Table
}

func newTables(db *database.DB) tables {
	return tables{
		users:       db.Table("users"),
		roles:       db.Table("roles"),
		groups:      db.Table("groups"),
		modules:     db.Table("modules"),
		roleModules: db.Table("role_modules", database.WithoutTimestamps()),
	}
}

// ensureUnique fails with ErrDuplicateKey when another row (id != excludeID)
// already holds value in column. excludeID 0 checks every row.
func ensureUnique(ctx context.Context, t *database.Table, column string, value interface{}, excludeID int64) error {
	where := query.Where().Eq(column, value)
	if excludeID > 0 {
		where.Ne("id", excludeID)
	}
	_, err := t.SelectOne(ctx, where, query.Cols("id"))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s %s %v", ErrDuplicateKey, t.Name(), column, value)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return err
	}
}

// insertUnique inserts values, reporting a unique key violation as ErrDuplicateKey.
func insertUnique(ctx context.Context, t *database.Table, values query.Values) (int64, error) {
	id, err := t.Insert(ctx, values)
	if database.IsDuplicateKey(err) {
		return 0, fmt.Errorf("%w: %s: %w", ErrDuplicateKey, t.Name(), err)
	}
	return id, err
}

// updateUnique is insertUnique for updates.
func updateUnique(ctx context.Context, t *database.Table, values query.Values, where *query.Condition) (int64, error) {
	n, err := t.Update(ctx, values, where)
	if database.IsDuplicateKey(err) {
		return 0, fmt.Errorf("%w: %s: %w", ErrDuplicateKey, t.Name(), err)
	}
	return n, err
}

// notFound adds sentinel to a database.ErrNotFound so callers can match either.
func notFound(err, sentinel error) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func byID(id int64) *query.Condition {
	return query.Where().Eq("id", id)
}
