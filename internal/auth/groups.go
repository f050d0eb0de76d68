// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/database/query"
)

// ErrGroupNotFound is returned when no group has the given id.
var ErrGroupNotFound = errors.New("group not found")

// Group delete steps, in execution order.
const (
	StepDetachRoles = "detach roles"
	StepDeleteGroup = "delete group"
)

// Group is a row of the groups table. A user belongs to the group of its role.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func groupFromRow(r database.Row) Group {
	return Group{
		ID:          r.Int64("id"),
		Name:        r.String("name"),
		DisplayName: r.String("display_name"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

// Groups manages the groups table.
type Groups struct {
	t tables
}

// Get returns group id, or an error wrapping ErrGroupNotFound.
func (g *Groups) Get(ctx context.Context, id int64) (Group, error) {
	row, err := g.t.groups.SelectOne(ctx, byID(id), nil)
	if err != nil {
		return Group{}, notFound(err, ErrGroupNotFound)
	}
	return groupFromRow(row), nil
}

// List returns every group ordered by id.
func (g *Groups) List(ctx context.Context) ([]Group, error) {
	rows, err := g.t.groups.Select(ctx, nil, query.OrderBy(query.Asc("id")), query.Limit{}, nil)
	if err != nil {
		return nil, err
	}
	groups := make([]Group, len(rows))
	for i, row := range rows {
		groups[i] = groupFromRow(row)
	}
	return groups, nil
}

// Add creates a group and returns its id. A taken name returns ErrDuplicateKey.
func (g *Groups) Add(ctx context.Context, name, displayName string) (int64, error) {
	if err := ensureUnique(ctx, g.t.groups, "name", name, 0); err != nil {
		return 0, err
	}
	return insertUnique(ctx, g.t.groups, query.Set("name", name).Set("display_name", displayName))
}

// Edit renames group id. Empty arguments are left unchanged.
func (g *Groups) Edit(ctx context.Context, id int64, name, displayName string) (int64, error) {
	var values query.Values
	if name != "" {
		if err := ensureUnique(ctx, g.t.groups, "name", name, id); err != nil {
			return 0, err
		}
		values = values.Set("name", name)
	}
	if displayName != "" {
		values = values.Set("display_name", displayName)
	}
	return updateUnique(ctx, g.t.groups, values, byID(id))
}

// Delete moves the group's roles to group 0, then deletes the group. It
// stops at the first failing step and returns a *StepError.
func (g *Groups) Delete(ctx context.Context, id int64) (int64, error) {
	const op = "delete group"

	if _, err := g.t.roles.Update(ctx, query.Set("group_id", 0), query.Where().Eq("group_id", id)); err != nil {
		return 0, &StepError{Op: op, Step: StepDetachRoles, Err: err}
	}
	n, err := g.t.groups.Delete(ctx, byID(id))
	if err != nil {
		return 0, &StepError{Op: op, Step: StepDeleteGroup, Err: err}
	}
	return n, nil
}

// hasName reports whether group id is named one of names.
func (g *Groups) hasName(ctx context.Context, id int64, names []string) (bool, error) {
	if id == 0 || len(names) == 0 {
		return false, nil
	}
	n, err := g.t.groups.Count(ctx, byID(id).In("name", names), "")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
