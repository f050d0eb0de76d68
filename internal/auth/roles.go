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

// ErrRoleNotFound is returned when no role has the given id.
var ErrRoleNotFound = errors.New("role not found")

// Role delete steps, in execution order.
const (
	StepUnlinkModules = "unlink modules"
	StepDetachUsers   = "detach users"
	StepDeleteRole    = "delete role"
)

// Role is a row of the roles table.
type Role struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func roleFromRow(r database.Row) Role {
	return Role{
		ID:          r.Int64("id"),
		GroupID:     r.Int64("group_id"),
		Name:        r.String("name"),
		DisplayName: r.String("display_name"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

// RoleChanges describes an edit. Zero fields are left unchanged.
type RoleChanges struct {
	Name        string
	DisplayName string
	GroupID     int64
}

// Roles manages roles and their module links.
type Roles struct {
	t tables
}

// Get returns role id, or an error wrapping ErrRoleNotFound.
func (r *Roles) Get(ctx context.Context, id int64) (Role, error) {
	row, err := r.t.roles.SelectOne(ctx, byID(id), nil)
	if err != nil {
		return Role{}, notFound(err, ErrRoleNotFound)
	}
	return roleFromRow(row), nil
}

// List returns every role. Without all, only id, group_id, name and
// display_name are read.
func (r *Roles) List(ctx context.Context, all bool) ([]Role, error) {
	var cols query.Columns
	if !all {
		cols = query.Cols("id", "group_id", "name", "display_name")
	}
	rows, err := r.t.roles.Select(ctx, nil, query.OrderBy(query.Asc("id")), query.Limit{}, cols)
	if err != nil {
		return nil, err
	}
	roles := make([]Role, len(rows))
	for i, row := range rows {
		roles[i] = roleFromRow(row)
	}
	return roles, nil
}

// Add creates a role and returns its id. A taken name returns ErrDuplicateKey.
func (r *Roles) Add(ctx context.Context, name, displayName string, groupID int64) (int64, error) {
	if err := ensureUnique(ctx, r.t.roles, "name", name, 0); err != nil {
		return 0, err
	}
	return insertUnique(ctx, r.t.roles, query.
		Set("name", name).
		Set("display_name", displayName).
		Set("group_id", groupID))
}

// Edit applies changes to role id and returns the affected row count.
func (r *Roles) Edit(ctx context.Context, id int64, ch RoleChanges) (int64, error) {
	var values query.Values
	if ch.Name != "" {
		if err := ensureUnique(ctx, r.t.roles, "name", ch.Name, id); err != nil {
			return 0, err
		}
		values = values.Set("name", ch.Name)
	}
	if ch.DisplayName != "" {
		values = values.Set("display_name", ch.DisplayName)
	}
	if ch.GroupID != 0 {
		values = values.Set("group_id", ch.GroupID)
	}
	return updateUnique(ctx, r.t.roles, values, byID(id))
}

// Delete unlinks the role's modules, moves its users to role 0, then deletes
// the role. It stops at the first failing step and returns a *StepError;
// earlier steps are not undone.
func (r *Roles) Delete(ctx context.Context, id int64) (int64, error) {
	const op = "delete role"

	if _, err := r.t.roleModules.Delete(ctx, query.Where().Eq("role_id", id)); err != nil {
		return 0, &StepError{Op: op, Step: StepUnlinkModules, Err: err}
	}
	if _, err := r.t.users.Update(ctx, query.Set("role_id", 0), query.Where().Eq("role_id", id)); err != nil {
		return 0, &StepError{Op: op, Step: StepDetachUsers, Err: err}
	}
	n, err := r.t.roles.Delete(ctx, byID(id))
	if err != nil {
		return 0, &StepError{Op: op, Step: StepDeleteRole, Err: err}
	}
	return n, nil
}

// Modules returns the module ids linked to role id.
func (r *Roles) Modules(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.t.roleModules.Select(ctx, query.Where().Eq("role_id", id),
		query.OrderBy(query.Asc("module_id")), query.Limit{}, query.Cols("module_id"))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Int64("module_id")
	}
	return ids, nil
}

// ModuleNames returns the names of the modules linked to role id. Links to
// deleted modules are skipped.
func (r *Roles) ModuleNames(ctx context.Context, id int64) ([]string, error) {
	rm, m := r.t.roleModules, r.t.modules
	rows, err := rm.LeftJoin(ctx,
		[]query.Join{query.JoinOn(query.LeftJoin, m.Name(), rm.Column("module_id"), m.Column("id"))},
		query.Where().Eq(rm.Column("role_id"), id),
		query.OrderBy(query.Asc(m.Column("name"))),
		query.Limit{},
		query.Cols(m.Column("name")))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := row.String("name"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// SetModules links role id to mids and returns how many links were added.
// With clear, existing links are removed first. Links that already exist are
// skipped. With no mids the count of removed links is returned.
func (r *Roles) SetModules(ctx context.Context, id int64, mids []int64, clear bool) (int64, error) {
	var removed int64
	if clear {
		n, err := r.t.roleModules.Delete(ctx, query.Where().Eq("role_id", id))
		if err != nil {
			return 0, err
		}
		removed = n
	}
	if len(mids) == 0 {
		return removed, nil
	}

	var added int64
	for _, mid := range mids {
		_, err := r.t.roleModules.Insert(ctx, query.Set("role_id", id).Set("module_id", mid))
		if database.IsDuplicateKey(err) {
			continue
		}
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// EditModule links (add) or unlinks a single module.
func (r *Roles) EditModule(ctx context.Context, id, mid int64, add bool) error {
	if add {
		_, err := insertUnique(ctx, r.t.roleModules, query.Set("role_id", id).Set("module_id", mid))
		return err
	}
	_, err := r.t.roleModules.Delete(ctx, query.Where().Eq("role_id", id).Eq("module_id", mid))
	return err
}

// groupID returns the group of role id, or 0 when the role does not exist.
func (r *Roles) groupID(ctx context.Context, id int64) (int64, error) {
	row, err := r.t.roles.SelectOne(ctx, byID(id), query.Cols("group_id"))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Int64("group_id"), nil
}
