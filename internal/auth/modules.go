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

// ErrModuleNotFound is returned when no module has the given id.
var ErrModuleNotFound = errors.New("module not found")

// Module delete steps, in execution order.
const (
	StepUnlinkRoles  = "unlink roles"
	StepDeleteModule = "delete module"
)

// Module is a row of the modules table. Modules name the permissions that
// CheckModule tests for.
type Module struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	ParentID    int64     `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func moduleFromRow(r database.Row) Module {
	return Module{
		ID:          r.Int64("id"),
		Name:        r.String("name"),
		DisplayName: r.String("display_name"),
		ParentID:    r.Int64("parent_id"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

// ModuleChanges describes an edit. Empty strings and a nil ParentID are left
// unchanged; ParentID may be set to 0 to make a module top level.
type ModuleChanges struct {
	Name        string
	DisplayName string
	ParentID    *int64
}

// Modules manages the modules table.
type Modules struct {
	t tables
}

// Get returns module id, or an error wrapping ErrModuleNotFound.
func (m *Modules) Get(ctx context.Context, id int64) (Module, error) {
	row, err := m.t.modules.SelectOne(ctx, byID(id), nil)
	if err != nil {
		return Module{}, notFound(err, ErrModuleNotFound)
	}
	return moduleFromRow(row), nil
}

// List returns modules matching where, ordered by id.
func (m *Modules) List(ctx context.Context, where *query.Condition, limit query.Limit) ([]Module, error) {
	rows, err := m.t.modules.Select(ctx, where, query.OrderBy(query.Asc("id")), limit, nil)
	if err != nil {
		return nil, err
	}
	modules := make([]Module, len(rows))
	for i, row := range rows {
		modules[i] = moduleFromRow(row)
	}
	return modules, nil
}

// Add creates a module and returns its id. A taken name returns ErrDuplicateKey.
func (m *Modules) Add(ctx context.Context, name, displayName string, parentID int64) (int64, error) {
	if err := ensureUnique(ctx, m.t.modules, "name", name, 0); err != nil {
		return 0, err
	}
	return insertUnique(ctx, m.t.modules, query.
		Set("name", name).
		Set("display_name", displayName).
		Set("parent_id", parentID))
}

// Edit applies changes to module id and returns the affected row count.
func (m *Modules) Edit(ctx context.Context, id int64, ch ModuleChanges) (int64, error) {
	var values query.Values
	if ch.Name != "" {
		if err := ensureUnique(ctx, m.t.modules, "name", ch.Name, id); err != nil {
			return 0, err
		}
		values = values.Set("name", ch.Name)
	}
	if ch.DisplayName != "" {
		values = values.Set("display_name", ch.DisplayName)
	}
	if ch.ParentID != nil {
		values = values.Set("parent_id", *ch.ParentID)
	}
	return updateUnique(ctx, m.t.modules, values, byID(id))
}

// Delete unlinks the module from every role, then deletes it. It stops at
// the first failing step and returns a *StepError.
func (m *Modules) Delete(ctx context.Context, id int64) (int64, error) {
	const op = "delete module"

	if _, err := m.t.roleModules.Delete(ctx, query.Where().Eq("module_id", id)); err != nil {
		return 0, &StepError{Op: op, Step: StepUnlinkRoles, Err: err}
	}
	n, err := m.t.modules.Delete(ctx, byID(id))
	if err != nil {
		return 0, &StepError{Op: op, Step: StepDeleteModule, Err: err}
	}
	return n, nil
}
