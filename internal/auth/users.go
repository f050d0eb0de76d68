// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/database/query"
)

// passwordColumn never leaves this package.
const passwordColumn = "password_hash"

// User is a row of the users table without its password hash.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	IsRoot      bool      `json:"is_root"`
	RoleID      int64     `json:"role_id"`
	Active      bool      `json:"active"`
	LastIP      string    `json:"last_ip,omitempty"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func userFromRow(r database.Row) User {
	return User{
		ID:          r.Int64("id"),
		Username:    r.String("username"),
		IsRoot:      r.String("is_root") == FlagYes,
		RoleID:      r.Int64("role_id"),
		Active:      r.String("status") == FlagYes,
		LastIP:      r.String("last_ip"),
		LastLoginAt: r.Time("last_login_at"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

// NewUser describes a user to create.
type NewUser struct {
	Username string
	Password string
	RoleID   int64
	Active   bool
	IsRoot   bool

	// Extra sets additional columns the deployment added to the users table.
	Extra query.Values
}

// UserChanges describes an edit. Zero fields are left unchanged.
type UserChanges struct {
	Username string
	Password string
	RoleID   int64
	Active   *bool
	IsRoot   *bool
	Extra    query.Values
}

// Users manages the users table.
type Users struct {
	table      *database.Table
	bcryptCost int
	policy     PasswordPolicy
}

// Get returns the user with id, or an error wrapping ErrUserNotFound.
func (u *Users) Get(ctx context.Context, id int64) (User, error) {
	return u.getOne(ctx, byID(id))
}

// GetByUsername returns the user named username, or an error wrapping ErrUserNotFound.
func (u *Users) GetByUsername(ctx context.Context, username string) (User, error) {
	return u.getOne(ctx, query.Where().Eq("username", username))
}

func (u *Users) getOne(ctx context.Context, where *query.Condition) (User, error) {
	row, err := u.table.SelectOne(ctx, where, nil)
	if err != nil {
		return User{}, notFound(err, ErrUserNotFound)
	}
	return userFromRow(row), nil
}

// List returns users ordered by sort (id ascending when empty).
func (u *Users) List(ctx context.Context, sort query.Sort, limit query.Limit) ([]User, error) {
	if len(sort) == 0 {
		sort = query.OrderBy(query.Asc("id"))
	}
	rows, err := u.table.Select(ctx, nil, sort, limit, nil)
	if err != nil {
		return nil, err
	}
	users := make([]User, len(rows))
	for i, r := range rows {
		users[i] = userFromRow(r)
	}
	return users, nil
}

// Count returns how many users match where.
func (u *Users) Count(ctx context.Context, where *query.Condition) (int64, error) {
	return u.table.Count(ctx, where, "")
}

// Add creates a user and returns its id. A taken username returns ErrDuplicateKey
// and a password failing the policy returns ErrWeakPassword.
func (u *Users) Add(ctx context.Context, nu NewUser) (int64, error) {
	if err := u.policy.Validate(nu.Password, nu.Username); err != nil {
		return 0, err
	}
	if err := ensureUnique(ctx, u.table, "username", nu.Username, 0); err != nil {
		return 0, err
	}
	hash, err := HashPassword(nu.Password, u.bcryptCost)
	if err != nil {
		return 0, err
	}

	values := query.Set("username", nu.Username).
		Set(passwordColumn, hash).
		Set("role_id", nu.RoleID).
		Set("status", flag(nu.Active)).
		Set("is_root", flag(nu.IsRoot))
	for _, a := range nu.Extra {
		if a.Column != passwordColumn {
			values = values.Set(a.Column, a.Value)
		}
	}
	return insertUnique(ctx, u.table, values)
}

// Edit applies changes to user id and returns the affected row count.
func (u *Users) Edit(ctx context.Context, id int64, ch UserChanges) (int64, error) {
	var values query.Values
	if ch.Username != "" {
		if err := ensureUnique(ctx, u.table, "username", ch.Username, id); err != nil {
			return 0, err
		}
		values = values.Set("username", ch.Username)
	}
	if ch.Password != "" {
		if err := u.policy.Validate(ch.Password, ch.Username); err != nil {
			return 0, err
		}
		hash, err := HashPassword(ch.Password, u.bcryptCost)
		if err != nil {
			return 0, err
		}
		values = values.Set(passwordColumn, hash)
	}
	if ch.RoleID != 0 {
		values = values.Set("role_id", ch.RoleID)
	}
	if ch.Active != nil {
		values = values.Set("status", flag(*ch.Active))
	}
	if ch.IsRoot != nil {
		values = values.Set("is_root", flag(*ch.IsRoot))
	}
	for _, a := range ch.Extra {
		if a.Column != passwordColumn {
			values = values.Set(a.Column, a.Value)
		}
	}
	return updateUnique(ctx, u.table, values, byID(id))
}

// Delete removes user id and returns the affected row count.
func (u *Users) Delete(ctx context.Context, id int64) (int64, error) {
	return u.table.Delete(ctx, byID(id))
}

// recordLogin stamps the user's last login.
func (u *Users) recordLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	_, err := u.table.Update(ctx,
		query.Set("last_ip", ip).Set("last_login_at", at),
		byID(id))
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
