// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/testinfra"
)

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testNow}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc    *Service
	db     *database.DB
	store  *MemorySessionStore
	clock  *fakeClock
	sqlite *testinfra.SQLite
}

func newTestDB(t *testing.T, clock *fakeClock) (*database.DB, *testinfra.SQLite) {
	t.Helper()
	sqlite := testinfra.NewSQLite(t, testinfra.DefaultPrefix)
	db, err := database.New(sqlite.Write, sqlite.Read,
		database.WithTablePrefix(testinfra.DefaultPrefix),
		database.WithTimestampColumns("created_at", "updated_at"),
		database.WithClock(clock.Now),
		database.WithLogger(zerolog.Nop()),
	)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	return db, sqlite
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := newFakeClock()
	db, sqlite := newTestDB(t, clock)

	store := NewMemorySessionStore(WithStoreClock(clock.Now))

	svc := NewService(db, store, NewThrottle(db, DefaultThrottleConfig()), Config{
		SessionTTL:     time.Hour,
		BcryptCost:     bcrypt.MinCost,
		PasswordPolicy: DefaultPasswordPolicy(),
		Audit:          logging.NewAuthLoggerWithLogger(zerolog.Nop()),
	})
	return &testEnv{svc: svc, db: db, store: store, clock: clock, sqlite: sqlite}
}

// addUser creates an active user with the given role and returns its id.
func (e *testEnv) addUser(t *testing.T, username, password string, roleID int64) int64 {
	t.Helper()
	id, err := e.svc.Users().Add(context.Background(), NewUser{
		Username: username,
		Password: password,
		RoleID:   roleID,
		Active:   true,
	})
	if err != nil {
		t.Fatalf("add user %s: %v", username, err)
	}
	return id
}

func (e *testEnv) addGroup(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.svc.Groups().Add(context.Background(), name, name)
	if err != nil {
		t.Fatalf("add group %s: %v", name, err)
	}
	return id
}

func (e *testEnv) addRole(t *testing.T, name string, groupID int64) int64 {
	t.Helper()
	id, err := e.svc.Roles().Add(context.Background(), name, name, groupID)
	if err != nil {
		t.Fatalf("add role %s: %v", name, err)
	}
	return id
}

func (e *testEnv) addModule(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.svc.Modules().Add(context.Background(), name, name, 0)
	if err != nil {
		t.Fatalf("add module %s: %v", name, err)
	}
	return id
}

func (e *testEnv) login(t *testing.T, username, password string) *Session {
	t.Helper()
	sess, err := e.svc.Login(context.Background(), Credentials{Username: username, Password: password, IP: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Login(%s) error = %v", username, err)
	}
	return sess
}
