// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/testinfra"
)

const testPassword = "Tr0ub4dor-x"

type testServer struct {
	svc     *auth.Service
	db      *database.DB
	handler http.Handler
}

func newTestServer(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()
	sqlite := testinfra.NewSQLite(t, testinfra.DefaultPrefix)
	db, err := database.New(sqlite.Write, sqlite.Read,
		database.WithTablePrefix(testinfra.DefaultPrefix),
		database.WithTimestampColumns("created_at", "updated_at"),
		database.WithLogger(zerolog.Nop()),
	)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}

	svc := auth.NewService(db, auth.NewMemorySessionStore(auth.WithStoreClock(db.Now)), auth.NewThrottle(db, auth.DefaultThrottleConfig()), auth.Config{
		SessionTTL:     time.Hour,
		BcryptCost:     bcrypt.MinCost,
		PasswordPolicy: auth.DefaultPasswordPolicy(),
		Audit:          logging.NewAuthLoggerWithLogger(zerolog.Nop()),
	})
	sessions := auth.NewSessionMiddleware(svc, nil)
	return &testServer{
		svc:     svc,
		db:      db,
		handler: NewRouter(NewHandler(svc, sessions, db), cfg),
	}
}

func noLimits() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.DisableRateLimit = true
	return cfg
}

func (s *testServer) addUser(t *testing.T, username string, roleID int64, active bool) int64 {
	t.Helper()
	id, err := s.svc.Users().Add(context.Background(), auth.NewUser{
		Username: username,
		Password: testPassword,
		RoleID:   roleID,
		Active:   active,
	})
	if err != nil {
		t.Fatalf("add user %s: %v", username, err)
	}
	return id
}

// grantRole creates a role holding the given modules.
func (s *testServer) grantRole(t *testing.T, name string, modules ...string) int64 {
	t.Helper()
	ctx := context.Background()
	rid, err := s.svc.Roles().Add(ctx, name, name, 0)
	if err != nil {
		t.Fatalf("add role %s: %v", name, err)
	}
	for _, m := range modules {
		mid, err := s.svc.Modules().Add(ctx, m, m, 0)
		if err != nil {
			t.Fatalf("add module %s: %v", m, err)
		}
		if err := s.svc.Roles().EditModule(ctx, rid, mid, true); err != nil {
			t.Fatalf("grant %s: %v", m, err)
		}
	}
	return rid
}

// do sends a request, with body encoded as JSON when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login logs username in and returns its session cookie.
func (s *testServer) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: username, Password: testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultSessionMiddlewareConfig().CookieName {
			return c
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}
