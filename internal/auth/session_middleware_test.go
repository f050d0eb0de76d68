// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSessionMiddleware_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)
	mw := NewSessionMiddleware(env.svc, &SessionMiddlewareConfig{CookieName: "sid", HeaderName: "X-Session-ID"})

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantUser string
	}{
		{"no credentials", func(*http.Request) {}, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: sess.ID}) }, "ada"},
		{"header", func(r *http.Request) { r.Header.Set("X-Session-ID", sess.ID) }, "ada"},
		{"header wins over cookie", func(r *http.Request) {
			r.Header.Set("X-Session-ID", "bogus")
			r.AddCookie(&http.Cookie{Name: "sid", Value: sess.ID})
		}, ""},
		{"unknown session", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: "nope"}) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			var hadCache bool
			handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if s := SessionFromContext(r.Context()); s != nil {
					gotUser = s.Username
				}
				hadCache = PermissionCacheFromContext(r.Context()) != nil
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotUser != tt.wantUser {
				t.Errorf("session user = %q, want %q", gotUser, tt.wantUser)
			}
			if !hadCache {
				t.Error("Authenticate should install a permission cache")
			}
		})
	}
}

func TestSessionMiddleware_SlidingSession(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)
	mw := NewSessionMiddleware(env.svc, &SessionMiddlewareConfig{CookieName: "sid", SlidingSession: true})

	env.clock.Advance(30 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sess.ID})
	mw.Authenticate(http.HandlerFunc(okHandler)).ServeHTTP(httptest.NewRecorder(), req)

	env.clock.Advance(45 * time.Minute)
	if _, ok, _ := env.svc.CheckIsLogin(context.Background(), sess.ID); !ok {
		t.Error("sliding session should have been extended by the request")
	}
}

func TestSessionMiddleware_Guards(t *testing.T) {
	env := newTestEnv(t)
	ops := env.addGroup(t, "ops")
	rid := env.addRole(t, "operator", ops)
	mid := env.addModule(t, "report_view")
	_ = env.svc.Roles().EditModule(context.Background(), rid, mid, true)
	env.addUser(t, "ada", testPassword, rid)
	env.addUser(t, "bob", testPassword, 0)
	ada := env.login(t, "ada", testPassword)
	bob := env.login(t, "bob", testPassword)

	mw := NewSessionMiddleware(env.svc, nil)
	cookie := DefaultSessionMiddlewareConfig().CookieName

	guards := map[string]func(http.Handler) http.Handler{
		"login":  mw.RequireLogin,
		"module": mw.RequireModule("report_view"),
		"group":  mw.RequireGroup("ops"),
	}
	tests := []struct {
		guard   string
		session string
		want    int
	}{
		{"login", "", http.StatusUnauthorized},
		{"login", bob.ID, http.StatusOK},
		{"module", "", http.StatusUnauthorized},
		{"module", bob.ID, http.StatusForbidden},
		{"module", ada.ID, http.StatusOK},
		{"group", bob.ID, http.StatusForbidden},
		{"group", ada.ID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.guard+"/"+tt.session, func(t *testing.T) {
			handler := mw.Authenticate(guards[tt.guard](http.HandlerFunc(okHandler)))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != "" {
				req.AddCookie(&http.Cookie{Name: cookie, Value: tt.session})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionMiddleware_Cookies(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)
	mw := NewSessionMiddleware(env.svc, nil)

	rec := httptest.NewRecorder()
	mw.SetSessionCookie(rec, sess)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "warden_session" || c.Value != sess.ID || !c.HttpOnly || !c.Secure {
		t.Errorf("cookie = %+v", c)
	}
	if !c.Expires.Equal(sess.ExpiresAt.Truncate(time.Second)) {
		t.Errorf("Expires = %v, want %v", c.Expires, sess.ExpiresAt)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	if err := mw.DestroySession(context.Background(), rec, req); err != nil {
		t.Fatalf("DestroySession() error = %v", err)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("DestroySession() cookies = %+v, want a cleared cookie", cleared)
	}
	if _, ok, _ := env.svc.CheckIsLogin(context.Background(), sess.ID); ok {
		t.Error("session should be gone after DestroySession()")
	}
}
