// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/warden/internal/config"
)

const testPassword = "Tr0ub4dor-x"

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gid := env.addGroup(t, "ops")
	rid := env.addRole(t, "operator", gid)
	uid := env.addUser(t, "ada", testPassword, rid)

	sess, err := env.svc.Login(ctx, Credentials{Username: "ada", Password: testPassword, IP: "198.51.100.4"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if ResultFromError(err) != LoginSuccess {
		t.Errorf("ResultFromError(nil) = %v, want success", ResultFromError(err))
	}
	if !sess.LoggedIn {
		t.Error("session should be logged in")
	}
	if sess.UserID != uid || sess.Username != "ada" || sess.RoleID != rid {
		t.Errorf("session identity = (%d, %s, %d), want (%d, ada, %d)", sess.UserID, sess.Username, sess.RoleID, uid, rid)
	}
	if sess.GroupID != gid {
		t.Errorf("GroupID = %d, want role's group %d", sess.GroupID, gid)
	}
	if got := sess.Data["role_gid"]; got != "1" {
		t.Errorf("Data[role_gid] = %q, want 1", got)
	}
	if _, ok := sess.Data[passwordColumn]; ok {
		t.Error("session data must not carry the password hash")
	}
	if !sess.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, testNow.Add(time.Hour))
	}

	stored, ok, err := env.svc.CheckIsLogin(ctx, sess.ID)
	if err != nil || !ok {
		t.Fatalf("CheckIsLogin() = %v, %v", ok, err)
	}
	if stored.Username != "ada" {
		t.Errorf("stored Username = %s, want ada", stored.Username)
	}

	user, err := env.svc.Users().Get(ctx, uid)
	if err != nil {
		t.Fatalf("Users().Get() error = %v", err)
	}
	if user.LastIP != "198.51.100.4" {
		t.Errorf("LastIP = %q, want 198.51.100.4", user.LastIP)
	}
	if !user.LastLoginAt.Equal(testNow) {
		t.Errorf("LastLoginAt = %v, want %v", user.LastLoginAt, testNow)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)

	if _, err := env.svc.Users().Add(ctx, NewUser{Username: "bob", Password: testPassword}); err != nil {
		t.Fatalf("add inactive user: %v", err)
	}

	tests := []struct {
		name        string
		cred        Credentials
		wantErr     error
		wantResult  LoginResult
		wantCounted bool
	}{
		{
			name:        "unknown user",
			cred:        Credentials{Username: "nobody", Password: testPassword, IP: "192.0.2.1"},
			wantErr:     ErrUserNotFound,
			wantResult:  LoginUserNotFound,
			wantCounted: true,
		},
		{
			name:        "wrong password",
			cred:        Credentials{Username: "ada", Password: "wrong-passw0rd", IP: "192.0.2.2"},
			wantErr:     ErrPasswordMismatch,
			wantResult:  LoginPasswordMismatch,
			wantCounted: true,
		},
		{
			name:       "disabled user",
			cred:       Credentials{Username: "bob", Password: testPassword, IP: "192.0.2.3"},
			wantErr:    ErrUserDisabled,
			wantResult: LoginDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := env.svc.Login(ctx, tt.cred)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if sess != nil {
				t.Error("failed login should not return a session")
			}
			if got := ResultFromError(err); got != tt.wantResult {
				t.Errorf("ResultFromError() = %v, want %v", got, tt.wantResult)
			}

			status, err := env.svc.Throttle().Status(ctx, tt.cred.IP, tt.cred.Username)
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if counted := status != NoRecord; counted != tt.wantCounted {
				t.Errorf("failure counted = %v, want %v", counted, tt.wantCounted)
			}
		})
	}

	if n := env.store.Len(); n != 0 {
		t.Errorf("store holds %d sessions after failed logins, want 0", n)
	}
}

func TestLogin_LockoutIgnoresCorrectPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)

	cred := Credentials{Username: "ada", Password: "wrong-passw0rd", IP: "192.0.2.10"}
	for i := 0; i < 5; i++ {
		if _, err := env.svc.Login(ctx, cred); !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("attempt %d: error = %v, want ErrPasswordMismatch", i+1, err)
		}
	}

	cred.Password = testPassword
	_, err := env.svc.Login(ctx, cred)
	if !errors.Is(err, ErrLockedOut) {
		t.Fatalf("Login() after 5 failures error = %v, want ErrLockedOut", err)
	}
	if ResultFromError(err) != LoginLockedOut {
		t.Errorf("ResultFromError() = %v, want locked_out", ResultFromError(err))
	}

	// A different IP is a different pair.
	if _, err := env.svc.Login(ctx, Credentials{Username: "ada", Password: testPassword, IP: "192.0.2.11"}); err != nil {
		t.Errorf("Login() from another IP error = %v", err)
	}

	// After the window the next failure starts a new record.
	env.clock.Advance(31 * time.Minute)
	cred.Password = "wrong-passw0rd"
	if _, err := env.svc.Login(ctx, cred); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Login() after window error = %v, want ErrPasswordMismatch", err)
	}
	rec, err := env.svc.Throttle().Get(ctx, cred.IP, cred.Username)
	if err != nil {
		t.Fatalf("Throttle().Get() error = %v", err)
	}
	if rec.Count != 1 {
		t.Errorf("count after window = %d, want 1", rec.Count)
	}
}

func TestLogin_SuccessReleasesThrottle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)

	ip := "192.0.2.20"
	if _, err := env.svc.Login(ctx, Credentials{Username: "ada", Password: "nope-n0pe", IP: ip}); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Login() error = %v", err)
	}
	env.login(t, "ada", testPassword) // different IP, record stays
	if status, _ := env.svc.Throttle().Status(ctx, ip, "ada"); status != RecordedNotLocked {
		t.Fatalf("Status() = %v, want recorded", status)
	}

	if _, err := env.svc.Login(ctx, Credentials{Username: "ada", Password: testPassword, IP: ip}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if status, _ := env.svc.Throttle().Status(ctx, ip, "ada"); status != NoRecord {
		t.Errorf("Status() after success = %v, want none", status)
	}
}

func TestLogin_Force(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "ada", testPassword, 0)

	sess, err := env.svc.Login(context.Background(), Credentials{Username: "ada", IP: "192.0.2.30", Force: true})
	if err != nil {
		t.Fatalf("forced Login() error = %v", err)
	}
	if !sess.LoggedIn {
		t.Error("forced login should produce a logged in session")
	}

	_, err = env.svc.Login(context.Background(), Credentials{Username: "ghost", IP: "192.0.2.30", Force: true})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("forced Login() of unknown user error = %v, want ErrUserNotFound", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)

	if err := env.svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok, err := env.svc.CheckIsLogin(ctx, sess.ID); ok || err != nil {
		t.Errorf("CheckIsLogin() after logout = %v, %v; want false, nil", ok, err)
	}
	if err := env.svc.Logout(ctx, sess.ID); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	env := newTestEnv(t)
	uid := env.addUser(t, "ada", testPassword, 0)
	env.login(t, "ada", testPassword)
	env.login(t, "ada", testPassword)

	n, err := env.svc.LogoutAll(context.Background(), uid)
	if err != nil {
		t.Fatalf("LogoutAll() error = %v", err)
	}
	if n != 2 {
		t.Errorf("LogoutAll() = %d, want 2", n)
	}
}

func TestCheckIsLogin_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)

	env.clock.Advance(2 * time.Hour)
	if _, ok, err := env.svc.CheckIsLogin(ctx, sess.ID); ok || err != nil {
		t.Errorf("CheckIsLogin() on expired session = %v, %v; want false, nil", ok, err)
	}
	if _, ok, _ := env.svc.CheckIsLogin(ctx, ""); ok {
		t.Error("empty session id should not be logged in")
	}
}

func TestTouch_ExtendsExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)

	env.clock.Advance(50 * time.Minute)
	if err := env.svc.Touch(ctx, sess); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	env.clock.Advance(50 * time.Minute)
	if _, ok, err := env.svc.CheckIsLogin(ctx, sess.ID); !ok || err != nil {
		t.Errorf("CheckIsLogin() after touch = %v, %v; want true", ok, err)
	}
}

func TestCheckGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ops := env.addGroup(t, "ops")
	env.addGroup(t, "finance")
	rid := env.addRole(t, "operator", ops)
	env.addUser(t, "ada", testPassword, rid)
	env.addUser(t, "nomad", testPassword, 0)
	sess := env.login(t, "ada", testPassword)
	orphan := env.login(t, "nomad", testPassword)

	tests := []struct {
		name  string
		sess  *Session
		names []string
		want  bool
	}{
		{"member", sess, []string{"ops"}, true},
		{"any of several", sess, []string{"finance", "ops"}, true},
		{"not member", sess, []string{"finance"}, false},
		{"no names", sess, nil, false},
		{"no role", orphan, []string{"ops"}, false},
		{"nil session", nil, []string{"ops"}, false},
		{"root bypass", &Session{LoggedIn: true, IsRoot: true}, []string{"finance"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.CheckGroup(ctx, tt.sess, tt.names...)
			if err != nil {
				t.Fatalf("CheckGroup() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckGroup(%v) = %v, want %v", tt.names, got, tt.want)
			}
			err = env.svc.RequireGroup(ctx, tt.sess, tt.names...)
			if tt.want != (err == nil) {
				t.Errorf("RequireGroup() error = %v, want denied = %v", err, !tt.want)
			}
			if err != nil && !errors.Is(err, ErrPermissionDenied) {
				t.Errorf("RequireGroup() error = %v, want ErrPermissionDenied", err)
			}
		})
	}
}

func TestCheckModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rid := env.addRole(t, "editor", 0)
	edit := env.addModule(t, "article_edit")
	env.addModule(t, "account_delete")
	if _, err := env.svc.Roles().SetModules(ctx, rid, []int64{edit}, true); err != nil {
		t.Fatalf("SetModules() error = %v", err)
	}
	env.addUser(t, "ada", testPassword, rid)
	sess := env.login(t, "ada", testPassword)
	root := &Session{LoggedIn: true, IsRoot: true, RoleID: 999}

	tests := []struct {
		name   string
		sess   *Session
		module string
		want   bool
	}{
		{"linked", sess, "article_edit", true},
		{"not linked", sess, "account_delete", false},
		{"unknown", sess, "missing", false},
		{"logged out", &Session{RoleID: rid}, "article_edit", false},
		{"root bypass", root, "account_delete", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.CheckModule(ctx, tt.sess, tt.module)
			if err != nil {
				t.Fatalf("CheckModule() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckModule(%s) = %v, want %v", tt.module, got, tt.want)
			}
			if err := env.svc.RequireModule(ctx, tt.sess, tt.module); tt.want != (err == nil) {
				t.Errorf("RequireModule() error = %v", err)
			}
		})
	}
}

func TestCheckModule_CachedPerRequest(t *testing.T) {
	env := newTestEnv(t)
	rid := env.addRole(t, "editor", 0)
	mid := env.addModule(t, "article_edit")
	env.addUser(t, "ada", testPassword, rid)
	sess := env.login(t, "ada", testPassword)

	ctx := WithPermissionCache(context.Background(), NewPermissionCache())
	if ok, _ := env.svc.CheckModule(ctx, sess, "article_edit"); ok {
		t.Fatal("module should not be granted before linking")
	}

	if err := env.svc.Roles().EditModule(ctx, rid, mid, true); err != nil {
		t.Fatalf("EditModule() error = %v", err)
	}

	if ok, _ := env.svc.CheckModule(ctx, sess, "article_edit"); ok {
		t.Error("same request should reuse the cached module set")
	}
	if ok, _ := env.svc.CheckModule(context.Background(), sess, "article_edit"); !ok {
		t.Error("a context without a cache should see the new link")
	}

	PermissionCacheFromContext(ctx).Invalidate(rid)
	if ok, _ := env.svc.CheckModule(ctx, sess, "article_edit"); !ok {
		t.Error("invalidated cache should reload the module set")
	}
}

func TestUserData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "ada", testPassword, 0)
	sess := env.login(t, "ada", testPassword)

	if v, ok := env.svc.GetUserData(sess, "username"); !ok || v != "ada" {
		t.Errorf("GetUserData(username) = %q, %v", v, ok)
	}
	if _, ok := env.svc.GetUserData(sess, "missing"); ok {
		t.Error("missing key should report false")
	}

	if err := env.svc.EditUserData(ctx, sess, "theme", "dark"); err != nil {
		t.Fatalf("EditUserData() error = %v", err)
	}
	if err := env.svc.EditUserData(ctx, sess, "username", "countess"); err != nil {
		t.Fatalf("EditUserData(username) error = %v", err)
	}

	stored, _, err := env.svc.CheckIsLogin(ctx, sess.ID)
	if err != nil {
		t.Fatalf("CheckIsLogin() error = %v", err)
	}
	if stored.Data["theme"] != "dark" {
		t.Errorf("stored theme = %q, want dark", stored.Data["theme"])
	}
	if stored.Username != "countess" {
		t.Errorf("stored Username = %q, want countess", stored.Username)
	}

	data := env.svc.UserData(stored)
	data["theme"] = "light"
	if stored.Data["theme"] != "dark" {
		t.Error("UserData should return a copy")
	}

	if err := env.svc.EditUserData(ctx, nil, "k", "v"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("EditUserData(nil) error = %v, want ErrSessionNotFound", err)
	}
}

func TestConfigFromSecurity(t *testing.T) {
	sec := &config.SecurityConfig{
		SessionTimeout:     2 * time.Hour,
		BcryptCost:         11,
		PasswordMinLength:  10,
		LoginMaxAttempts:   3,
		LoginLockoutWindow: 10 * time.Minute,
	}

	cfg := ConfigFromSecurity(sec)
	if cfg.SessionTTL != 2*time.Hour || cfg.BcryptCost != 11 || cfg.PasswordPolicy.MinLength != 10 {
		t.Errorf("ConfigFromSecurity() = %+v", cfg)
	}
	if !cfg.PasswordPolicy.RequireDigit {
		t.Error("ConfigFromSecurity() should keep the default policy rules")
	}

	tc := ThrottleConfigFromSecurity(sec)
	if tc.MaxAttempts != 3 || tc.Window != 10*time.Minute {
		t.Errorf("ThrottleConfigFromSecurity() = %+v", tc)
	}
}

func TestLogin_DataIncludesExtraColumns(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "ada", testPassword, 0)

	sess := env.login(t, "ada", testPassword)
	if sess.Data["last_ip"] != "203.0.113.7" {
		t.Errorf("Data[last_ip] = %q, want the login IP", sess.Data["last_ip"])
	}
	if sess.Data["is_root"] != FlagNo {
		t.Errorf("Data[is_root] = %q, want N", sess.Data["is_root"])
	}
}

func TestEditUserData_FailedUpdateLeavesSession(t *testing.T) {
	env := newTestEnv(t)
	sess := newTestSession(t, 1, time.Hour)

	err := env.svc.EditUserData(context.Background(), sess, "username", "countess")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("EditUserData() error = %v, want ErrSessionNotFound", err)
	}
	if sess.Username != "ada" {
		t.Errorf("Username = %q, want ada", sess.Username)
	}
	if _, ok := sess.Data["username"]; ok || sess.Data["theme"] != "dark" {
		t.Errorf("Data = %v, want it untouched", sess.Data)
	}
}
