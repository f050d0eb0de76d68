// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/database/query"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// Config holds the Service settings.
type Config struct {
	// SessionTTL is how long a session lives after login or its last touch.
	SessionTTL time.Duration

	// BcryptCost is used when hashing new passwords.
	BcryptCost int

	// PasswordPolicy is checked whenever a password is set.
	PasswordPolicy PasswordPolicy

	// Audit receives login and permission events. Nil uses the global logger.
	Audit *logging.AuthLogger
}

// DefaultConfig returns a 24 hour session and bcrypt cost 12.
func DefaultConfig() Config {
	return Config{
		SessionTTL:     24 * time.Hour,
		BcryptCost:     12,
		PasswordPolicy: DefaultPasswordPolicy(),
	}
}

// ConfigFromSecurity builds a Config from the security section.
func ConfigFromSecurity(sec *config.SecurityConfig) Config {
	cfg := DefaultConfig()
	cfg.SessionTTL = sec.SessionTimeout
	cfg.BcryptCost = sec.BcryptCost
	cfg.PasswordPolicy.MinLength = sec.PasswordMinLength
	return cfg
}

// ThrottleConfigFromSecurity builds a ThrottleConfig from the security section.
func ThrottleConfigFromSecurity(sec *config.SecurityConfig) ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts: sec.LoginMaxAttempts,
		Window:      sec.LoginLockoutWindow,
	}
}

// Credentials is one login attempt.
type Credentials struct {
	Username string
	Password string
	IP       string

	// Force skips the password check. The throttle and status checks still apply.
	Force bool
}

// Service authenticates users, manages their sessions and answers group and
// module permission checks. A Service is safe for concurrent use.
type Service struct {
	db       *database.DB
	store    SessionStore
	throttle *Throttle
	cfg      Config
	audit    *logging.AuthLogger

	t       tables
	users   *Users
	roles   *Roles
	modules *Modules
	groups  *Groups
}

// NewService creates a Service. A nil throttle uses DefaultThrottleConfig.
func NewService(db *database.DB, store SessionStore, throttle *Throttle, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.PasswordPolicy == (PasswordPolicy{}) {
		cfg.PasswordPolicy = def.PasswordPolicy
	}
	if throttle == nil {
		throttle = NewThrottle(db, DefaultThrottleConfig())
	}
	audit := cfg.Audit
	if audit == nil {
		audit = logging.NewAuthLogger()
	}

	t := newTables(db)
	return &Service{
		db:       db,
		store:    store,
		throttle: throttle,
		cfg:      cfg,
		audit:    audit,
		t:        t,
		users:    &Users{table: t.users, bcryptCost: cfg.BcryptCost, policy: cfg.PasswordPolicy},
		roles:    &Roles{t: t},
		modules:  &Modules{t: t},
		groups:   &Groups{t: t},
	}
}

// Users returns the user directory.
func (s *Service) Users() *Users { return s.users }

// Roles returns the role directory.
func (s *Service) Roles() *Roles { return s.roles }

// Modules returns the module directory.
func (s *Service) Modules() *Modules { return s.modules }

// Groups returns the group directory.
func (s *Service) Groups() *Groups { return s.groups }

// Throttle returns the failed-login throttle.
func (s *Service) Throttle() *Throttle { return s.throttle }

// Store returns the session store.
func (s *Service) Store() SessionStore { return s.store }

// Login authenticates cred and starts a session.
//
// The throttle is consulted first; a locked pair returns ErrLockedOut without
// reading the user. An unknown username or a wrong password counts as a
// failure and returns ErrUserNotFound or ErrPasswordMismatch. An inactive
// user returns ErrUserDisabled and is not counted. Use ResultFromError to
// classify the error.
func (s *Service) Login(ctx context.Context, cred Credentials) (*Session, error) {
	status, err := s.throttle.Status(ctx, cred.IP, cred.Username)
	if err != nil {
		return nil, s.loginError(ctx, cred, err)
	}
	if status == Locked {
		s.audit.LoginFailed(ctx, cred.Username, cred.IP, LoginLockedOut.String())
		metrics.RecordLogin(LoginLockedOut.String())
		return nil, ErrLockedOut
	}

	row, err := s.t.users.SelectOne(ctx, query.Where().Eq("username", cred.Username), nil)
	if errors.Is(err, database.ErrNotFound) {
		return nil, s.rejectLogin(ctx, cred, ErrUserNotFound)
	}
	if err != nil {
		return nil, s.loginError(ctx, cred, err)
	}

	if !cred.Force {
		if err := VerifyPassword(row.String(passwordColumn), cred.Password); err != nil {
			if errors.Is(err, ErrPasswordMismatch) {
				return nil, s.rejectLogin(ctx, cred, ErrPasswordMismatch)
			}
			return nil, s.loginError(ctx, cred, err)
		}
	}

	if row.String("status") != FlagYes {
		s.audit.LoginFailed(ctx, cred.Username, cred.IP, LoginDisabled.String())
		metrics.RecordLogin(LoginDisabled.String())
		return nil, ErrUserDisabled
	}

	sess, err := s.startSession(ctx, row, cred, status)
	if err != nil {
		return nil, s.loginError(ctx, cred, err)
	}

	s.audit.LoginSucceeded(ctx, sess.Username, cred.IP, sess.ID, cred.Force)
	metrics.RecordLogin(LoginSuccess.String())
	return sess, nil
}

// rejectLogin counts a failed attempt and returns cause. A throttle failure
// is joined to cause so the login result stays classifiable.
func (s *Service) rejectLogin(ctx context.Context, cred Credentials, cause error) error {
	result := ResultFromError(cause)
	s.audit.LoginFailed(ctx, cred.Username, cred.IP, result.String())
	metrics.RecordLogin(result.String())

	count, err := s.throttle.RecordFailure(ctx, cred.IP, cred.Username)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("ip", cred.IP).Msg("Failed to record failed login")
		return errors.Join(cause, err)
	}
	if count >= int64(s.throttle.Config().MaxAttempts) {
		s.audit.LockedOut(ctx, cred.Username, cred.IP, count)
	}
	return cause
}

func (s *Service) loginError(ctx context.Context, cred Credentials, err error) error {
	metrics.RecordLogin(LoginError.String())
	logging.Ctx(ctx).Error().Err(err).
		Str("username", logging.SanitizeUsername(cred.Username)).
		Str("ip", cred.IP).
		Msg("Login failed")
	return fmt.Errorf("login: %w", err)
}

// startSession records the login on the user row, clears the throttle and
// stores a new session.
func (s *Service) startSession(ctx context.Context, row database.Row, cred Credentials, status ThrottleStatus) (*Session, error) {
	now := s.db.Now()
	user := userFromRow(row)

	if err := s.users.recordLogin(ctx, user.ID, cred.IP, now); err != nil {
		return nil, err
	}
	if status != NoRecord {
		if err := s.throttle.Release(ctx, cred.IP, cred.Username); err != nil {
			return nil, err
		}
	}

	gid, err := s.roles.groupID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("resolve role group: %w", err)
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	data := make(map[string]string, len(row)+1)
	for col := range row {
		if col != passwordColumn {
			data[col] = row.String(col)
		}
	}
	data["last_ip"] = cred.IP
	data["last_login_at"] = now.UTC().Format(time.RFC3339)
	data["role_gid"] = strconv.FormatInt(gid, 10)

	sess := &Session{
		ID:             id,
		LoggedIn:       true,
		UserID:         user.ID,
		Username:       user.Username,
		RoleID:         user.RoleID,
		GroupID:        gid,
		IsRoot:         user.IsRoot,
		LastIP:         cred.IP,
		LastLoginAt:    now,
		Data:           data,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		LastAccessedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Logout destroys the session. Unknown IDs are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.audit.LoggedOut(ctx, sessionID)
	return nil
}

// LogoutAll destroys every session of userID and returns how many.
func (s *Service) LogoutAll(ctx context.Context, userID int64) (int, error) {
	n, err := s.store.DeleteByUserID(ctx, userID)
	if err != nil {
		return n, fmt.Errorf("logout all: %w", err)
	}
	return n, nil
}

// CheckIsLogin returns the session for sessionID and whether it is logged in.
// Missing and expired sessions report false without an error.
func (s *Service) CheckIsLogin(ctx context.Context, sessionID string) (*Session, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	sess, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("check login: %w", err)
	}
	if !sess.LoggedIn {
		return sess, false, nil
	}
	return sess, true, nil
}

// Touch extends the session's expiry by the configured TTL.
func (s *Service) Touch(ctx context.Context, sess *Session) error {
	now := s.db.Now()
	if err := s.store.Touch(ctx, sess.ID, now.Add(s.cfg.SessionTTL)); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	sess.LastAccessedAt = now
	sess.ExpiresAt = now.Add(s.cfg.SessionTTL)
	return nil
}

// CheckGroup reports whether the session's role belongs to a group named one
// of names. Root users always pass.
func (s *Service) CheckGroup(ctx context.Context, sess *Session, names ...string) (bool, error) {
	if sess == nil || !sess.LoggedIn {
		metrics.RecordPermissionCheck("group", "denied")
		return false, nil
	}
	if sess.IsRoot {
		metrics.RecordPermissionCheck("group", "root")
		return true, nil
	}

	ok, err := s.groups.hasName(ctx, sess.GroupID, names)
	if err != nil {
		metrics.RecordPermissionCheck("group", "error")
		return false, fmt.Errorf("check group: %w", err)
	}
	metrics.RecordPermissionCheck("group", outcome(ok))
	return ok, nil
}

// RequireGroup is CheckGroup returning ErrPermissionDenied instead of false.
func (s *Service) RequireGroup(ctx context.Context, sess *Session, names ...string) error {
	ok, err := s.CheckGroup(ctx, sess, names...)
	if err != nil {
		return err
	}
	if !ok {
		s.audit.PermissionDenied(ctx, usernameOf(sess), "group", strings.Join(names, ","))
		return fmt.Errorf("%w: group %s", ErrPermissionDenied, strings.Join(names, ","))
	}
	return nil
}

// CheckModule reports whether the session's role is linked to the module
// called name. Root users always pass. The role's module set is loaded once
// per PermissionCache carried by ctx.
func (s *Service) CheckModule(ctx context.Context, sess *Session, name string) (bool, error) {
	if sess == nil || !sess.LoggedIn {
		metrics.RecordPermissionCheck("module", "denied")
		return false, nil
	}
	if sess.IsRoot {
		metrics.RecordPermissionCheck("module", "root")
		return true, nil
	}

	set, err := PermissionCacheFromContext(ctx).moduleSet(ctx, sess.RoleID, s.roles.ModuleNames)
	if err != nil {
		metrics.RecordPermissionCheck("module", "error")
		return false, fmt.Errorf("check module: %w", err)
	}
	_, ok := set[name]
	metrics.RecordPermissionCheck("module", outcome(ok))
	return ok, nil
}

// RequireModule is CheckModule returning ErrPermissionDenied instead of false.
func (s *Service) RequireModule(ctx context.Context, sess *Session, name string) error {
	ok, err := s.CheckModule(ctx, sess, name)
	if err != nil {
		return err
	}
	if !ok {
		s.audit.PermissionDenied(ctx, usernameOf(sess), "module", name)
		return fmt.Errorf("%w: module %s", ErrPermissionDenied, name)
	}
	return nil
}

// GetUserData returns the session's value for key.
func (s *Service) GetUserData(sess *Session, key string) (string, bool) {
	if sess == nil || sess.Data == nil {
		return "", false
	}
	v, ok := sess.Data[key]
	return v, ok
}

// UserData returns a copy of all of the session's user data.
func (s *Service) UserData(sess *Session) map[string]string {
	if sess == nil {
		return nil
	}
	return maps.Clone(sess.Data)
}

// EditUserData sets key in the session's user data and persists the session.
// Setting "username" also renames the session. sess is left unchanged when
// the store rejects the update.
func (s *Service) EditUserData(ctx context.Context, sess *Session, key, value string) error {
	if sess == nil {
		return ErrSessionNotFound
	}
	next := sess.Clone()
	if next.Data == nil {
		next.Data = make(map[string]string)
	}
	next.Data[key] = value
	if key == "username" {
		next.Username = value
	}
	if err := s.store.Update(ctx, next); err != nil {
		return fmt.Errorf("edit user data: %w", err)
	}
	sess.Data = next.Data
	sess.Username = next.Username
	return nil
}

func outcome(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}

func usernameOf(sess *Session) string {
	if sess == nil {
		return ""
	}
	return sess.Username
}
