// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// HashPassword hashes password with bcrypt at cost. A cost outside bcrypt's
// range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares password with a stored bcrypt hash. A mismatch
// returns ErrPasswordMismatch; a malformed hash returns a wrapped bcrypt error.
func VerifyPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("verify password: %w", err)
	}
}

// PasswordPolicy defines requirements for new passwords. It is checked when a
// password is set, never at login.
type PasswordPolicy struct {
	// MinLength is the minimum number of characters.
	MinLength int

	// RequireLetter requires at least one letter.
	RequireLetter bool

	// RequireDigit requires at least one digit.
	RequireDigit bool

	// MaxConsecutiveRepeats is the maximum run of one character (0 = disabled).
	MaxConsecutiveRepeats int

	// ForbidCommonPasswords blocks well-known breached passwords.
	ForbidCommonPasswords bool

	// ForbidUsername rejects passwords containing the username.
	ForbidUsername bool
}

// DefaultPasswordPolicy returns the policy applied when none is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		RequireLetter:         true,
		RequireDigit:          true,
		MaxConsecutiveRepeats: 4,
		ForbidCommonPasswords: true,
		ForbidUsername:        true,
	}
}

// Validate returns nil if password satisfies the policy, otherwise an error
// wrapping ErrWeakPassword that lists every violated rule.
func (p PasswordPolicy) Validate(password, username string) error {
	var problems []string

	if n := len([]rune(password)); n < p.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters (got %d)", p.MinLength, n))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	hasLetter, hasDigit := analyzeCharClasses(password)
	if p.RequireLetter && !hasLetter {
		problems = append(problems, "must contain a letter")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "must contain a digit")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems, fmt.Sprintf("cannot repeat a character more than %d times in a row", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "is too common")
	}
	if p.ForbidUsername && username != "" &&
		strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		problems = append(problems, "cannot contain the username")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: password %s", ErrWeakPassword, strings.Join(problems, "; "))
	}
	return nil
}

func analyzeCharClasses(password string) (hasLetter, hasDigit bool) {
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter, hasDigit
}

// maxConsecutiveRepeats returns the longest run of one repeated character.
func maxConsecutiveRepeats(password string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

var commonPasswords = map[string]struct{}{
	"123456": {}, "12345678": {}, "123456789": {}, "1234567890": {},
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"p@ssw0rd": {}, "qwerty": {}, "qwerty123": {}, "abc123": {},
	"abcd1234": {}, "1q2w3e4r": {}, "1qaz2wsx": {}, "letmein": {},
	"letmein123": {}, "welcome": {}, "welcome1": {}, "welcome123": {},
	"admin": {}, "admin123": {}, "administrator": {}, "root123": {},
	"changeme": {}, "iloveyou": {}, "trustno1": {}, "sunshine": {},
	"football": {}, "baseball": {}, "test123": {}, "testing123": {},
	"warden": {}, "warden123": {},
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(password)]
	return ok
}
