// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// BadgerSessionStore implements SessionStore using BadgerDB, so sessions
// survive restarts. Each session is stored as JSON under session:<id>, with a
// session_user:<uid>:<id> index for per-user lookups.
type BadgerSessionStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerSessionStore creates a session store on an open BadgerDB.
// The caller owns db and closes it.
func NewBadgerSessionStore(db *badger.DB, opts ...StoreOption) *BadgerSessionStore {
	o := applyStoreOptions(opts)
	return &BadgerSessionStore{db: db, now: o.now}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func userIndexPrefix(userID int64) []byte {
	return []byte(sessionUserKeyPrefix + strconv.FormatInt(userID, 10) + ":")
}

func userIndexKey(userID int64, id string) []byte {
	return append(userIndexPrefix(userID), id...)
}

// Create stores a new session.
func (s *BadgerSessionStore) Create(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey(session.ID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		if err := txn.Set(userIndexKey(session.UserID, session.ID), []byte(session.ID)); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		return nil
	})
}

// readSession loads a session inside txn without checking expiry.
func readSession(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Get retrieves a session by ID.
func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = readSession(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpiredAt(s.now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Update replaces an existing session.
func (s *BadgerSessionStore) Update(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := readSession(txn, session.ID); err != nil {
			return err
		}
		return txn.Set(sessionKey(session.ID), data)
	})
}

// Delete removes a session and its user index entry.
func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := readSession(txn, id)
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return deleteSessionKeys(txn, session)
	})
}

func deleteSessionKeys(txn *badger.Txn, session *Session) error {
	if err := txn.Delete(sessionKey(session.ID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := txn.Delete(userIndexKey(session.UserID, session.ID)); err != nil {
		return fmt.Errorf("delete user mapping: %w", err)
	}
	return nil
}

// userSessionIDs lists the session IDs indexed under userID.
func (s *BadgerSessionStore) userSessionIDs(userID int64) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := userIndexPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return ids, nil
}

// DeleteByUserID removes all sessions for a user.
func (s *BadgerSessionStore) DeleteByUserID(ctx context.Context, userID int64) (int, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// GetByUserID returns all unexpired sessions for a user.
func (s *BadgerSessionStore) GetByUserID(_ context.Context, userID int64) ([]*Session, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var sessions []*Session
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			session, err := readSession(txn, id)
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !session.IsExpiredAt(now) {
				sessions = append(sessions, session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *BadgerSessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := readSession(txn, id)
		if err != nil {
			return err
		}

		session.LastAccessedAt = s.now()
		session.ExpiresAt = newExpiry

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return txn.Set(sessionKey(id), data)
	})
}

// CleanupExpired removes all expired sessions.
func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	now := s.now()
	var expired []*Session

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var session Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}
			if session.IsExpiredAt(now) {
				expired = append(expired, &session)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	count := 0
	for _, session := range expired {
		if err := s.db.Update(func(txn *badger.Txn) error {
			return deleteSessionKeys(txn, session)
		}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Count returns the total number of stored sessions, expired or not.
func (s *BadgerSessionStore) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
