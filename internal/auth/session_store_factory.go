// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// SessionStoreType defines the type of session storage backend.
type SessionStoreType string

const (
	// SessionStoreMemory uses in-memory storage (default, not persistent).
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger uses BadgerDB for persistent session storage.
	SessionStoreBadger SessionStoreType = "badger"
)

// SessionStoreFactory creates session stores based on configuration and owns
// the BadgerDB handle when one is opened.
type SessionStoreFactory struct {
	storeType SessionStoreType
	db        *badger.DB
}

// NewSessionStoreFactory creates a new session store factory.
// If storeType is "badger", it opens a BadgerDB at path.
// If storeType is "memory" or empty, no database is opened.
func NewSessionStoreFactory(storeType SessionStoreType, path string) (*SessionStoreFactory, error) {
	factory := &SessionStoreFactory{storeType: storeType}

	switch storeType {
	case SessionStoreMemory, "":
		factory.storeType = SessionStoreMemory
	case SessionStoreBadger:
		opts := badger.DefaultOptions(path)
		opts.Logger = nil

		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for sessions: %w", err)
		}
		factory.db = db
	default:
		return nil, fmt.Errorf("unknown session store type %q", storeType)
	}

	return factory, nil
}

// Type returns the backend this factory creates.
func (f *SessionStoreFactory) Type() SessionStoreType {
	return f.storeType
}

// CreateStore creates a SessionStore based on the factory's configuration.
func (f *SessionStoreFactory) CreateStore(opts ...StoreOption) SessionStore {
	if f.db != nil {
		return NewBadgerSessionStore(f.db, opts...)
	}
	return NewMemorySessionStore(opts...)
}

// Close closes the underlying BadgerDB if one was opened.
func (f *SessionStoreFactory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
