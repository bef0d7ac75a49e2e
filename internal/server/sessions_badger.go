package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const sessionKeyPrefix = "session:"

// BadgerSessionStore persists sessions in a badger directory so they survive
// restarts. Expiry is left to badger entry TTLs.
type BadgerSessionStore struct {
	db *badger.DB
}

func NewBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerSessionStore{db: db}, nil
}

func sessionKey(token string) []byte {
	return []byte(sessionKeyPrefix + token)
}

func (s *BadgerSessionStore) Create(_ context.Context, token string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(sessionKey(token), []byte(time.Now().UTC().Format(time.RFC3339))).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

func (s *BadgerSessionStore) Valid(_ context.Context, token string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(sessionKey(token))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerSessionStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
}

func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
