// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"errors"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists bookmarks in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the badger database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, mediaID string) (float64, error) {
	var seconds float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(bookmarkKey(mediaID)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, err := strconv.ParseFloat(string(val), 64)
			if err != nil {
				return err
			}
			seconds = parsed
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return seconds, nil
}

func (s *BadgerStore) Put(_ context.Context, mediaID string, seconds float64) error {
	val := strconv.FormatFloat(seconds, 'f', -1, 64)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(bookmarkKey(mediaID)), []byte(val))
	})
}

func (s *BadgerStore) Delete(_ context.Context, mediaID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(bookmarkKey(mediaID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
