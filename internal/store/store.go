// Package store persists root search results across engine runs. It is
// analysis memory keyed by position hash, not game storage: no move
// sequences or game records ever hit disk.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Entry is one remembered search outcome for a position.
type Entry struct {
	Move    string    `json:"move"`
	Score   int       `json:"score"`
	Depth   int       `json:"depth"`
	Updated time.Time `json:"updated"`
}

// Store wraps a BadgerDB holding hash -> Entry records.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(hash uint64) []byte {
	k := make([]byte, 12)
	copy(k, "pos:")
	binary.BigEndian.PutUint64(k[4:], hash)
	return k
}

// Lookup fetches the entry for a position hash. A missing key is not an
// error, just a miss.
func (s *Store) Lookup(hash uint64) (Entry, bool, error) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("store: lookup %016x: %w", hash, err)
	}
	return e, true, nil
}

// Record stores the entry for a position hash, keeping an incumbent from
// a deeper search.
func (s *Store) Record(hash uint64, e Entry) error {
	e.Updated = time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(key(hash)); err == nil {
			var old Entry
			verr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			})
			if verr == nil && old.Depth > e.Depth {
				return nil
			}
		}
		val, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return txn.Set(key(hash), val)
	})
	if err != nil {
		return fmt.Errorf("store: record %016x: %w", hash, err)
	}
	return nil
}
