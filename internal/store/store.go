package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "game/"

var ErrNotFound = errors.New("game not found in store")

// Record is the archived form of a game. Replaying Moves from StartFEN
// rebuilds the game exactly.
type Record struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	FEN       string    `json:"fen"`
	Result    string    `json:"result,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store wraps BadgerDB for game archives.
type Store struct {
	db *badger.DB
}

// Open opens the archive in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame writes rec, replacing any earlier version.
func (s *Store) SaveGame(rec Record) error {
	if rec.ID == "" {
		return errors.New("record has no id")
	}
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.ID), data)
	})
}

func (s *Store) LoadGame(id string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// ListGames returns every archived game in key order.
func (s *Store) ListGames() ([]Record, error) {
	var recs []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

func (s *Store) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}
