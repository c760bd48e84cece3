// Package prefs persists user preferences in a small on-disk Badger store.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

const locationKey = "location"

// Location is the saved home-location preference. City is never empty
// once saved; callers must validate before Save.
type Location struct {
	City    string `json:"location"`
	Country string `json:"country,omitempty"`
}

type Store struct {
	db *badger.DB
}

// DefaultDir returns the per-user data directory for the store.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "scout", "prefs"), nil
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating prefs dir: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening prefs store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Location reads the saved location. Returns (nil, nil) when none has
// been saved yet.
func (s *Store) Location() (*Location, error) {
	var loc Location
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(locationKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &loc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading location: %w", err)
	}
	if loc.City == "" {
		// Tolerate a corrupt or legacy record; treat as unset.
		return nil, nil
	}
	return &loc, nil
}

// SaveLocation persists the location. An empty city is rejected so the
// store never holds an unusable preference.
func (s *Store) SaveLocation(loc Location) error {
	loc.City = strings.TrimSpace(loc.City)
	loc.Country = strings.TrimSpace(loc.Country)
	if loc.City == "" {
		return fmt.Errorf("location must not be empty")
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(locationKey), data)
	})
	if err != nil {
		return fmt.Errorf("saving location: %w", err)
	}
	return nil
}
