package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketSlots = []byte("slots")

// BoltSlot stores values in a single bucket of a bbolt database.
type BoltSlot struct {
	db   *bbolt.DB
	path string
}

var _ Slot = (*BoltSlot)(nil)

// OpenBoltSlot opens (or creates) the database file at path.
func OpenBoltSlot(path string) (*BoltSlot, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	path = os.Expand(path, os.Getenv)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSlots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltSlot{db: db, path: path}, nil
}

// Get copies the value out of the read transaction.
func (s *BoltSlot) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSlots).Get([]byte(key))
		if v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

func (s *BoltSlot) Set(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("invalid slot key %q", key)
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSlots).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *BoltSlot) Path() string { return s.path }

// Close releases the database file lock.
func (s *BoltSlot) Close() error {
	return s.db.Close()
}
