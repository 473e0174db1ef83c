// Package boltstore adapts go.etcd.io/bbolt, a single-file embedded ordered
// key-value store, behind the engine.Engine facade — this is the "sled"
// engine option.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"kvs/internal/engine"
)

var bucketName = []byte("kv")

// Store wraps a bbolt database behind engine.Engine.
type Store struct {
	db *bbolt.DB
}

var _ engine.Engine = (*Store)(nil)

// Open opens (or creates) a bbolt database file under dir, creating dir
// itself if it does not exist yet.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("boltstore: create directory %s: %w", dir, err)
	}
	db, err := bbolt.Open(filepath.Join(dir, "sled.db"), 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", dir, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Set implements engine.Engine.
func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

// Get implements engine.Engine.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			ok = true
			value = string(v)
		}
		return nil
	})
	return value, ok, err
}

// Remove implements engine.Engine. bbolt's Delete does not error on a
// missing key, so presence is checked inside the same transaction to
// surface engine.ErrKeyNotFound rather than a silent success.
func (s *Store) Remove(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return engine.ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}
