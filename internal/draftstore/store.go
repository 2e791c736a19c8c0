// Package draftstore persists unsent draft snapshots locally so an editing
// session survives crashes and network loss. It has no remote dependency.
package draftstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/pulsenews/authoring-api/internal/models"
)

var bucketDrafts = []byte("drafts")

// Store is the interface consumed by the authoring pipeline
type Store interface {
	Get(key string) (*models.DraftSnapshot, error)
	Set(key string, snapshot *models.DraftSnapshot) error
	Remove(key string) error
	Close() error
}

// BoltStore persists snapshots in a single bbolt bucket keyed by article
// id (or the new-article sentinel).
type BoltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// Open opens or creates the draft database at path. Snapshots older than
// ttl are treated as absent and removed lazily on load.
func Open(path string, ttl time.Duration, log zerolog.Logger) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("draftstore: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open draft store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDrafts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "draftstore").Logger(),
	}, nil
}

// Get returns the snapshot for key, or nil when absent or expired.
// Expired snapshots are deleted on the way out.
func (s *BoltStore) Get(key string) (*models.DraftSnapshot, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketDrafts).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var snapshot models.DraftSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// Corrupt entry: drop it and report a miss
		s.log.Warn().Str("key", key).Err(err).Msg("Discarding unreadable draft snapshot")
		s.Remove(key)
		return nil, nil
	}

	if snapshot.Age(s.now()) > s.ttl {
		s.log.Debug().Str("key", key).Msg("Draft snapshot expired, removing")
		if err := s.Remove(key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &snapshot, nil
}

// Set stores or overwrites the snapshot for key
func (s *BoltStore) Set(key string, snapshot *models.DraftSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDrafts).Put([]byte(key), raw)
	})
}

// Remove deletes the snapshot for key; missing keys are not an error
func (s *BoltStore) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDrafts).Delete([]byte(key))
	})
}

// Close closes the underlying database
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
