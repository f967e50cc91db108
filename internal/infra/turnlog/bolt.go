// Package turnlog persists served interactions for the metrics dashboard.
package turnlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

var turnsBucket = []byte("turns")

// BoltStore keeps the interaction log in a local bbolt file, the default
// backend for single-node deployments.
type BoltStore struct {
	db *bolt.DB
}

var _ rag.TurnLogger = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the log database.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create turn log directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open turn log: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(turnsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init turn log bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Append stores one turn keyed by timestamp and id for chronological scans.
func (s *BoltStore) Append(_ context.Context, turn rag.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := []byte(turn.TS.UTC().Format(time.RFC3339Nano) + "/" + turn.ID)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(turnsBucket).Put(key, payload)
	})
}

// List returns up to limit turns in chronological order.
func (s *BoltStore) List(_ context.Context, limit int) ([]rag.Turn, error) {
	var turns []rag.Turn
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(turnsBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if limit > 0 && len(turns) >= limit {
				break
			}
			var turn rag.Turn
			if err := json.Unmarshal(v, &turn); err != nil {
				return fmt.Errorf("unmarshal turn %s: %w", k, err)
			}
			turns = append(turns, turn)
		}
		return nil
	})
	return turns, err
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
