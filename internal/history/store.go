// Package history persists canonical model snapshots so consecutive
// scans can detect surface changes.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"swagger-surface/internal/diff"
	"swagger-surface/internal/spec"
)

var bucketSnapshots = []byte("snapshots")

// Snapshot is one stored model version.
type Snapshot struct {
	ID      string      `json:"id"`
	TakenAt time.Time   `json:"taken_at"`
	Model   *spec.Model `json:"model"`
}

// Store is a BoltDB-backed snapshot store.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a new snapshot of the model.
func (s *Store) Save(m *spec.Model) (*Snapshot, error) {
	snapshot := &Snapshot{
		ID:      uuid.NewString(),
		TakenAt: time.Now().UTC(),
		Model:   m,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Keys sort chronologically so Latest can read the last cursor entry.
	key := []byte(fmt.Sprintf("%020d", snapshot.TakenAt.UnixNano()))

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put(key, data)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Latest returns the most recent snapshot, or nil when the store is empty.
func (s *Store) Latest() (*Snapshot, error) {
	var snapshot *Snapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		_, data := b.Cursor().Last()
		if data == nil {
			return nil
		}
		snapshot = &Snapshot{}
		return json.Unmarshal(data, snapshot)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Len returns the number of stored snapshots.
func (s *Store) Len() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Scan diffs the current model against the most recent snapshot. The
// first scan seeds the store and returns a nil change set; later scans
// store the current model only when the surface changed.
func (s *Store) Scan(current *spec.Model) (*diff.ChangeSet, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}
	if latest == nil {
		_, err := s.Save(current)
		return nil, err
	}

	cs := diff.Compare(latest.Model, current)
	if !cs.Empty() {
		if _, err := s.Save(current); err != nil {
			return nil, err
		}
	}
	return cs, nil
}
