package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"search/internal/adapter/memstore"
)

var (
	bucketWords     = []byte("words")
	bucketLocations = []byte("locations")
	bucketStats     = []byte("stats")
	keyStats        = []byte("snapshot")
)

// BoltStore writes index snapshots to a bbolt file. Snapshots are an export
// format; the tool never loads them back.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketWords, bucketLocations, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SnapshotStats describes a stored snapshot.
type SnapshotStats struct {
	Words     int       `json:"words"`
	Locations int       `json:"locations"`
	CreatedAt time.Time `json:"created_at"`
}

// PutSnapshot replaces the stored index with snapshot and totals. Each word
// gets a nested bucket keyed by location holding the JSON position list.
func (s *BoltStore) PutSnapshot(snapshot memstore.Snapshot, totals map[string]int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketWords, bucketLocations} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		words := tx.Bucket(bucketWords)
		for word, locations := range snapshot {
			wb, err := words.CreateBucket([]byte(word))
			if err != nil {
				return fmt.Errorf("failed to create bucket for %q: %w", word, err)
			}
			for location, positions := range locations {
				data, err := json.Marshal(positions)
				if err != nil {
					return err
				}
				if err := wb.Put([]byte(location), data); err != nil {
					return err
				}
			}
		}

		locs := tx.Bucket(bucketLocations)
		for location, total := range totals {
			if err := locs.Put([]byte(location), []byte(strconv.Itoa(total))); err != nil {
				return err
			}
		}

		stats := SnapshotStats{
			Words:     len(snapshot),
			Locations: len(totals),
			CreatedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

// WriteSnapshot writes snapshot and totals to a fresh bbolt file at path.
func WriteSnapshot(path string, snapshot memstore.Snapshot, totals map[string]int) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	s, err := NewBoltStore(path)
	if err != nil {
		return err
	}
	if err := s.PutSnapshot(snapshot, totals); err != nil {
		s.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return s.Close()
}
