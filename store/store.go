// Package store is a reference implementation of the persistence
// collaborator: a bbolt-backed file holding one bucket per entity kind,
// items keyed by big-endian id and stored as the same JSONL lines the
// finbase codec produces. Loading drives the mandatory
// load → resolve links → sort → rebuild maps → touch pass sequence.
package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/finbase/finbase"
)

// Store is a bbolt-backed dataset file.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the dataset file and its per-kind buckets.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	s := &Store{db: db}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, k := range finbase.Kinds() {
			if _, err := tx.CreateBucketIfNotExists([]byte(k.String())); err != nil {
				return fmt.Errorf("failed to create %v bucket: %w", k, err)
			}
		}
		return nil
	})
}

// SaveDataSet writes every non-deleted item, replacing each kind's bucket
// wholesale so deleted items do not linger.
func (s *Store) SaveDataSet(ds *finbase.DataSet) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, k := range finbase.Kinds() {
			name := []byte(k.String())
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to reset %v bucket: %w", k, err)
			}
			bucket, err := tx.CreateBucket(name)
			if err != nil {
				return fmt.Errorf("failed to create %v bucket: %w", k, err)
			}
			for it := range ds.List(k).Items() {
				if it.Deleted() {
					continue
				}
				var line bytes.Buffer
				if err := finbase.EncodeItem(&line, it); err != nil {
					return err
				}
				if err := bucket.Put(itob(it.ID()), line.Bytes()); err != nil {
					return fmt.Errorf("failed to save %v %d: %w", k, it.ID(), err)
				}
			}
		}
		return nil
	})
}

// LoadDataSet reads every bucket in load order and rebuilds a ready dataset.
func (s *Store) LoadDataSet(cipher finbase.Cipherer, defaultCurrency string) (*finbase.DataSet, error) {
	var lines bytes.Buffer
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, k := range finbase.Kinds() {
			bucket := tx.Bucket([]byte(k.String()))
			if bucket == nil {
				return fmt.Errorf("%v bucket not found", k)
			}
			if err := bucket.ForEach(func(_, v []byte) error {
				lines.Write(v)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finbase.DecodeDataSet(&lines, cipher, defaultCurrency)
}

// itob returns an 8-byte big-endian representation of an id, so bucket
// iteration is ordered by id.
func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}
