package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/staffdir/internal/staff/domain"
	"github.com/haukened/staffdir/internal/staff/repos/denylist"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// boltStore implements denylist.Store using bbolt. Entry keys are canonical
// values; entry values are the source the value came from.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (denylist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open denylist db %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// Lookup returns the entry stored under value, if any.
func (s *boltStore) Lookup(value string) (domain.DenyEntry, bool, error) {
	var (
		entry domain.DenyEntry
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(value))
		if v == nil {
			return nil
		}
		found = true
		entry = domain.DenyEntry{Value: value, Source: string(v)}
		return nil
	})
	return entry, found, err
}

// RebuildAll replaces every entry and the metadata in a single transaction,
// so readers see either the old snapshot or the new one.
func (s *boltStore) RebuildAll(entries []domain.DenyEntry, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Value == "" {
				continue
			}
			if err := b.Put([]byte(e.Value), []byte(e.Source)); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, version)
		binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
		if err := meta.Put(keyVersion, vbuf); err != nil {
			return err
		}
		return meta.Put(keyUpdated, ubuf)
	})
}

func (s *boltStore) Stats() denylist.StoreStats {
	st := denylist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketEntries); b != nil {
			st.Entries = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}
