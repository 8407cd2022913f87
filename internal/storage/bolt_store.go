package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	snapshotBucket   = "snapshots"
	expiryValueBytes = 8
)

var errBucketMissing = fmt.Errorf("%s bucket missing", snapshotBucket)

// boltStore is a Store backed by a single bbolt bucket of key -> big-endian expiry.
type boltStore struct {
	db              *bolt.DB
	now             func() time.Time
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	snapshotTTL     time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a bbolt-backed Store, creating parent directories as needed.
func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	s := &boltStore{
		db:              db,
		now:             time.Now,
		snapshotTTL:     opts.SnapshotTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	s.lastCleanup.Store(s.now().Unix())
	return s, nil
}

// Close closes the bbolt database.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenSnapshot reports whether key was marked and has not expired yet.
// Expired keys are deleted lazily.
func (b *boltStore) SeenSnapshot(key string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var live bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return errBucketMissing
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		if expiry, ok := decodeExpiry(value); ok && expiry.After(now) {
			live = true
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	return live, err
}

// MarkSnapshot records key with an expiry of now + TTL.
func (b *boltStore) MarkSnapshot(key string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(key), encodeExpiry(now.Add(b.snapshotTTL)))
	})
}

// maybeCleanupExpired sweeps expired keys at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return errBucketMissing
		}
		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
