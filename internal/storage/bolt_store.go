package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	ledgerBucket  = []byte("exported")
	archiveBucket = []byte("payloads")
)

// boltStore keeps the export ledger and the payload archive in one bbolt
// file. Ledger values are the big-endian unix second the entry expires.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	sweepEvery time.Duration
	sweepMu    sync.Mutex
	nextSweep  time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{ledgerBucket, archiveBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &boltStore{db: db, ttl: opts.ExportTTL, now: time.Now, sweepEvery: opts.CleanupInterval}
	s.nextSweep = s.now().Add(s.sweepEvery)
	return s, nil
}

func (b *boltStore) Close() error { return b.db.Close() }

func (b *boltStore) view(bucket []byte, fn func(*bolt.Bucket) error) error {
	return b.db.View(func(tx *bolt.Tx) error { return fn(tx.Bucket(bucket)) })
}

func (b *boltStore) update(bucket []byte, fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error { return fn(tx.Bucket(bucket)) })
}

// SeenCard reports whether id was marked within the TTL. Expired entries
// read as unseen and are removed by the next sweep.
func (b *boltStore) SeenCard(id string) (bool, error) {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return false, err
	}
	var seen bool
	err := b.view(ledgerBucket, func(bk *bolt.Bucket) error {
		until, ok := expiresAt(bk.Get([]byte(id)))
		seen = ok && until.After(now)
		return nil
	})
	return seen, err
}

// MarkCard records id as exported for the configured TTL.
func (b *boltStore) MarkCard(id string) error {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return err
	}
	until := binary.BigEndian.AppendUint64(nil, uint64(now.Add(b.ttl).Unix()))
	return b.update(ledgerBucket, func(bk *bolt.Bucket) error {
		return bk.Put([]byte(id), until)
	})
}

// sweep drops expired ledger entries at most once per sweep interval.
func (b *boltStore) sweep(now time.Time) error {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()
	if now.Before(b.nextSweep) {
		return nil
	}
	err := b.update(ledgerBucket, func(bk *bolt.Bucket) error {
		c := bk.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if until, ok := expiresAt(v); ok && until.After(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sweep export ledger: %w", err)
	}
	b.nextSweep = now.Add(b.sweepEvery)
	return nil
}

func expiresAt(v []byte) (time.Time, bool) {
	if len(v) != 8 {
		return time.Time{}, false
	}
	sec := int64(binary.BigEndian.Uint64(v))
	return time.Unix(sec, 0), sec > 0
}

// SavePayload archives payload under key, replacing any previous value.
func (b *boltStore) SavePayload(key string, payload []byte) error {
	if key = strings.TrimSpace(key); key == "" {
		return fmt.Errorf("payload key is required")
	}
	return b.update(archiveBucket, func(bk *bolt.Bucket) error {
		return bk.Put([]byte(key), payload)
	})
}

// LoadPayload returns a copy of the payload archived under key.
func (b *boltStore) LoadPayload(key string) ([]byte, error) {
	var out []byte
	err := b.view(archiveBucket, func(bk *bolt.Bucket) error {
		v := bk.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// PayloadKeys lists archived keys in byte order.
func (b *boltStore) PayloadKeys() ([]string, error) {
	var keys []string
	err := b.view(archiveBucket, func(bk *bolt.Bucket) error {
		return bk.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
