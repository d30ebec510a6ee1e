// Package bolt implements the remote store contract on an embedded bbolt
// file, for single-node deployments and local development.
package bolt

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/settings"
	"github.com/huynhanx03/item-store/pkg/utils"
)

const (
	defaultBucket  = "items"
	defaultTimeout = 1000 // millis
	headerSize     = 8
)

var ErrCorruptRecord = errors.New("bolt: record shorter than header")

// Store keeps each value behind an 8 byte big endian header holding its
// absolute expiry in unix milliseconds, 0 meaning none. Expired records are
// treated as absent on read and removed by PurgeExpired.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

var _ cache.RemoteStore = (*Store)(nil)

// Open initializes or opens a Store at cfg.Path.
func Open(cfg *settings.Bolt) (*Store, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = defaultBucket
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: utils.ToDurationMs(cfg.Timeout)})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", cfg.Path)
	}
	bucket := []byte(cfg.Bucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &Store{db: db, bucket: bucket, now: time.Now}, nil
}

// MSet writes all values in one transaction.
func (s *Store) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) ([]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expiresAt := s.expiresAt(ttl)
	results := make([]bool, 0, len(values))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for key, value := range values {
			if err := b.Put([]byte(key), encode(expiresAt, value)); err != nil {
				return err
			}
			results = append(results, true)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "bolt mset")
	}
	return results, nil
}

// Expire rewrites the header of live keys. Absent or expired keys report false.
func (s *Store) Expire(ctx context.Context, keys []string, ttl time.Duration) ([]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	expiresAt := s.expiresAt(ttl)
	results := make([]bool, len(keys))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, key := range keys {
			raw := b.Get([]byte(key))
			if raw == nil || len(raw) < headerSize || expired(raw, now) {
				continue
			}
			if err := b.Put([]byte(key), encode(expiresAt, raw[headerSize:])); err != nil {
				return err
			}
			results[i] = true
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "bolt expire")
	}
	return results, nil
}

// MGet returns live values aligned with keys, nil for absent ones.
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	values := make([][]byte, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, key := range keys {
			raw := b.Get([]byte(key))
			if raw == nil || len(raw) < headerSize || expired(raw, now) {
				continue
			}
			// bolt memory is only valid inside the transaction
			values[i] = append([]byte(nil), raw[headerSize:]...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "bolt mget")
	}
	return values, nil
}

// Delete removes keys.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "bolt delete")
}

// TTL returns the remaining lifetime of key.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now()
	var ttl time.Duration
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil || expired(raw, now.UnixMilli()) {
			return cache.ErrKeyNotFound
		}
		if len(raw) < headerSize {
			return ErrCorruptRecord
		}
		expiresAt := int64(binary.BigEndian.Uint64(raw[:headerSize]))
		if expiresAt == 0 {
			return cache.ErrNoExpiry
		}
		ttl = time.UnixMilli(expiresAt).Sub(now)
		return nil
	})
	return ttl, err
}

// PurgeExpired deletes expired records and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now().UnixMilli()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if len(v) < headerSize || expired(v, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errors.Wrap(err, "bolt purge")
	}
	return removed, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) expiresAt(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return s.now().Add(ttl).UnixMilli()
}

func encode(expiresAt int64, value []byte) []byte {
	buf := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(expiresAt))
	copy(buf[headerSize:], value)
	return buf
}

func expired(raw []byte, now int64) bool {
	if len(raw) < headerSize {
		return false
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:headerSize]))
	return expiresAt > 0 && now >= expiresAt
}
