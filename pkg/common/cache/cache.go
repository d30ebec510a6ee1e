package cache

import (
	"context"
	"time"
)

// LocalCache defines the interface for in-memory local cache operations.
// Implementations own their synchronization and never block on I/O.
type LocalCache[K comparable, V any] interface {
	Get(key K) (V, bool)
	SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool
	Delete(key K)
	// Wait blocks until previously buffered writes are visible.
	Wait()
	Clear()
	Close()
}

// RemoteStore defines the key-value contract of a network-resident cache store.
// Every key written through it carries an expiry.
type RemoteStore interface {
	// MSet writes all values, then sets ttl on every key. It returns one
	// success flag per issued command.
	MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) ([]bool, error)
	// Expire refreshes ttl on existing keys. Missing keys report false.
	Expire(ctx context.Context, keys []string, ttl time.Duration) ([]bool, error)
	// MGet returns values aligned with keys; a nil entry marks an absent key.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys []string) error
	// TTL returns the remaining lifetime of a key or ErrKeyNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
	Close() error
}
