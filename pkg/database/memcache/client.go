package memcache

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	pkgerrors "github.com/pkg/errors"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/settings"
	"github.com/huynhanx03/item-store/pkg/utils"
)

const (
	defaultTimeout      = 500 // millis
	defaultMaxIdleConns = 8

	// memcached reads expirations above 30 days as absolute unix times
	maxRelativeExpiry = 30 * 24 * time.Hour
)

var (
	ErrNoServers      = errors.New("memcache: no servers configured")
	ErrTTLUnsupported = errors.New("memcache: ttl inspection not supported")
)

// Store is a cache.RemoteStore on memcached. memcached has no multi-key
// write, so MSet and Expire issue one command per key; the client keeps
// connections per server so those commands reuse sockets.
type Store struct {
	client *memcache.Client
}

var _ cache.RemoteStore = (*Store)(nil)

// NewConnection builds a client for cfg.Servers and pings every server.
func NewConnection(cfg *settings.Memcache) (*Store, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}

	client := memcache.New(cfg.Servers...)
	client.Timeout = utils.ToDurationMs(cfg.Timeout)
	client.MaxIdleConns = cfg.MaxIdleConns

	store := NewStore(client)
	if err := store.Ping(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing client.
func NewStore(client *memcache.Client) *Store {
	return &Store{client: client}
}

// MSet stores every value with the given expiry. One flag per key; a key the
// server refused reports false without failing the batch.
func (s *Store) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) ([]bool, error) {
	results := make([]bool, 0, len(values))
	expiry := expiration(ttl)
	for key, value := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := s.client.Set(&memcache.Item{Key: key, Value: value, Expiration: expiry})
		if err != nil && !isKeyError(err) {
			return nil, pkgerrors.Wrapf(err, "memcache set %s", key)
		}
		results = append(results, err == nil)
	}
	return results, nil
}

// Expire touches keys; absent keys report false.
func (s *Store) Expire(ctx context.Context, keys []string, ttl time.Duration) ([]bool, error) {
	results := make([]bool, len(keys))
	expiry := expiration(ttl)
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := s.client.Touch(key, expiry)
		switch {
		case err == nil:
			results[i] = true
		case errors.Is(err, memcache.ErrCacheMiss) || isKeyError(err):
		default:
			return nil, pkgerrors.Wrapf(err, "memcache touch %s", key)
		}
	}
	return results, nil
}

// MGet fetches keys in one round trip per server. Absent keys are nil, and
// so are keys memcached cannot hold.
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legal := make([]string, 0, len(keys))
	for _, key := range keys {
		if legalKey(key) {
			legal = append(legal, key)
		}
	}
	var found map[string]*memcache.Item
	if len(legal) > 0 {
		var err error
		found, err = s.client.GetMulti(legal)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "memcache get multi")
		}
	}

	values := make([][]byte, len(keys))
	for i, key := range keys {
		if it, ok := found[key]; ok {
			values[i] = it.Value
		}
	}
	return values, nil
}

// Delete removes keys, ignoring misses. A key memcached cannot hold fails the
// call before anything is removed.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if !legalKey(key) {
			return pkgerrors.Wrapf(memcache.ErrMalformedKey, "memcache delete %q", key)
		}
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.client.Delete(key)
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return pkgerrors.Wrapf(err, "memcache delete %s", key)
		}
	}
	return nil
}

// TTL is not available over the memcached text protocol.
func (s *Store) TTL(context.Context, string) (time.Duration, error) {
	return 0, ErrTTLUnsupported
}

// Ping checks every configured server.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return pkgerrors.Wrap(s.client.Ping(), "memcache ping")
}

// Close is a no-op; idle connections are dropped with the client.
func (s *Store) Close() error {
	return nil
}

func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeExpiry {
		return int32(time.Now().Add(ttl).Unix())
	}
	if ttl < time.Second {
		return 1
	}
	return int32(ttl / time.Second)
}

// legalKey follows the memcached text protocol: at most 250 bytes, no
// whitespace or control characters.
func legalKey(key string) bool {
	if len(key) == 0 || len(key) > 250 {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

func isKeyError(err error) bool {
	return errors.Is(err, memcache.ErrMalformedKey) || errors.Is(err, memcache.ErrNotStored)
}
