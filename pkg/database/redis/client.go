package redis

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/settings"
	"github.com/huynhanx03/item-store/pkg/utils"
)

const (
	defaultPoolSize        = 10
	defaultMinIdleConns    = 5
	defaultPoolTimeout     = 5   // seconds
	defaultDialTimeout     = 500 // millis
	defaultReadTimeout     = 500 // millis
	defaultWriteTimeout    = 500 // millis
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis
	defaultKeepAlive       = 15 * time.Second
	pingTimeout            = 5 * time.Second
)

// Store is a cache.RemoteStore on Redis. Any client go-redis can build from
// an address list works: standalone, sentinel or cluster. In cluster mode the
// multi-key MSET and DEL require every key of a batch to share a hash slot,
// which a hash-tagged namespace such as "{item_store}" provides.
type Store struct {
	client redisV9.UniversalClient
	config *settings.Redis
}

var _ cache.RemoteStore = (*Store)(nil)

// NewStore wraps an existing client.
func NewStore(client redisV9.UniversalClient) *Store {
	return &Store{client: client}
}

// connect initializes the Redis client
func (s *Store) connect() error {
	s.setDefaultConfig()

	dialer := &net.Dialer{
		Timeout:   utils.ToDurationMs(s.config.DialTimeout),
		KeepAlive: defaultKeepAlive,
	}
	if !s.config.KeepAlive {
		dialer.KeepAlive = -1
	}

	s.client = redisV9.NewUniversalClient(&redisV9.UniversalOptions{
		Addrs:           s.config.Addrs,
		MasterName:      s.config.MasterName,
		Password:        s.config.Password,
		DB:              s.config.Database,
		PoolSize:        s.config.PoolSize,
		MinIdleConns:    s.config.MinIdleConns,
		MaxRetries:      s.config.MaxRetries,
		DialTimeout:     utils.ToDurationMs(s.config.DialTimeout),
		ReadTimeout:     utils.ToDurationMs(s.config.ReadTimeout),
		WriteTimeout:    utils.ToDurationMs(s.config.WriteTimeout),
		PoolTimeout:     utils.ToDuration(s.config.PoolTimeout),
		MinRetryBackoff: utils.ToDurationMs(s.config.MinRetryBackoff),
		MaxRetryBackoff: utils.ToDurationMs(s.config.MaxRetryBackoff),
		ConnMaxIdleTime: utils.ToDuration(s.config.ConnMaxIdleTime),
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		_ = s.client.Close()
		return err
	}

	return nil
}

// setDefaultConfig sets default values for Redis configuration
func (s *Store) setDefaultConfig() {
	if s.config.PoolSize == 0 {
		s.config.PoolSize = defaultPoolSize
	}
	if s.config.MinIdleConns == 0 {
		s.config.MinIdleConns = defaultMinIdleConns
	}
	if s.config.PoolTimeout == 0 {
		s.config.PoolTimeout = defaultPoolTimeout
	}
	if s.config.DialTimeout == 0 {
		s.config.DialTimeout = defaultDialTimeout
	}
	if s.config.ReadTimeout == 0 {
		s.config.ReadTimeout = defaultReadTimeout
	}
	if s.config.WriteTimeout == 0 {
		s.config.WriteTimeout = defaultWriteTimeout
	}
	if s.config.MaxRetries == 0 {
		s.config.MaxRetries = defaultMaxRetries
	}
	if s.config.MinRetryBackoff == 0 {
		s.config.MinRetryBackoff = defaultMinRetryBackoff
	}
	if s.config.MaxRetryBackoff == 0 {
		s.config.MaxRetryBackoff = defaultMaxRetryBackoff
	}
}

// MSet writes all values with one MSET and sets every key's expiry, in a
// single pipeline. The first flag reports the MSET, the rest one EXPIRE each.
func (s *Store) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) ([]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}

	pairs := make([]any, 0, len(values)*2)
	keys := make([]string, 0, len(values))
	for key, value := range values {
		pairs = append(pairs, key, value)
		keys = append(keys, key)
	}

	pipe := s.client.Pipeline()
	set := pipe.MSet(ctx, pairs...)
	expires := make([]*redisV9.BoolCmd, len(keys))
	for i, key := range keys {
		expires[i] = pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "redis mset")
	}

	results := make([]bool, 0, len(keys)+1)
	results = append(results, set.Val() == "OK")
	for _, cmd := range expires {
		results = append(results, cmd.Val())
	}
	return results, nil
}

// Expire refreshes the expiry of keys in one pipeline. Missing keys report false.
func (s *Store) Expire(ctx context.Context, keys []string, ttl time.Duration) ([]bool, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redisV9.BoolCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "redis expire")
	}

	results := make([]bool, len(cmds))
	for i, cmd := range cmds {
		results[i] = cmd.Val()
	}
	return results, nil
}

// MGet returns the values of keys in order, nil for absent keys.
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis mget")
	}

	values := make([][]byte, len(raw))
	for i, v := range raw {
		switch val := v.(type) {
		case string:
			values[i] = []byte(val)
		case []byte:
			values[i] = val
		}
	}
	return values, nil
}

// Delete removes keys; absent keys are ignored.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.client.Del(ctx, keys...).Err(), "redis del")
}

// TTL returns the remaining lifetime of key.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis ttl")
	}
	switch ttl {
	case -2:
		return 0, cache.ErrKeyNotFound
	case -1:
		return 0, cache.ErrNoExpiry
	}
	return ttl, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(ErrPingFailed, err.Error())
	}
	return nil
}

// Close closes the Redis client
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Client returns the underlying redis client (Escape hatch)
func (s *Store) Client() redisV9.UniversalClient {
	return s.client
}
