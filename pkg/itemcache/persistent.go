package itemcache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/item"
)

// DefaultPersistentTTL is the lifetime of a stored item since its last save or read.
const DefaultPersistentTTL = 2 * 24 * time.Hour

// RemotePersistent adapts a RemoteStore to the PersistentTier contract,
// handling key rendering and item (de)serialization.
type RemotePersistent struct {
	store  cache.RemoteStore
	keys   *cache.KeyFormatter
	codec  item.Codec
	ttl    time.Duration
	logger *zap.Logger
}

var _ PersistentTier = (*RemotePersistent)(nil)

// NewRemotePersistent wraps store. A nil codec selects item.JSONCodec and a
// non-positive ttl selects DefaultPersistentTTL.
func NewRemotePersistent(store cache.RemoteStore, keys *cache.KeyFormatter, codec item.Codec, ttl time.Duration, logger *zap.Logger) *RemotePersistent {
	if codec == nil {
		codec = item.JSONCodec{}
	}
	if ttl <= 0 {
		ttl = DefaultPersistentTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemotePersistent{store: store, keys: keys, codec: codec, ttl: ttl, logger: logger}
}

// Save writes items (or only refreshes their TTL). An item that fails to
// serialize is skipped and logged, and makes the result false; the rest of
// the batch is still written.
func (p *RemotePersistent) Save(ctx context.Context, items []item.Item, onlyUpdateTTL bool) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}

	if onlyUpdateTTL {
		keys := make([]string, len(items))
		for i, it := range items {
			keys[i] = p.keys.Key(it.Type, it.ID)
		}
		results, err := p.store.Expire(ctx, keys, p.ttl)
		if err != nil {
			return false, errors.Wrap(err, "refresh ttl")
		}
		return allTrue(results), nil
	}

	state := true
	values := make(map[string][]byte, len(items))
	for _, it := range items {
		data, err := p.codec.Marshal(it)
		if err != nil {
			p.logger.Error("cache_serialize_error", zap.Object("item", it), zap.Error(err))
			state = false
			continue
		}
		values[p.keys.Key(it.Type, it.ID)] = data
	}
	if len(values) == 0 {
		return false, nil
	}

	results, err := p.store.MSet(ctx, values, p.ttl)
	if err != nil {
		return false, errors.Wrap(err, "save items")
	}
	return state && allTrue(results), nil
}

// Get fetches the stored items for ids. Records that fail to deserialize are
// skipped and logged.
func (p *RemotePersistent) Get(ctx context.Context, ids []item.Identity) ([]item.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := p.keysOf(ids)
	values, err := p.store.MGet(ctx, keys)
	if err != nil {
		return nil, errors.Wrap(err, "get items")
	}

	items := make([]item.Item, 0, len(values))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		it, err := p.codec.Unmarshal(raw)
		if err != nil {
			p.logger.Error("cache_deserialize_error", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Delete removes the keys for ids. Keys that did not exist count as deleted.
func (p *RemotePersistent) Delete(ctx context.Context, ids []item.Identity) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	if err := p.store.Delete(ctx, p.keysOf(ids)); err != nil {
		return false, errors.Wrap(err, "delete items")
	}
	return true, nil
}

// TTL reports the remaining persistent lifetime of one item.
func (p *RemotePersistent) TTL(ctx context.Context, id item.Identity) (time.Duration, error) {
	return p.store.TTL(ctx, p.keys.Key(id.Type, id.ID))
}

func (p *RemotePersistent) keysOf(ids []item.Identity) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.keys.Key(id.Type, id.ID)
	}
	return keys
}

func allTrue(results []bool) bool {
	if len(results) == 0 {
		return false
	}
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}
