package itemcache

import (
	"time"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/common/cache/tinylfu"
	"github.com/huynhanx03/item-store/pkg/item"
	"github.com/huynhanx03/item-store/pkg/timer"
)

const (
	DefaultMemoryCapacity = 10000
	DefaultMemoryTTL      = 60 * time.Second
)

// LocalMemory adapts a bounded local cache to the MemoryTier contract.
// Entries are keyed by the rendered cache key and stored at unit cost, so the
// local cache's cost budget is its entry capacity.
type LocalMemory struct {
	local cache.LocalCache[string, item.Item]
	keys  *cache.KeyFormatter
	ttl   time.Duration
	clock timer.Timer
}

var _ MemoryTier = (*LocalMemory)(nil)

// NewLocalMemory wraps local. A non-positive ttl falls back to DefaultMemoryTTL.
func NewLocalMemory(local cache.LocalCache[string, item.Item], keys *cache.KeyFormatter, ttl time.Duration) *LocalMemory {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &LocalMemory{local: local, keys: keys, ttl: ttl}
}

// NewTinyLFUMemory builds the process-wide memory tier on a TinyLFU cache
// holding up to capacity entries. Expiry is checked against a cached clock.
func NewTinyLFUMemory(capacity int64, ttl time.Duration, keys *cache.KeyFormatter) *LocalMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	clock := timer.NewCachedTimer(timer.DefaultResolution)
	local := tinylfu.New[string, item.Item](tinylfu.Config{
		MaxCost:     capacity,
		NumCounters: capacity * 10,
		DefaultTTL:  ttl,
		Clock:       clock,
	})
	m := NewLocalMemory(local, keys, ttl)
	m.clock = clock
	return m
}

// GetMany returns the resident, unexpired items among ids.
func (m *LocalMemory) GetMany(ids []item.Identity) []item.Item {
	return cache.GetManyLocal(m.local, m.keysOf(ids))
}

// AddMany inserts or refreshes items and returns once the writes are applied.
// Writes refused by the eviction policy are simply not cached.
func (m *LocalMemory) AddMany(items []item.Item) {
	values := make(map[string]item.Item, len(items))
	for _, it := range items {
		values[m.keys.Key(it.Type, it.ID)] = it
	}
	cache.SetManyLocal(m.local, values, m.ttl)
	m.local.Wait()
}

// DeleteMany removes entries; missing ones are ignored.
func (m *LocalMemory) DeleteMany(ids []item.Identity) {
	cache.DeleteManyLocal(m.local, m.keysOf(ids))
}

// Close releases the underlying cache.
func (m *LocalMemory) Close() {
	m.local.Close()
	if m.clock != nil {
		m.clock.Stop()
	}
}

func (m *LocalMemory) keysOf(ids []item.Identity) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = m.keys.Key(id.Type, id.ID)
	}
	return keys
}
