package shardedmap

import (
	"sync"

	"github.com/huynhanx03/item-store/pkg/utils"
)

const defaultShards = 256

// Map is a thread-safe map that uses sharding to minimize lock contention.
type Map[K comparable, V any] struct {
	shards []*lockedShard[K, V]
	mask   uint64
	hasher func(K) uint64
}

type lockedShard[K comparable, V any] struct {
	sync.RWMutex
	data map[K]V

	// keeps neighbouring shard locks on separate cache lines
	pad [64]byte
}

// New creates a map with shards rounded up to a power of two. hashFn picks
// the shard of a key.
func New[K comparable, V any](shards int, hashFn func(K) uint64) *Map[K, V] {
	if shards <= 0 {
		shards = defaultShards
	}
	n := utils.CeilToPowerOfTwo(shards)
	m := &Map[K, V]{
		shards: make([]*lockedShard[K, V], n),
		mask:   uint64(n - 1),
		hasher: hashFn,
	}
	for i := range m.shards {
		m.shards[i] = &lockedShard[K, V]{data: make(map[K]V)}
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *lockedShard[K, V] {
	return m.shards[m.hasher(key)&m.mask]
}

// Get retrieves a value from the map.
func (m *Map[K, V]) Get(key K) (V, bool) {
	shard := m.shardFor(key)
	shard.RLock()
	val, ok := shard.data[key]
	shard.RUnlock()
	return val, ok
}

// Set adds or updates a value in the map.
func (m *Map[K, V]) Set(key K, value V) {
	shard := m.shardFor(key)
	shard.Lock()
	shard.data[key] = value
	shard.Unlock()
}

// Del removes a value from the map.
func (m *Map[K, V]) Del(key K) {
	shard := m.shardFor(key)
	shard.Lock()
	delete(shard.data, key)
	shard.Unlock()
}

// DelIf removes key only when match accepts its current value, checked under
// the shard lock. It returns the removed value.
func (m *Map[K, V]) DelIf(key K, match func(V) bool) (V, bool) {
	shard := m.shardFor(key)
	shard.Lock()
	defer shard.Unlock()

	val, ok := shard.data[key]
	if !ok || !match(val) {
		var zero V
		return zero, false
	}
	delete(shard.data, key)
	return val, true
}

// Len returns the total number of items. Not atomic across shards.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, shard := range m.shards {
		shard.RLock()
		total += len(shard.data)
		shard.RUnlock()
	}
	return total
}

// Clear removes all items from the map.
func (m *Map[K, V]) Clear() {
	for _, shard := range m.shards {
		shard.Lock()
		shard.data = make(map[K]V)
		shard.Unlock()
	}
}

// Do calls fn for every item, holding one shard read lock at a time. fn must
// not modify the map.
func (m *Map[K, V]) Do(fn func(K, V)) {
	for _, shard := range m.shards {
		shard.RLock()
		for k, v := range shard.data {
			fn(k, v)
		}
		shard.RUnlock()
	}
}
