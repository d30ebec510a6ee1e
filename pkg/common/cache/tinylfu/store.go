package tinylfu

import (
	"github.com/huynhanx03/item-store/pkg/datastructs/shardedmap"
)

const numShards = 256

// storeItem uses int64 expiration for minimal memory.
type storeItem[V any] struct {
	conflict   uint64
	value      V
	expiration int64
}

// IsExpired returns true if the item has expired.
func (i *storeItem[V]) IsExpired(now int64) bool {
	return i.expiration > 0 && now >= i.expiration
}

// store maps key hashes to entries. A non-zero conflict hash must match the
// entry's for reads and deletes to see it.
type store[V any] struct {
	data *shardedmap.Map[uint64, *storeItem[V]]
}

func newStore[V any]() *store[V] {
	return &store[V]{
		data: shardedmap.New[uint64, *storeItem[V]](numShards, func(key uint64) uint64 { return key }),
	}
}

// Get returns the entry for key if it exists and the conflict hash matches.
func (s *store[V]) Get(key, conflict uint64) (*storeItem[V], bool) {
	item, ok := s.data.Get(key)
	if !ok {
		return nil, false
	}
	if conflict != 0 && item.conflict != conflict {
		return nil, false
	}
	return item, true
}

// Set stores an entry, replacing whatever the slot held.
func (s *store[V]) Set(key uint64, item *storeItem[V]) {
	s.data.Set(key, item)
}

// Del removes the entry if the conflict hash matches. It reports whether
// anything was removed.
func (s *store[V]) Del(key, conflict uint64) (*storeItem[V], bool) {
	return s.data.DelIf(key, func(item *storeItem[V]) bool {
		return conflict == 0 || item.conflict == conflict
	})
}

// Expired collects the keys of entries that expired at or before now.
func (s *store[V]) Expired(now int64) []uint64 {
	var keys []uint64
	s.data.Do(func(key uint64, item *storeItem[V]) {
		if item.IsExpired(now) {
			keys = append(keys, key)
		}
	})
	return keys
}

// Len returns the number of entries. Not atomic across shards.
func (s *store[V]) Len() int {
	return s.data.Len()
}

func (s *store[V]) Clear() {
	s.data.Clear()
}
