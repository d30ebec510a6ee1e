package tinylfu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/huynhanx03/item-store/pkg/common/cache"
)

var _ cache.LocalCache[string, any] = (*Cache[string, any])(nil)

const (
	defaultMaxCost         = 1 << 20
	defaultBufferSize      = 64
	defaultCleanupInterval = 2 * time.Second
	setBufferSize          = 32 * 1024
)

// Config holds cache configuration.
type Config struct {
	// MaxCost bounds the summed cost of resident entries. With unit costs it
	// is the entry capacity.
	MaxCost int64
	// NumCounters sizes the frequency sketch; about 10x the expected number
	// of entries works well.
	NumCounters int64
	// BufferSize is the access stripe length.
	BufferSize int
	// DefaultTTL applies to writes made with ttl <= 0. Zero means no expiry.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are purged. Negative disables.
	CleanupInterval time.Duration

	// Clock is the time provider. If nil, time.Now is used.
	Clock Clock
}

// Cache is a thread-safe TinyLFU cache with TTL support. Writes and deletes
// are applied in order by a single policy goroutine.
type Cache[K Key, V any] struct {
	store      *store[V]
	controller *Controller[V]
	getBuf     *accessBuffer
	setBuf     chan *Item[V]
	stop       chan struct{}
	done       chan struct{}
	itemPool   *sync.Pool
	clock      Clock
	defaultTTL time.Duration
	cleanup    time.Duration
	cost       func(V) int64
	onEvict    func(*Item[V])
	stats      counters
	isClosed   atomic.Bool
}

// New creates a new TinyLFU cache.
func New[K Key, V any](cfg Config) *Cache[K, V] {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = cfg.MaxCost * 10
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}

	c := &Cache[K, V]{
		store:      newStore[V](),
		controller: NewController[V](cfg.MaxCost, cfg.NumCounters),
		setBuf:     make(chan *Item[V], setBufferSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		clock:      cfg.Clock,
		defaultTTL: cfg.DefaultTTL,
		cleanup:    cfg.CleanupInterval,
		itemPool: &sync.Pool{
			New: func() any {
				return &Item[V]{}
			},
		},
	}

	if c.clock == nil {
		c.clock = systemClock{}
	}

	c.getBuf = newAccessBuffer(c.controller, cfg.BufferSize)

	go c.processItems()

	return c
}

// Get retrieves a value from the cache.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.isClosed.Load() {
		return zero, false
	}

	keyHash, conflict := keyToHash(key)
	item, ok := c.store.Get(keyHash, conflict)
	if !ok {
		c.stats.misses.Add(1)
		return zero, false
	}

	// Lazy expiration
	if item.IsExpired(c.clock.Now().UnixNano()) {
		c.stats.misses.Add(1)
		return zero, false
	}

	c.stats.hits.Add(1)
	c.getBuf.Push(keyHash)
	return item.value, true
}

// Set adds or updates a value in the cache with the default TTL.
func (c *Cache[K, V]) Set(key K, value V, cost int64) bool {
	return c.SetWithTTL(key, value, cost, 0)
}

// SetWithTTL queues a write. It returns false when the cache is closed or the
// write buffer is full; an accepted write may still be refused admission.
func (c *Cache[K, V]) SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool {
	if c.isClosed.Load() {
		return false
	}

	keyHash, conflict := keyToHash(key)

	if cost == 0 && c.cost != nil {
		cost = c.cost(value)
	}
	if cost == 0 {
		cost = 1
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	var expiration int64
	if ttl > 0 {
		expiration = c.clock.Now().Add(ttl).UnixNano()
	}

	item := c.itemPool.Get().(*Item[V])
	item.flag = itemSet
	item.Key = keyHash
	item.Conflict = conflict
	item.Value = value
	item.Cost = cost
	item.Expiration = expiration

	select {
	case c.setBuf <- item:
		return true
	default:
		c.stats.dropped.Add(1)
		c.release(item)
		return false
	}
}

// Delete removes a value from the cache. The entry disappears immediately and
// the removal is also queued behind pending writes so none of them can bring
// it back.
func (c *Cache[K, V]) Delete(key K) {
	if c.isClosed.Load() {
		return
	}

	keyHash, conflict := keyToHash(key)
	c.store.Del(keyHash, conflict)

	item := c.itemPool.Get().(*Item[V])
	item.flag = itemDelete
	item.Key = keyHash
	item.Conflict = conflict

	select {
	case c.setBuf <- item:
	case <-c.stop:
		c.release(item)
	}
}

// Wait blocks until every write and delete queued before the call is applied.
func (c *Cache[K, V]) Wait() {
	if c.isClosed.Load() {
		return
	}
	wait := make(chan struct{})
	select {
	case c.setBuf <- &Item[V]{flag: itemWait, wait: wait}:
	case <-c.stop:
		return
	}
	select {
	case <-wait:
	case <-c.stop:
	}
}

// Len returns the number of resident entries, including expired ones not yet purged.
func (c *Cache[K, V]) Len() int {
	return c.store.Len()
}

// Metrics returns a snapshot of the cache counters.
func (c *Cache[K, V]) Metrics() Metrics {
	return c.stats.snapshot()
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.Wait()
	c.store.Clear()
	c.controller.Clear()
}

// Close shuts down the cache and waits for the policy goroutine to exit.
func (c *Cache[K, V]) Close() {
	if c.isClosed.Swap(true) {
		return
	}
	close(c.stop)
	<-c.done
}

// SetCostFunc sets a function to calculate item cost.
func (c *Cache[K, V]) SetCostFunc(fn func(V) int64) {
	c.cost = fn
}

// SetOnEvict sets a callback for when items are evicted.
func (c *Cache[K, V]) SetOnEvict(fn func(*Item[V])) {
	c.onEvict = fn
}

func (c *Cache[K, V]) release(item *Item[V]) {
	var zero V
	item.Value = zero
	c.itemPool.Put(item)
}

func (c *Cache[K, V]) processItems() {
	defer close(c.done)

	var tick <-chan time.Time
	if c.cleanup > 0 {
		ticker := time.NewTicker(c.cleanup)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case item := <-c.setBuf:
			c.apply(item)
		case <-tick:
			c.purgeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[K, V]) apply(item *Item[V]) {
	switch item.flag {
	case itemWait:
		close(item.wait)
		return
	case itemDelete:
		c.controller.Del(item.Key)
		c.store.Del(item.Key, item.Conflict)
		c.release(item)
		return
	}

	existed := c.controller.Has(item.Key)
	victims, added := c.controller.Add(item.Key, item.Cost)
	if added {
		c.store.Set(item.Key, &storeItem[V]{
			conflict:   item.Conflict,
			value:      item.Value,
			expiration: item.Expiration,
		})
		if existed {
			c.stats.updated.Add(1)
		} else {
			c.stats.added.Add(1)
		}
	} else {
		c.stats.rejected.Add(1)
	}
	c.release(item)

	for _, victim := range victims {
		evicted, ok := c.store.Del(victim.Key, 0)
		if !ok {
			continue
		}
		c.stats.evicted.Add(1)
		if c.onEvict != nil {
			victim.Conflict = evicted.conflict
			victim.Value = evicted.value
			victim.Expiration = evicted.expiration
			c.onEvict(victim)
		}
	}
}

func (c *Cache[K, V]) purgeExpired() {
	for _, key := range c.store.Expired(c.clock.Now().UnixNano()) {
		if _, ok := c.store.Del(key, 0); ok {
			c.controller.Del(key)
			c.stats.expired.Add(1)
		}
	}
}
