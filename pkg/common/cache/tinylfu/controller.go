package tinylfu

import (
	"math"
	"sync"
)

// Controller coordinates frequency counting and eviction sampling.
type Controller[V any] struct {
	sync.Mutex
	freq    *Frequency
	sampler *Sampler
	maxCost int64
	sample  []costEntry
}

// NewController creates a new cache controller.
func NewController[V any](maxCost int64, numCounters int64) *Controller[V] {
	return &Controller[V]{
		freq:    NewFrequency(numCounters),
		sampler: NewSampler(maxCost),
		maxCost: maxCost,
		sample:  make([]costEntry, 0, sampleSize),
	}
}

// Add attempts to admit a key with the given cost.
// It returns the victims evicted to make room and whether the key is now
// tracked. A key that is already tracked only has its cost updated.
// Victims are returned even when the candidate is finally rejected, because
// they have already been dropped from the policy.
func (c *Controller[V]) Add(key uint64, cost int64) ([]*Item[V], bool) {
	c.Lock()
	defer c.Unlock()

	if cost > c.maxCost {
		return nil, false
	}

	if c.sampler.Update(key, cost) {
		return nil, true
	}

	room := c.sampler.RoomLeft(cost)
	if room >= 0 {
		c.sampler.Add(key, cost)
		return nil, true
	}

	incHits := c.freq.Estimate(key)

	var victims []*Item[V]
	for room < 0 {
		sample := c.sampler.Sample(c.sample[:0])
		if len(sample) == 0 {
			break
		}

		minKey, minHits, minCost := uint64(0), int64(math.MaxInt64), int64(0)
		for _, entry := range sample {
			if hits := c.freq.Estimate(entry.key); hits < minHits {
				minKey, minHits, minCost = entry.key, hits, entry.cost
			}
		}

		if incHits < minHits {
			return victims, false
		}

		c.sampler.Remove(minKey)
		victims = append(victims, &Item[V]{Key: minKey, Cost: minCost})
		room = c.sampler.RoomLeft(cost)
	}

	c.sampler.Add(key, cost)
	return victims, true
}

// Has returns true if the key is tracked.
func (c *Controller[V]) Has(key uint64) bool {
	c.Lock()
	defer c.Unlock()
	return c.sampler.Has(key)
}

// Del removes a key from tracking.
func (c *Controller[V]) Del(key uint64) {
	c.Lock()
	defer c.Unlock()
	c.sampler.Remove(key)
}

// Cost returns the cost of a key.
func (c *Controller[V]) Cost(key uint64) int64 {
	c.Lock()
	defer c.Unlock()
	return c.sampler.Cost(key)
}

// Used returns the total cost currently admitted.
func (c *Controller[V]) Used() int64 {
	c.Lock()
	defer c.Unlock()
	return c.sampler.Used()
}

// Consume records a batch of accesses.
func (c *Controller[V]) Consume(keys []uint64) {
	c.Lock()
	defer c.Unlock()
	for _, key := range keys {
		c.freq.Record(key)
	}
}

// Clear resets all state.
func (c *Controller[V]) Clear() {
	c.Lock()
	defer c.Unlock()
	c.freq.Clear()
	c.sampler.Clear()
}
