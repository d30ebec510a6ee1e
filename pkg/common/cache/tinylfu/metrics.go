package tinylfu

import "sync/atomic"

// Metrics is a point-in-time snapshot of cache counters.
type Metrics struct {
	Hits         uint64
	Misses       uint64
	KeysAdded    uint64
	KeysUpdated  uint64
	KeysEvicted  uint64
	KeysExpired  uint64
	SetsDropped  uint64
	SetsRejected uint64
}

// Ratio returns the hit ratio, or 0 before any lookup.
func (m Metrics) Ratio() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

type counters struct {
	hits, misses      atomic.Uint64
	added, updated    atomic.Uint64
	evicted, expired  atomic.Uint64
	dropped, rejected atomic.Uint64
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		KeysAdded:    c.added.Load(),
		KeysUpdated:  c.updated.Load(),
		KeysEvicted:  c.evicted.Load(),
		KeysExpired:  c.expired.Load(),
		SetsDropped:  c.dropped.Load(),
		SetsRejected: c.rejected.Load(),
	}
}
