package tinylfu

import (
	"math"

	"github.com/huynhanx03/item-store/pkg/datastructs/sketch"
)

// Frequency implements TinyLFU frequency counting.
// It combines a Count-Min Sketch for frequency estimation and a Bloom filter
// as a "doorkeeper" to filter first-time accesses. Not thread-safe; the
// controller serializes access.
type Frequency struct {
	freq       *sketch.Sketch
	door       *doorkeeper
	incr       int64
	resetAfter int64
}

// NewFrequency creates a new frequency counter.
func NewFrequency(numCounters int64) *Frequency {
	if numCounters <= 0 {
		numCounters = 1
	}
	return &Frequency{
		freq:       sketch.New(numCounters),
		door:       newDoorkeeper(uint64(numCounters), 0.01),
		resetAfter: numCounters,
	}
}

// Record records an access to the given key.
func (f *Frequency) Record(key uint64) {
	f.incr++
	if f.incr >= f.resetAfter {
		f.freq.Reset()
		f.door.clear()
		f.incr = 0
	}

	if f.door.addIfNotHas(key) {
		f.freq.Increment(key)
	}
}

// Estimate returns the estimated access frequency of a key.
func (f *Frequency) Estimate(key uint64) int64 {
	hits := f.freq.Estimate(key)
	if f.door.has(key) {
		hits++
	}
	return hits
}

// Clear resets all frequency data.
func (f *Frequency) Clear() {
	f.freq.Clear()
	f.door.clear()
	f.incr = 0
}

// doorkeeper is a Bloom filter admitting keys into the sketch on their second sighting.
type doorkeeper struct {
	bits []uint64
	k    uint64
	m    uint64
}

func newDoorkeeper(capacity uint64, fpRate float64) *doorkeeper {
	if capacity == 0 {
		capacity = 1
	}
	// m = -n * ln(p) / (ln(2)^2), k = (m / n) * ln(2)
	m := uint64(math.Ceil(-float64(capacity) * math.Log(fpRate) / (math.Ln2 * math.Ln2)))
	k := uint64(math.Ceil(float64(m) / float64(capacity) * math.Ln2))
	return &doorkeeper{bits: make([]uint64, (m+63)/64), k: k, m: m}
}

// addIfNotHas sets the key's bits and reports whether all of them were already set.
func (d *doorkeeper) addIfNotHas(h uint64) bool {
	delta := (h >> 17) | (h << 47)
	present := true
	for i := uint64(0); i < d.k; i++ {
		idx := (h + i*delta) % d.m
		mask := uint64(1) << (idx % 64)
		if d.bits[idx/64]&mask == 0 {
			present = false
			d.bits[idx/64] |= mask
		}
	}
	return present
}

func (d *doorkeeper) has(h uint64) bool {
	delta := (h >> 17) | (h << 47)
	for i := uint64(0); i < d.k; i++ {
		idx := (h + i*delta) % d.m
		if d.bits[idx/64]&(uint64(1)<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

func (d *doorkeeper) clear() {
	clear(d.bits)
}
