package sketch

import (
	"math/rand/v2"

	"github.com/huynhanx03/item-store/pkg/utils"
)

const (
	cmDepth      = 4
	counterShift = 4
	maxCount     = 15
	agingMask    = 0x77
)

// MaxCount is the value at which a counter saturates.
const MaxCount = maxCount

// Sketch is a Count-Min sketch with 4-bit counters.
// NOT thread-safe.
type Sketch struct {
	rows [cmDepth]cmRow
	seed [cmDepth]uint64
	mask uint64
}

// New creates a sketch with at least numCounters counters per row.
func New(numCounters int64) *Sketch {
	if numCounters < 2 {
		numCounters = 2
	}
	n := utils.CeilToPowerOfTwo(int(numCounters))
	s := &Sketch{mask: uint64(n - 1)}
	for i := 0; i < cmDepth; i++ {
		s.seed[i] = rand.Uint64()
		s.rows[i] = newCmRow(int64(n))
	}
	return s
}

// Increment bumps the counters of hash, saturating at MaxCount.
func (s *Sketch) Increment(hash uint64) {
	for i := range s.rows {
		s.rows[i].increment((hash ^ s.seed[i]) & s.mask)
	}
}

// Estimate returns the smallest counter of hash.
func (s *Sketch) Estimate(hash uint64) int64 {
	lowest := byte(maxCount)
	for i := range s.rows {
		if v := s.rows[i].get((hash ^ s.seed[i]) & s.mask); v < lowest {
			lowest = v
		}
	}
	return int64(lowest)
}

// Reset halves every counter so old popularity decays.
func (s *Sketch) Reset() {
	for _, r := range s.rows {
		r.reset()
	}
}

// Clear zeroes all counters.
func (s *Sketch) Clear() {
	for _, r := range s.rows {
		r.clear()
	}
}
