package tinylfu

import "sync"

// accessConsumer receives batches of key hashes that were read.
type accessConsumer interface {
	Consume(keys []uint64)
}

// accessBuffer batches read events in per-P stripes taken from a sync.Pool
// and hands full stripes to the consumer. Stripes still sitting in the pool
// may be dropped by the GC; losing a few frequency samples is acceptable.
type accessBuffer struct {
	pool *sync.Pool
}

type accessStripe struct {
	cons accessConsumer
	data []uint64
	cap  int
}

func newAccessBuffer(cons accessConsumer, size int) *accessBuffer {
	if size <= 0 {
		size = 64
	}
	return &accessBuffer{
		pool: &sync.Pool{
			New: func() any {
				return &accessStripe{cons: cons, data: make([]uint64, 0, size), cap: size}
			},
		},
	}
}

// Push records one access.
func (b *accessBuffer) Push(key uint64) {
	s := b.pool.Get().(*accessStripe)
	s.data = append(s.data, key)
	if len(s.data) >= s.cap {
		s.cons.Consume(s.data)
		// consumer may keep the slice
		s.data = make([]uint64, 0, s.cap)
	}
	b.pool.Put(s)
}
