// Package timer provides a clock that trades precision for a cheap Now.
package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultResolution suits expirations measured in seconds.
const DefaultResolution = 100 * time.Millisecond

type Timer interface {
	Now() time.Time
	Stop()
}

// CachedTimer refreshes a stored wall time once per resolution so hot paths
// read the time with an atomic load. Now lags real time by at most one step.
type CachedTimer struct {
	now    atomic.Pointer[time.Time]
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

var _ Timer = (*CachedTimer)(nil)

func NewCachedTimer(resolution time.Duration) *CachedTimer {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	t := &CachedTimer{
		ticker: time.NewTicker(resolution),
		done:   make(chan struct{}),
	}
	t.store(time.Now())

	t.wg.Add(1)
	go t.run()

	return t
}

func (t *CachedTimer) run() {
	defer t.wg.Done()

	for {
		select {
		case now := <-t.ticker.C:
			t.store(now)
		case <-t.done:
			t.ticker.Stop()
			return
		}
	}
}

func (t *CachedTimer) store(now time.Time) {
	t.now.Store(&now)
}

func (t *CachedTimer) Now() time.Time {
	return *t.now.Load()
}

// Stop halts refreshing; Now keeps returning the last stored time.
func (t *CachedTimer) Stop() {
	t.once.Do(func() {
		close(t.done)
		t.wg.Wait()
	})
}
