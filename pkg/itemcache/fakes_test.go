package itemcache

import (
	"context"
	"errors"
	"sync"

	"github.com/huynhanx03/item-store/pkg/item"
)

var errStoreDown = errors.New("store down")

type fakeMemory struct {
	mu      sync.Mutex
	items   map[item.Identity]item.Item
	adds    int
	deletes int
	ops     []string
	panics  bool
	addGate chan struct{}
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{items: make(map[item.Identity]item.Item)}
}

func (m *fakeMemory) GetMany(ids []item.Identity) []item.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("memory tier broken")
	}
	var out []item.Item
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func (m *fakeMemory) AddMany(items []item.Item) {
	if m.addGate != nil {
		<-m.addGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("memory tier broken")
	}
	m.adds++
	m.ops = append(m.ops, "add")
	for _, it := range items {
		m.items[it.Identity()] = it
	}
}

func (m *fakeMemory) DeleteMany(ids []item.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.ops = append(m.ops, "delete")
	for _, id := range ids {
		delete(m.items, id)
	}
}

func (m *fakeMemory) has(id item.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	return ok
}

func (m *fakeMemory) opLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

func (m *fakeMemory) addCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adds
}

type saveCall struct {
	items         []item.Item
	onlyUpdateTTL bool
	ctxErr        error
}

type fakePersistent struct {
	mu        sync.Mutex
	items     map[item.Identity]item.Item
	saves     []saveCall
	gets      [][]item.Identity
	deletes   [][]item.Identity
	err       error
	saveState bool
	block     chan struct{}
}

func newFakePersistent() *fakePersistent {
	return &fakePersistent{items: make(map[item.Identity]item.Item), saveState: true}
}

func (p *fakePersistent) Save(ctx context.Context, items []item.Item, onlyUpdateTTL bool) (bool, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, saveCall{
		items:         append([]item.Item(nil), items...),
		onlyUpdateTTL: onlyUpdateTTL,
		ctxErr:        ctx.Err(),
	})
	if p.err != nil {
		return false, p.err
	}
	if onlyUpdateTTL {
		for _, it := range items {
			if _, ok := p.items[it.Identity()]; !ok {
				return false, nil
			}
		}
		return p.saveState, nil
	}
	for _, it := range items {
		p.items[it.Identity()] = it
	}
	return p.saveState, nil
}

func (p *fakePersistent) Get(_ context.Context, ids []item.Identity) ([]item.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets = append(p.gets, ids)
	if p.err != nil {
		return nil, p.err
	}
	var out []item.Item
	for _, id := range ids {
		if it, ok := p.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (p *fakePersistent) Delete(_ context.Context, ids []item.Identity) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes = append(p.deletes, ids)
	if p.err != nil {
		return false, p.err
	}
	for _, id := range ids {
		delete(p.items, id)
	}
	return true, nil
}

func (p *fakePersistent) put(items ...item.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range items {
		p.items[it.Identity()] = it
	}
}

func (p *fakePersistent) ttlTouches() []saveCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []saveCall
	for _, s := range p.saves {
		if s.onlyUpdateTTL {
			out = append(out, s)
		}
	}
	return out
}

func (p *fakePersistent) getCalls() [][]item.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]item.Identity(nil), p.gets...)
}

func (p *fakePersistent) deleteCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deletes)
}
