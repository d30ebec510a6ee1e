package itemcache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisV9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/database/redis"
	"github.com/huynhanx03/item-store/pkg/item"
)

type stack struct {
	cache  *Cache
	memory *LocalMemory
	mr     *miniredis.Miniredis
	logs   *observer.ObservedLogs
}

func newStack(t *testing.T) *stack {
	t.Helper()
	return newStackWithOptions(t, Options{DeleteDelay: 20 * time.Millisecond})
}

func newStackWithOptions(t *testing.T, opts Options) *stack {
	t.Helper()
	mr := miniredis.RunT(t)
	store := redis.NewStore(redisV9.NewClient(&redisV9.Options{Addr: mr.Addr(), MaxRetries: -1}))
	keys := cache.MustKeyFormatter(cache.DefaultNamespace, cache.DefaultKeyTemplate)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	memory := NewTinyLFUMemory(DefaultMemoryCapacity, DefaultMemoryTTL, keys)
	persistent := NewRemotePersistent(store, keys, nil, DefaultPersistentTTL, logger)
	c := New(memory, persistent, opts, logger)
	t.Cleanup(func() {
		_ = c.Close(context.Background())
		_ = store.Close()
	})
	return &stack{cache: c, memory: memory, mr: mr, logs: logs}
}

func refs(items ...item.Item) []item.Item {
	out := make([]item.Item, len(items))
	for i, it := range items {
		out[i] = item.Ref(it.Type, it.ID)
	}
	return out
}

func TestStack_SaveThenGet(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.True(t, s.cache.Save(ctx, []item.Item{itemA, itemB}))
	s.cache.Wait()

	assert.Equal(t, DefaultPersistentTTL, s.mr.TTL("item_store:picture:1"))
	assert.Len(t, s.memory.GetMany([]item.Identity{itemA.Identity(), itemB.Identity()}), 2)

	got := s.cache.Get(ctx, refs(itemA, itemB))
	assert.ElementsMatch(t, []item.Item{itemA, itemB}, got)
}

func TestStack_GetRefreshesPersistentTTL(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.True(t, s.cache.Save(ctx, []item.Item{itemA}))
	s.cache.Wait()
	s.mr.FastForward(10 * time.Hour)
	require.Equal(t, DefaultPersistentTTL-10*time.Hour, s.mr.TTL("item_store:picture:1"))

	assert.Equal(t, []item.Item{itemA}, s.cache.Get(ctx, refs(itemA)))
	s.cache.Wait()

	assert.Equal(t, DefaultPersistentTTL, s.mr.TTL("item_store:picture:1"))
}

func TestStack_PersistentHitIsPromoted(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.mr.Set("item_store:picture:2", `{"item_type":"picture","item_id":"2","payload":"beta"}`))
	assert.Empty(t, s.memory.GetMany([]item.Identity{itemB.Identity()}))

	assert.Equal(t, []item.Item{itemB}, s.cache.Get(ctx, refs(itemB)))
	s.cache.Wait()

	assert.Equal(t, []item.Item{itemB}, s.memory.GetMany([]item.Identity{itemB.Identity()}))
	assert.Equal(t, DefaultPersistentTTL, s.mr.TTL("item_store:picture:2"))
}

func TestStack_PartialMiss(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.True(t, s.cache.Save(ctx, []item.Item{itemA}))
	s.cache.Wait()

	assert.Equal(t, []item.Item{itemA}, s.cache.Get(ctx, refs(itemA, itemC)))
}

func TestStack_DeleteThenGet(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.True(t, s.cache.Save(ctx, []item.Item{itemA, itemB}))
	s.cache.Wait()

	require.True(t, s.cache.Delete(ctx, refs(itemA)))
	s.cache.Wait()

	assert.False(t, s.mr.Exists("item_store:picture:1"))
	assert.True(t, s.mr.Exists("item_store:picture:2"))
	assert.Empty(t, s.cache.Get(ctx, refs(itemA)))

	// deleting again is harmless
	assert.True(t, s.cache.Delete(ctx, refs(itemA)))
}

func TestStack_SaveGetDeleteGetWithoutWaiting(t *testing.T) {
	s := newStackWithOptions(t, Options{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		it := item.New("pic", strconv.Itoa(i), "A")

		require.True(t, s.cache.Save(ctx, []item.Item{it}))
		require.Equal(t, []item.Item{it}, s.cache.Get(ctx, refs(it)))
		require.True(t, s.cache.Delete(ctx, refs(it)))

		assert.Empty(t, s.cache.Get(ctx, refs(it)), "item %s served after delete", it.ID)
		assert.Empty(t, s.memory.GetMany([]item.Identity{it.Identity()}))
	}
}

func TestStack_SaveDeleteGetWithoutWaiting(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		it := item.New("pic", strconv.Itoa(i), "A")

		require.True(t, s.cache.Save(ctx, []item.Item{it}))
		require.True(t, s.cache.Delete(ctx, refs(it)))

		assert.Empty(t, s.cache.Get(ctx, refs(it)), "item %s served after delete", it.ID)
	}
}

func TestStack_StoreDown(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.mr.Close()

	assert.False(t, s.cache.Save(ctx, []item.Item{itemA}))
	assert.Empty(t, s.cache.Get(ctx, refs(itemA)))
	assert.False(t, s.cache.Delete(ctx, refs(itemA)))
	s.cache.Wait()

	errs := s.logs.Filter(func(e observer.LoggedEntry) bool { return e.Level >= zapcore.ErrorLevel })
	assert.Equal(t, 3, errs.Len())
}
