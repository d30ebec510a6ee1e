// Package itemcache composes a process-local memory tier and a network-backed
// persistent tier into a read-through, write-through item cache.
//
// The persistent tier is authoritative. Memory tier population and TTL
// refreshes run as detached background tasks and never add latency or
// failures to the caller. None of the public operations return errors or
// panic; failures are logged and turned into false or a partial result.
//
// Memory tier writes and deletes are applied one at a time in the order the
// operations issued them, so a Delete always lands after the memory writes of
// every Save or Get that returned before it. Delete removes the persistent
// record only after DeleteDelay and once its memory delete is applied. A Get
// running concurrently with a Delete can still repopulate memory from the
// record about to be deleted; that window is narrowed, not closed.
package itemcache

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/item-store/pkg/item"
)

const (
	DefaultDeleteDelay        = 100 * time.Millisecond
	DefaultBackgroundTimeout  = 5 * time.Second
	DefaultMaxBackgroundTasks = 1024
)

// Options tunes the orchestrator. Zero values select the defaults.
type Options struct {
	// DeleteDelay separates the memory tier delete from the persistent one.
	DeleteDelay time.Duration
	// BackgroundTimeout bounds every detached task.
	BackgroundTimeout time.Duration
	// MaxBackgroundTasks caps concurrently running detached tasks.
	MaxBackgroundTasks int64
}

func (o *Options) setDefaults() {
	if o.DeleteDelay <= 0 {
		o.DeleteDelay = DefaultDeleteDelay
	}
	if o.BackgroundTimeout <= 0 {
		o.BackgroundTimeout = DefaultBackgroundTimeout
	}
	if o.MaxBackgroundTasks <= 0 {
		o.MaxBackgroundTasks = DefaultMaxBackgroundTasks
	}
}

// Cache is the two-tier item cache. It is safe for concurrent use and meant
// to be constructed once per process.
type Cache struct {
	memory      MemoryTier
	persistent  PersistentTier
	tasks       *taskRunner
	deleteDelay time.Duration
	logger      *zap.Logger
}

// New builds a Cache over the given tiers.
func New(memory MemoryTier, persistent PersistentTier, opts Options, logger *zap.Logger) *Cache {
	opts.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		memory:      memory,
		persistent:  persistent,
		tasks:       newTaskRunner(opts.MaxBackgroundTasks, opts.BackgroundTimeout, logger),
		deleteDelay: opts.DeleteDelay,
		logger:      logger,
	}
}

// Save writes items to the persistent tier and then, in the background, to
// the memory tier. It reports whether every item was persisted.
func (c *Cache) Save(ctx context.Context, items []item.Item) (state bool) {
	defer c.recoverOp("cache_save_error", items, func() { state = false })

	items, complete := c.prepare("save", items)
	if len(items) == 0 {
		return complete
	}

	state, err := c.persistent.Save(ctx, items, false)
	if err != nil {
		c.logger.Error("cache_save_error", zap.Error(err), zap.Array("items", item.Items(items)))
		return false
	}
	c.logger.Debug("cache_save", zap.Bool("state", state), zap.Array("items", item.Items(items)))

	c.spawnOrdered(ctx, "memory_add", func(context.Context) error {
		c.memoryAdd(items)
		return nil
	})
	return state && complete
}

// Get resolves items from the memory tier, falling back to the persistent
// tier for misses. Identities found nowhere are left out of the result.
// Persistent hits are promoted to memory and every returned item has its
// persistent TTL refreshed, both in the background.
func (c *Cache) Get(ctx context.Context, items []item.Item) (result []item.Item) {
	result = make([]item.Item, 0, len(items))
	defer c.recoverOp("cache_get_error", items, nil)

	items, _ = c.prepare("get", items)
	if len(items) == 0 {
		return result
	}

	ids := item.Items(items).Identities()
	memoryItems := c.memoryGet(ids)
	result = append(result, memoryItems...)

	found := make(map[item.Identity]struct{}, len(memoryItems))
	for _, it := range memoryItems {
		found[it.Identity()] = struct{}{}
	}
	missing := make([]item.Identity, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		persisted, err := c.persistent.Get(ctx, missing)
		if err != nil {
			c.logger.Error("cache_get_error", zap.Error(err), zap.Array("items", item.Items(items)))
			return result
		}
		result = append(result, persisted...)

		if len(persisted) > 0 {
			promote := slices.Clone(result)
			c.spawnOrdered(ctx, "memory_add", func(context.Context) error {
				c.memoryAdd(promote)
				return nil
			})
		}
	}
	c.logger.Debug("cache_get", zap.Array("cache_items", item.Items(result)), zap.Array("items", item.Items(items)))

	if len(result) > 0 {
		touch := slices.Clone(result)
		c.spawn(ctx, "ttl_refresh", func(ctx context.Context) error {
			state, err := c.persistent.Save(ctx, touch, true)
			if err != nil {
				return err
			}
			if !state {
				c.logger.Debug("cache_ttl_refresh", zap.Bool("state", state), zap.Array("items", item.Items(touch)))
			}
			return nil
		})
	}
	return result
}

// Delete removes items from both tiers. The memory tier delete is queued
// behind earlier memory writes; the persistent tier is cleared after
// DeleteDelay, once that delete has been applied.
func (c *Cache) Delete(ctx context.Context, items []item.Item) (state bool) {
	defer c.recoverOp("cache_delete_error", items, func() { state = false })

	items, complete := c.prepare("delete", items)
	if len(items) == 0 {
		return complete
	}
	ids := item.Items(items).Identities()

	applied, err := c.tasks.GoOrdered(ctx, "memory_delete", func(context.Context) error {
		c.memoryDelete(ids)
		return nil
	}, true)
	if err != nil {
		c.memoryDelete(ids)
	}

	timer := time.NewTimer(c.deleteDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		c.logger.Error("cache_delete_error", zap.Error(ctx.Err()), zap.Array("items", item.Items(items)))
		return false
	}
	if applied != nil {
		select {
		case <-applied:
		case <-ctx.Done():
			c.logger.Error("cache_delete_error", zap.Error(ctx.Err()), zap.Array("items", item.Items(items)))
			return false
		}
	}

	state, err = c.persistent.Delete(ctx, ids)
	if err != nil {
		c.logger.Error("cache_delete_error", zap.Error(err), zap.Array("items", item.Items(items)))
		return false
	}
	c.logger.Debug("cache_delete", zap.Bool("state", state), zap.Array("items", item.Items(items)))
	return state && complete
}

// UpdateTTL refreshes the persistent expiry of items without rewriting them.
func (c *Cache) UpdateTTL(ctx context.Context, items []item.Item) (state bool) {
	defer c.recoverOp("cache_ttl_error", items, func() { state = false })

	items, complete := c.prepare("update_ttl", items)
	if len(items) == 0 {
		return complete
	}

	state, err := c.persistent.Save(ctx, items, true)
	if err != nil {
		c.logger.Error("cache_ttl_error", zap.Error(err), zap.Array("items", item.Items(items)))
		return false
	}
	return state && complete
}

// Wait blocks until background tasks started so far have finished.
func (c *Cache) Wait() {
	c.tasks.Wait()
}

// Close stops accepting background work, drains running tasks until ctx is
// done and closes the memory tier if it supports closing.
func (c *Cache) Close(ctx context.Context) error {
	err := c.tasks.Close(ctx)
	if err != nil {
		c.logger.Warn("cache_drain_abandoned", zap.Error(err))
	}
	if closer, ok := c.memory.(interface{ Close() }); ok {
		closer.Close()
	}
	return err
}

// prepare drops items without a full identity and collapses duplicates. The
// flag reports whether nothing was dropped for being invalid.
func (c *Cache) prepare(op string, items []item.Item) ([]item.Item, bool) {
	valid, invalid := item.Partition(items)
	if len(invalid) > 0 {
		c.logger.Warn("cache_invalid_items", zap.String("op", op), zap.Array("items", item.Items(invalid)))
	}
	return item.Unique(valid), len(invalid) == 0
}

func (c *Cache) spawn(ctx context.Context, name string, fn func(context.Context) error) {
	if err := c.tasks.Go(ctx, name, fn); err != nil {
		c.logger.Warn("cache_task_dropped", zap.String("task", name), zap.Error(err))
	}
}

func (c *Cache) spawnOrdered(ctx context.Context, name string, fn func(context.Context) error) {
	if _, err := c.tasks.GoOrdered(ctx, name, fn, false); err != nil {
		c.logger.Warn("cache_task_dropped", zap.String("task", name), zap.Error(err))
	}
}

func (c *Cache) recoverOp(msg string, items []item.Item, onPanic func()) {
	if rec := recover(); rec != nil {
		c.logger.Error(msg,
			zap.String("panic", fmt.Sprint(rec)),
			zap.Array("items", item.Items(items)),
			zap.Stack("stack"),
		)
		if onPanic != nil {
			onPanic()
		}
	}
}

func (c *Cache) memoryGet(ids []item.Identity) (items []item.Item) {
	defer c.recoverMemory("get")
	return c.memory.GetMany(ids)
}

func (c *Cache) memoryAdd(items []item.Item) {
	defer c.recoverMemory("add")
	c.memory.AddMany(items)
}

func (c *Cache) memoryDelete(ids []item.Identity) {
	defer c.recoverMemory("delete")
	c.memory.DeleteMany(ids)
}

// recoverMemory swallows memory tier panics; the tier is an optimization and
// its failures read as misses.
func (c *Cache) recoverMemory(op string) {
	if rec := recover(); rec != nil {
		c.logger.Error("cache_memory_error", zap.String("op", op), zap.String("panic", fmt.Sprint(rec)))
	}
}
