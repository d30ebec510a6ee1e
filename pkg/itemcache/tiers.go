package itemcache

import (
	"context"

	"github.com/huynhanx03/item-store/pkg/item"
)

// MemoryTier is the process-local layer. It never blocks on the network and
// its failures are never surfaced to callers.
type MemoryTier interface {
	GetMany(ids []item.Identity) []item.Item
	AddMany(items []item.Item)
	DeleteMany(ids []item.Identity)
}

// PersistentTier is the authoritative, network-backed layer.
type PersistentTier interface {
	// Save writes items and sets their expiry. With onlyUpdateTTL it only
	// refreshes the expiry of keys already stored. It reports true only if
	// every key operation succeeded.
	Save(ctx context.Context, items []item.Item, onlyUpdateTTL bool) (bool, error)
	// Get returns the stored items found for the given identities; absent
	// keys are dropped silently.
	Get(ctx context.Context, ids []item.Identity) ([]item.Item, error)
	// Delete removes the items. It reports true once the store was reached.
	Delete(ctx context.Context, ids []item.Identity) (bool, error)
}
