package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/database/bolt"
	"github.com/huynhanx03/item-store/pkg/database/memcache"
	"github.com/huynhanx03/item-store/pkg/database/redis"
	"github.com/huynhanx03/item-store/pkg/settings"
)

const boltPurgeInterval = time.Minute

// openStore connects the configured persistent backend.
func openStore(ctx context.Context, cfg *settings.Config, log *zap.Logger) (cache.RemoteStore, error) {
	switch cfg.ItemCache.Backend {
	case settings.BackendRedis:
		store, err := redis.NewConnection(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	case settings.BackendMemcache:
		store, err := memcache.NewConnection(&cfg.Memcache)
		if err != nil {
			return nil, err
		}
		return store, nil
	case settings.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Bolt.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create bolt directory")
		}
		store, err := bolt.Open(&cfg.Bolt)
		if err != nil {
			return nil, err
		}
		go purgeExpired(ctx, store, log)
		return store, nil
	}
	return nil, errors.Wrapf(settings.ErrInvalidConfig, "unknown backend %q", cfg.ItemCache.Backend)
}

// purgeExpired reclaims space held by expired bolt records until ctx is done.
func purgeExpired(ctx context.Context, store *bolt.Store, log *zap.Logger) {
	ticker := time.NewTicker(boltPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Warn("bolt_purge_error", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Debug("bolt_purge", zap.Int("removed", removed))
			}
		}
	}
}
