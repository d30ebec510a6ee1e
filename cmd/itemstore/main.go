package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/huynhanx03/item-store/pkg/common/cache"
	"github.com/huynhanx03/item-store/pkg/item"
	"github.com/huynhanx03/item-store/pkg/itemcache"
	"github.com/huynhanx03/item-store/pkg/logger"
	"github.com/huynhanx03/item-store/pkg/server"
	"github.com/huynhanx03/item-store/pkg/settings"
	"github.com/huynhanx03/item-store/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "item-store: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := settings.Load(".")
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys, err := cache.NewKeyFormatter(cfg.ItemCache.Namespace, cfg.ItemCache.KeyTemplate)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("store_close_error", zap.Error(err))
		}
	}()

	ic := cfg.ItemCache
	memory := itemcache.NewTinyLFUMemory(ic.MemoryCapacity, utils.ToDuration(ic.MemoryTTL), keys)
	persistent := itemcache.NewRemotePersistent(store, keys, item.JSONCodec{}, utils.ToDuration(ic.PersistentTTL), log)
	itemCache := itemcache.New(memory, persistent, itemcache.Options{
		DeleteDelay:        utils.ToDurationMs(ic.DeleteDelay),
		BackgroundTimeout:  utils.ToDurationMs(ic.BackgroundTimeout),
		MaxBackgroundTasks: ic.MaxBackgroundTasks,
	}, log)

	srv := server.New(&cfg.Server, itemCache, log)
	serveErr := srv.Start()
	log.Info("item_store started",
		zap.String("env", settings.DeployEnv()),
		zap.String("backend", ic.Backend),
		zap.String("namespace", keys.Namespace()),
	)

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("http_server stopped", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ToDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_server shutdown", zap.Error(err))
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), utils.ToDurationMs(ic.DrainTimeout))
	defer cancelDrain()
	if err := itemCache.Close(drainCtx); err != nil {
		log.Warn("item_cache drain", zap.Error(err))
	}

	log.Info("item_store stopped")
	return nil
}
