package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", env+".yaml"), []byte(body), 0o644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDeploy, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvRedisKeepAlive, "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.ItemCache.Backend)
	assert.Equal(t, "item_store", cfg.ItemCache.Namespace)
	assert.Equal(t, int64(10000), cfg.ItemCache.MemoryCapacity)
	assert.Equal(t, 60, cfg.ItemCache.MemoryTTL)
	assert.Equal(t, 172800, cfg.ItemCache.PersistentTTL)
	assert.Equal(t, 100, cfg.ItemCache.DeleteDelay)
	assert.Equal(t, int64(1024), cfg.ItemCache.MaxBackgroundTasks)
	assert.Equal(t, []string{"localhost:6380"}, cfg.Redis.Addrs)
	assert.True(t, cfg.Redis.KeepAlive)
	assert.Equal(t, "debug", cfg.Logger.LogLevel)
}

func TestLoad_FileForDeployEnv(t *testing.T) {
	dir := writeConfig(t, "staging", `
item_cache:
  backend: bolt
  memory_capacity: 50
bolt:
  path: /tmp/items.db
logger:
  log_level: warn
`)
	t.Setenv(EnvDeploy, "staging")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvRedisKeepAlive, "")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendBolt, cfg.ItemCache.Backend)
	assert.Equal(t, int64(50), cfg.ItemCache.MemoryCapacity)
	assert.Equal(t, "/tmp/items.db", cfg.Bolt.Path)
	assert.Equal(t, "warn", cfg.Logger.LogLevel)
	// untouched keys keep their defaults
	assert.Equal(t, 60, cfg.ItemCache.MemoryTTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvDeploy, "")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvRedisKeepAlive, "1")
	t.Setenv("ITEMSTORE_ITEM_CACHE_NAMESPACE", "tenant_a")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logger.LogLevel)
	assert.False(t, cfg.Redis.KeepAlive)
	assert.Equal(t, "tenant_a", cfg.ItemCache.Namespace)
}

func TestLoad_InvalidBackend(t *testing.T) {
	dir := writeConfig(t, "local", "item_cache:\n  backend: dynamo\n")
	t.Setenv(EnvDeploy, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvRedisKeepAlive, "")

	_, err := Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "redis ok",
			cfg:  Config{Redis: Redis{Addrs: []string{"a:1"}}, ItemCache: ItemCache{Backend: BackendRedis, MemoryCapacity: 1}},
		},
		{
			name:    "redis without addrs",
			cfg:     Config{ItemCache: ItemCache{Backend: BackendRedis, MemoryCapacity: 1}},
			wantErr: true,
		},
		{
			name:    "memcache without servers",
			cfg:     Config{ItemCache: ItemCache{Backend: BackendMemcache, MemoryCapacity: 1}},
			wantErr: true,
		},
		{
			name:    "zero capacity",
			cfg:     Config{Bolt: Bolt{Path: "x.db"}, ItemCache: ItemCache{Backend: BackendBolt}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
