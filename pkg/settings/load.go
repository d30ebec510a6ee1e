package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvDeploy         = "DEPLOY_APP_ENV"
	EnvLogLevel       = "RESET_LOGGING_LEVEL"
	EnvRedisKeepAlive = "OFF_REDIS_KEEPALIVE"

	envPrefix     = "ITEMSTORE"
	defaultDeploy = "local"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads configuration for the current deploy environment. Values are
// layered as defaults, then config/<DEPLOY_APP_ENV>.yaml under dir if it
// exists, then ITEMSTORE_* environment variables. A .env file in the working
// directory is loaded first when present.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, "config", DeployEnv()+".yaml")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	applyOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeployEnv returns the deploy environment name.
func DeployEnv() string {
	if env := os.Getenv(EnvDeploy); env != "" {
		return env
	}
	return defaultDeploy
}

// Validate checks values that would otherwise fail late at wiring time.
func (c *Config) Validate() error {
	switch c.ItemCache.Backend {
	case BackendRedis:
		if len(c.Redis.Addrs) == 0 {
			return errors.Wrap(ErrInvalidConfig, "redis.addrs is empty")
		}
	case BackendMemcache:
		if len(c.Memcache.Servers) == 0 {
			return errors.Wrap(ErrInvalidConfig, "memcache.servers is empty")
		}
	case BackendBolt:
		if c.Bolt.Path == "" {
			return errors.Wrap(ErrInvalidConfig, "bolt.path is empty")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown item_cache.backend %q", c.ItemCache.Backend)
	}
	if c.ItemCache.MemoryCapacity <= 0 {
		return errors.Wrap(ErrInvalidConfig, "item_cache.memory_capacity must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("logger.log_level", "debug")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("redis.addrs", []string{"localhost:6380"})
	v.SetDefault("redis.dial_timeout", 500)
	v.SetDefault("redis.read_timeout", 500)
	v.SetDefault("redis.write_timeout", 500)
	v.SetDefault("redis.keep_alive", true)

	v.SetDefault("memcache.servers", []string{"localhost:11211"})
	v.SetDefault("memcache.timeout", 500)

	v.SetDefault("bolt.path", "data/item_store.db")
	v.SetDefault("bolt.bucket", "items")
	v.SetDefault("bolt.timeout", 1000)

	v.SetDefault("item_cache.backend", BackendRedis)
	v.SetDefault("item_cache.namespace", "item_store")
	v.SetDefault("item_cache.key_template", "{namespace}:{item_type}:{item_id}")
	v.SetDefault("item_cache.memory_capacity", 10000)
	v.SetDefault("item_cache.memory_ttl", 60)
	v.SetDefault("item_cache.persistent_ttl", 172800)
	v.SetDefault("item_cache.delete_delay", 100)
	v.SetDefault("item_cache.background_timeout", 5000)
	v.SetDefault("item_cache.max_background_tasks", 1024)
	v.SetDefault("item_cache.drain_timeout", 5000)
}

// applyOverrides maps the legacy environment switches onto the config.
func applyOverrides(cfg *Config) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logger.LogLevel = strings.ToLower(level)
	}
	if os.Getenv(EnvRedisKeepAlive) != "" {
		cfg.Redis.KeepAlive = false
	}
}
