package settings

type Config struct {
	Server    Server    `mapstructure:"server"`
	Logger    Logger    `mapstructure:"logger"`
	Redis     Redis     `mapstructure:"redis"`
	Memcache  Memcache  `mapstructure:"memcache"`
	Bolt      Bolt      `mapstructure:"bolt"`
	ItemCache ItemCache `mapstructure:"item_cache"`
}

// Server is the configuration for the server
type Server struct {
	Mode            string `mapstructure:"mode"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // Seconds
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// Redis is the configuration for Redis. One address selects a standalone
// client, several a cluster client, and MasterName a sentinel failover client.
type Redis struct {
	Addrs           []string `mapstructure:"addrs"`
	MasterName      string   `mapstructure:"master_name"`
	Password        string   `mapstructure:"password"`
	Database        int      `mapstructure:"database"`
	PoolSize        int      `mapstructure:"pool_size"`
	MinIdleConns    int      `mapstructure:"min_idle_conns"`
	PoolTimeout     int      `mapstructure:"pool_timeout"`  // Seconds
	DialTimeout     int      `mapstructure:"dial_timeout"`  // Milliseconds
	ReadTimeout     int      `mapstructure:"read_timeout"`  // Milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"` // Milliseconds
	MaxRetries      int      `mapstructure:"max_retries"`
	MaxRetryBackoff int      `mapstructure:"max_retry_backoff"` // Milliseconds
	MinRetryBackoff int      `mapstructure:"min_retry_backoff"` // Milliseconds
	KeepAlive       bool     `mapstructure:"keep_alive"`
	ConnMaxIdleTime int      `mapstructure:"conn_max_idle_time"` // Seconds
}

// Memcache is the configuration for memcached
type Memcache struct {
	Servers      []string `mapstructure:"servers"`
	Timeout      int      `mapstructure:"timeout"` // Milliseconds
	MaxIdleConns int      `mapstructure:"max_idle_conns"`
}

// Bolt is the configuration for the embedded bbolt store
type Bolt struct {
	Path    string `mapstructure:"path"`
	Bucket  string `mapstructure:"bucket"`
	Timeout int    `mapstructure:"timeout"` // Milliseconds, file lock wait
}

// ItemCache is the configuration for the two-tier item cache
type ItemCache struct {
	Backend            string `mapstructure:"backend"`
	Namespace          string `mapstructure:"namespace"`
	KeyTemplate        string `mapstructure:"key_template"`
	MemoryCapacity     int64  `mapstructure:"memory_capacity"`
	MemoryTTL          int    `mapstructure:"memory_ttl"`     // Seconds
	PersistentTTL      int    `mapstructure:"persistent_ttl"` // Seconds
	DeleteDelay        int    `mapstructure:"delete_delay"`   // Milliseconds
	BackgroundTimeout  int    `mapstructure:"background_timeout"`
	MaxBackgroundTasks int64  `mapstructure:"max_background_tasks"`
	DrainTimeout       int    `mapstructure:"drain_timeout"` // Milliseconds
}

const (
	BackendRedis    = "redis"
	BackendMemcache = "memcache"
	BackendBolt     = "bolt"
)
