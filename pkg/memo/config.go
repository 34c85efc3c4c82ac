package memo

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/memo-go/pkg/metrics"
)

// StoreType defines the type of slot storage backend to use.
type StoreType int

const (
	// StoreTypeMemory uses in-process storage (default).
	StoreTypeMemory StoreType = iota
	// StoreTypeRedis uses Redis as the slot storage backend. Only
	// Serialized-strategy methods are supported; see ErrRemoteReference.
	StoreTypeRedis
)

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	// Client is a pre-configured Redis client.
	// If nil, a new client will be created using Addr, Password, DB.
	Client redis.Cmdable

	// Addr is the Redis server address (host:port).
	// Only used if Client is nil.
	Addr string

	// Password for Redis authentication.
	// Only used if Client is nil.
	Password string

	// DB is the Redis database number to use.
	// Only used if Client is nil.
	DB int

	// KeyPrefix is prepended to all slot keys.
	// Default: "memo:".
	KeyPrefix string
}

// MetricsConfig holds metrics exporter configuration.
type MetricsConfig struct {
	// Exporter is the metrics exporter to use.
	Exporter metrics.Exporter

	// Enabled determines whether metrics collection is enabled.
	Enabled bool

	// EngineName is the name label applied to all metrics for this engine.
	EngineName string

	// ReportingInterval determines how often stats are exported
	// automatically. Set to 0 to disable automatic reporting.
	ReportingInterval time.Duration

	// Labels are additional labels applied to all metrics.
	Labels metrics.Labels
}

// Config defines the configuration options for an Engine.
type Config struct {
	// StoreType determines which slot storage backend to use.
	// Default: StoreTypeMemory.
	StoreType StoreType

	// MaxInstances bounds the number of instances the memory store tracks,
	// evicting the least recently used instance's slots when full. Zero
	// means unbounded; use the teardown protocol to reclaim slots instead.
	MaxInstances int

	// Registry is the descriptor registry to consult. If nil, the package
	// default registry is used.
	Registry *Registry

	// Hooks defines event callbacks for engine operations.
	Hooks *Hooks

	// Logger receives engine lifecycle messages. If nil, logging is
	// disabled.
	Logger Logger

	// Redis holds Redis-specific configuration.
	// Only used when StoreType is StoreTypeRedis.
	Redis *RedisConfig

	// Metrics holds metrics exporter configuration.
	// If nil, no metrics will be exported.
	Metrics *MetricsConfig
}

// NewDefaultConfig returns a Config with sensible defaults for in-memory
// storage.
func NewDefaultConfig() *Config {
	return &Config{
		StoreType:    StoreTypeMemory,
		MaxInstances: 0,
		Registry:     nil, // will use DefaultRegistry
		Hooks:        &Hooks{},
		Logger:       nil,
	}
}

// NewRedisConfig returns a Config configured for Redis slot storage.
func NewRedisConfig(addr string) *Config {
	return &Config{
		StoreType: StoreTypeRedis,
		Hooks:     &Hooks{},
		Redis: &RedisConfig{
			Addr:      addr,
			KeyPrefix: "memo:",
		},
	}
}

// WithMaxInstances bounds the number of instances tracked by the memory
// store.
func (c *Config) WithMaxInstances(maxInstances int) *Config {
	c.MaxInstances = maxInstances
	return c
}

// WithRegistry sets the descriptor registry the engine consults.
func (c *Config) WithRegistry(registry *Registry) *Config {
	c.Registry = registry
	return c
}

// WithHooks sets the event hooks for engine operations.
func (c *Config) WithHooks(hooks *Hooks) *Config {
	c.Hooks = hooks
	return c
}

// WithLogger sets the engine logger.
func (c *Config) WithLogger(logger Logger) *Config {
	c.Logger = logger
	return c
}

// WithLogging installs logging hooks built from the given configuration and
// sets the engine logger.
func (c *Config) WithLogging(loggingConfig *LoggingConfig) *Config {
	if loggingConfig == nil {
		return c
	}
	c.Logger = loggingConfig.Logger
	logging := CreateLoggingHooks(loggingConfig)
	if c.Hooks == nil {
		c.Hooks = logging
		return c
	}
	c.Hooks.OnHit = append(c.Hooks.OnHit, logging.OnHit...)
	c.Hooks.OnMiss = append(c.Hooks.OnMiss, logging.OnMiss...)
	c.Hooks.OnInvalidate = append(c.Hooks.OnInvalidate, logging.OnInvalidate...)
	c.Hooks.OnTeardown = append(c.Hooks.OnTeardown, logging.OnTeardown...)
	c.Hooks.OnEvict = append(c.Hooks.OnEvict, logging.OnEvict...)
	return c
}

// WithRedis configures the engine to use Redis slot storage.
func (c *Config) WithRedis(redisConfig *RedisConfig) *Config {
	c.StoreType = StoreTypeRedis
	c.Redis = redisConfig
	// The owner bound only applies to the memory store.
	c.MaxInstances = 0
	return c
}

// WithRedisAddr configures the engine to use Redis at the given address.
func (c *Config) WithRedisAddr(addr string) *Config {
	return c.WithRedis(&RedisConfig{
		Addr:      addr,
		KeyPrefix: "memo:",
	})
}

// WithRedisClient configures the engine to use a pre-configured Redis
// client.
func (c *Config) WithRedisClient(client redis.Cmdable) *Config {
	return c.WithRedis(&RedisConfig{
		Client:    client,
		KeyPrefix: "memo:",
	})
}

// WithMetrics configures metrics export.
func (c *Config) WithMetrics(metricsConfig *MetricsConfig) *Config {
	c.Metrics = metricsConfig
	return c
}

// WithMetricsExporter configures metrics with the given exporter and engine
// name.
func (c *Config) WithMetricsExporter(exporter metrics.Exporter, engineName string) *Config {
	c.Metrics = &MetricsConfig{
		Exporter:          exporter,
		Enabled:           true,
		EngineName:        engineName,
		ReportingInterval: 30 * time.Second,
		Labels:            make(metrics.Labels),
	}
	return c
}
