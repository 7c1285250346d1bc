package cache

import (
	"fmt"
	"time"

	"github.com/goliatone/go-repository-audit/internal/cacheinfra"
)

// Supported cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures the cache backend.
type Config struct {
	// Backend is BackendMemory (default) or BackendRedis.
	Backend string

	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration

	// RedisURL is parsed with redis.ParseURL, e.g. redis://localhost:6379/0.
	RedisURL     string
	RedisTimeout time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns an in-memory Config populated with sensible defaults.
func DefaultConfig() Config {
	cfg := fromMemoryConfig(cacheinfra.DefaultConfig())
	cfg.Backend = BackendMemory
	cfg.RedisTimeout = cacheinfra.DefaultRedisConfig().Timeout
	return cfg
}

// Validate checks whether the configuration values are valid for the selected backend.
func (c Config) Validate() error {
	switch c.backend() {
	case BackendMemory:
		return c.memoryConfig().Validate()
	case BackendRedis:
		return c.redisConfig().Validate()
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: fmt.Sprintf("unsupported backend %q", c.Backend)}
	}
}

// NewCacheService constructs the cache store selected by cfg.Backend.
func NewCacheService(cfg Config) (Store, error) {
	switch cfg.backend() {
	case BackendMemory:
		svc, err := cacheinfra.NewSturdycService(cfg.memoryConfig())
		if err != nil {
			return nil, err
		}
		return svc, nil
	case BackendRedis:
		svc, err := cacheinfra.NewRedisService(cfg.redisConfig())
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, cfg.Validate()
	}
}

func (c Config) backend() string {
	if c.Backend == "" {
		return BackendMemory
	}
	return c.Backend
}

func (c Config) redisConfig() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		URL:     c.RedisURL,
		TTL:     c.TTL,
		Timeout: c.RedisTimeout,
	}
}

func (c Config) memoryConfig() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}

func fromMemoryConfig(cfg cacheinfra.Config) Config {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
