package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

const scanBatchSize = 500

// RedisConfig configures the redis backend.
type RedisConfig struct {
	URL     string
	TTL     time.Duration
	Timeout time.Duration
}

// DefaultRedisConfig returns the redis defaults for a local server.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL:     "redis://localhost:6379/0",
		TTL:     5 * time.Minute,
		Timeout: 5 * time.Second,
	}
}

func (c RedisConfig) Validate() error {
	if c.URL == "" {
		return &ConfigError{Field: "RedisURL", Message: "cannot be empty"}
	}
	if _, err := redis.ParseURL(c.URL); err != nil {
		return &ConfigError{Field: "RedisURL", Message: err.Error()}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "RedisTimeout", Message: "must be non-negative"}
	}
	return nil
}

// redisService stores msgpack encoded values in redis. Concurrent misses on
// the same key share one fetch.
type redisService struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger logrus.FieldLogger
}

// NewRedisService connects to cfg.URL and pings the server.
func NewRedisService(cfg RedisConfig) (*redisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisServiceWithClient(client, cfg.TTL), nil
}

// NewRedisServiceWithClient wraps an existing client.
func NewRedisServiceWithClient(client *redis.Client, ttl time.Duration) *redisService {
	return &redisService{
		client: client,
		ttl:    ttl,
		logger: logrus.StandardLogger().WithField("component", "redis_cache"),
	}
}

func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	resultType := fetchResultType(fetchFn)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		value, decodeErr := decodeValue(data, resultType)
		if decodeErr == nil {
			return value, nil
		}
		s.logger.WithError(decodeErr).WithField("key", key).Warn("dropping undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		s.logger.WithError(err).WithField("key", key).Warn("redis read failed, fetching from source")
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		result, err := callFetchFn(ctx, fetchFn)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, result)
		return result, nil
	})
	return value, err
}

func (s *redisService) store(ctx context.Context, key string, value any) {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache value not encodable")
		return
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("redis write failed")
	}
}

func decodeValue(data []byte, typ reflect.Type) (any, error) {
	ptr := reflect.New(typ)
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (s *redisService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisService) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *redisService) DeleteKeys(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Close releases the redis connection pool.
func (s *redisService) Close() error {
	return s.client.Close()
}
