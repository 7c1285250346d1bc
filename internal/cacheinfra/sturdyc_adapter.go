package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
)

// sturdycService is the in-memory store backed by a sturdyc client.
type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates cfg and builds the sturdyc client.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key or stores the result of fetchFn,
// which must be a func(context.Context) (T, error).
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Keys scans the whole cache; cost grows with the number of cached entries.
func (s *sturdycService) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	for _, key := range s.client.ScanKeys() {
		if MatchKey(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *sturdycService) DeleteKeys(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}
