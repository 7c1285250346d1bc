package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedType is returned when a cached value is not of the requested type.
var ErrUnexpectedType = errors.New("cache: unexpected cached type")

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through caching operations used by repositories and use-cases.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
}

// KeyStore enumerates and deletes keys by glob pattern.
type KeyStore interface {
	// Keys returns every key matching pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	DeleteKeys(ctx context.Context, keys ...string) error
}

// Store is a cache backend that supports both read-through access and pattern invalidation.
type Store interface {
	CacheService
	KeyStore
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
// A cached nil yields the zero value of T. A value of another type is an error.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T, want %T", ErrUnexpectedType, key, result, zero)
	}
	return value, nil
}
