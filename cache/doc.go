// Package cache provides read-through caching and pattern based invalidation.
//
// # Overview
//
// The package exports the contracts shared by repositories and use-cases:
//
//   - CacheService: read-through access with GetOrFetch
//   - KeyStore: enumerate keys by glob pattern and delete them
//   - KeySerializer: stable cache keys from method names and arguments
//   - Invalidator: deletes every key matching a pattern after a write
//
// Two backends are available through NewCacheService: an in-memory sturdyc
// store (BackendMemory) and redis (BackendRedis).
//
// # Read-through
//
//	dishes, err := cache.GetOrFetch(ctx, store, cache.Key("dish", categoryID),
//		func(ctx context.Context) ([]*menu.Dish, error) {
//			return repo.ListByCategory(ctx, categoryID)
//		})
//
// # Invalidation
//
// Keys follow the "<namespace>_<id>" convention. After a successful write the
// caller picks the scope:
//
//	invalidator := cache.NewInvalidator(store)
//	invalidator.Narrow(ctx, "dish", categoryID) // only dish_<categoryID>
//	invalidator.Broad(ctx, "dish")              // every dish_* key
//
// Patterns use glob syntax: '*' matches any run of characters, '?' a single
// character and [...] a character class. EscapePattern quotes ids that contain
// metacharacters. Invalidating a pattern with no matches is a no-op.
package cache
