// Package repositorycache adds read-through caching to go-repository-bun repositories.
//
// # Overview
//
// CachedRepository wraps a base repository. Get, GetByID, GetByIdentifier,
// List and Count are served from the cache; every other method goes to the
// base repository, and successful writes invalidate the affected keys.
//
//	store, _ := cache.NewCacheService(cache.DefaultConfig())
//	cached := repositorycache.New[*menu.Dish](base, store, cache.NewInvalidator(store))
//
//	dish, err := cached.GetByID(ctx, id)
//
// # Keys
//
// Keys are "<namespace>:<Method>::<args>", where the namespace defaults to the
// snake_case name of the entity type (*menu.CartItem becomes "cart_item"):
//
//	dish:GetByID::42::slice:nil
//	dish:List::slice[1]:{func:0xc000123456}
//
// Criteria functions are keyed by code address. Closures that capture
// different values share a key, so run such queries with SkipCache(ctx).
//
// # Invalidation
//
//   - Create, CreateMany, GetOrCreate: dish:List* and dish:Count*
//   - Update, Upsert, Delete, ForceDelete: the record's GetByID and
//     GetByIdentifier keys, plus dish:Get::*, dish:List* and dish:Count*
//   - DeleteMany, DeleteWhere: everything under dish:*
//
// Failed writes leave the cache untouched. Invalidation failures are logged
// by the cache.Invalidator and never fail the write.
//
// # Transactions
//
// *Tx reads bypass the cache so a transaction never sees entries populated
// outside it. *Tx writes still invalidate, before the transaction commits.
package repositorycache
