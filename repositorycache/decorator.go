package repositorycache

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goliatone/go-repository-audit/cache"
	"github.com/goliatone/go-repository-audit/internal/naming"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// listResult wraps the tuple result from List operations for caching
type listResult[T any] struct {
	Records []T `json:"records" msgpack:"records"`
	Total   int `json:"total" msgpack:"total"`
}

// CachedRepository decorates a base repository with read-through caching.
// Every key starts with "<namespace>:" and writes invalidate by pattern.
type CachedRepository[T any] struct {
	base          repository.Repository[T]
	cache         cache.CacheService
	invalidator   *cache.Invalidator
	keySerializer cache.KeySerializer
	namespace     string
}

// Option configures a CachedRepository.
type Option func(*options)

type options struct {
	namespace     string
	keySerializer cache.KeySerializer
}

// WithNamespace overrides the key namespace, which defaults to the snake_case name of T.
func WithNamespace(namespace string) Option {
	return func(o *options) { o.namespace = namespace }
}

// WithKeySerializer replaces the default argument serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) { o.keySerializer = serializer }
}

// New creates a CachedRepository. Reads go through cacheService and writes
// invalidate through invalidator.
func New[T any](base repository.Repository[T], cacheService cache.CacheService, invalidator *cache.Invalidator, opts ...Option) *CachedRepository[T] {
	o := options{namespace: naming.Namespace[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedRepository[T]{
		base:          base,
		cache:         cacheService,
		invalidator:   invalidator,
		keySerializer: cache.NewNamespacedKeySerializer(o.namespace, o.keySerializer),
		namespace:     o.namespace,
	}
}

// Namespace returns the key namespace.
func (c *CachedRepository[T]) Namespace() string {
	return c.namespace
}

// Get retrieves a single record using the provided criteria, with caching
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	if skipCache(ctx) {
		return c.base.Get(ctx, criteria...)
	}
	key := c.keySerializer.SerializeKey("Get", criteria)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, criteria...)
	})
}

// GetByID retrieves a record by ID with optional criteria, with caching
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	if skipCache(ctx) {
		return c.base.GetByID(ctx, id, criteria...)
	}
	key := c.keySerializer.SerializeKey("GetByID", id, criteria)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id, criteria...)
	})
}

// List retrieves multiple records using the provided criteria, with caching
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	if skipCache(ctx) {
		return c.base.List(ctx, criteria...)
	}
	key := c.keySerializer.SerializeKey("List", criteria)
	res, err := cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (listResult[T], error) {
		records, total, err := c.base.List(ctx, criteria...)
		return listResult[T]{Records: records, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of records matching the criteria, with caching
func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	if skipCache(ctx) {
		return c.base.Count(ctx, criteria...)
	}
	key := c.keySerializer.SerializeKey("Count", criteria)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, criteria...)
	})
}

// GetByIdentifier retrieves a record by identifier with optional criteria, with caching
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	if skipCache(ctx) {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	}
	key := c.keySerializer.SerializeKey("GetByIdentifier", identifier, criteria)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	})
}

func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.Create(ctx, record, criteria...)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.CreateTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := c.base.GetOrCreate(ctx, record)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := c.base.GetOrCreateTx(ctx, tx, record)
	if err == nil {
		c.invalidateQueries(ctx)
	}
	return result, err
}

func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Update(ctx, record, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result)
	}
	return result, err
}

func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpdateTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result)
	}
	return result, err
}

func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result...)
	}
	return result, err
}

func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result...)
	}
	return result, err
}

// Upsert may insert or update, so it invalidates like an update.
func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Upsert(ctx, record, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result)
	}
	return result, err
}

func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpsertTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result)
	}
	return result, err
}

func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result...)
	}
	return result, err
}

func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateRecords(ctx, result...)
	}
	return result, err
}

func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	err := c.base.Delete(ctx, record)
	if err == nil {
		c.invalidateRecords(ctx, record)
	}
	return err
}

func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := c.base.DeleteTx(ctx, tx, record)
	if err == nil {
		c.invalidateRecords(ctx, record)
	}
	return err
}

// DeleteMany cannot tell which records went away, so the whole namespace is dropped.
func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteMany(ctx, criteria...)
	if err == nil {
		c.invalidateNamespace(ctx)
	}
	return err
}

func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteManyTx(ctx, tx, criteria...)
	if err == nil {
		c.invalidateNamespace(ctx)
	}
	return err
}

func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteWhere(ctx, criteria...)
	if err == nil {
		c.invalidateNamespace(ctx)
	}
	return err
}

func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteWhereTx(ctx, tx, criteria...)
	if err == nil {
		c.invalidateNamespace(ctx)
	}
	return err
}

func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	err := c.base.ForceDelete(ctx, record)
	if err == nil {
		c.invalidateRecords(ctx, record)
	}
	return err
}

func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := c.base.ForceDeleteTx(ctx, tx, record)
	if err == nil {
		c.invalidateRecords(ctx, record)
	}
	return err
}

// Transactional reads bypass the cache.
func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}

func (c *CachedRepository[T]) prefix(method string) string {
	return cache.EscapePattern(c.namespace + cache.NamespaceDelimiter + method)
}

// invalidateQueries drops result sets that a new row can change.
func (c *CachedRepository[T]) invalidateQueries(ctx context.Context) {
	c.invalidate(ctx,
		c.prefix("List")+cache.Wildcard,
		c.prefix("Count")+cache.Wildcard,
	)
}

// invalidateRecords drops the lookups of each record plus every query result.
func (c *CachedRepository[T]) invalidateRecords(ctx context.Context, records ...T) {
	patterns := []string{
		c.prefix("Get"+cache.KeySeparator) + cache.Wildcard,
		c.prefix("List") + cache.Wildcard,
		c.prefix("Count") + cache.Wildcard,
	}
	for _, record := range records {
		if id, ok := fieldString(record, "ID", "Id"); ok {
			patterns = append(patterns, c.prefix("GetByID"+cache.KeySeparator+id+cache.KeySeparator)+cache.Wildcard)
		}
		if identifier, ok := fieldString(record, "Identifier", "Code", "Slug"); ok {
			patterns = append(patterns, c.prefix("GetByIdentifier"+cache.KeySeparator+identifier+cache.KeySeparator)+cache.Wildcard)
		}
	}
	c.invalidate(ctx, patterns...)
}

func (c *CachedRepository[T]) invalidateNamespace(ctx context.Context) {
	c.invalidate(ctx, c.prefix("")+cache.Wildcard)
}

func (c *CachedRepository[T]) invalidate(ctx context.Context, patterns ...string) {
	if c.invalidator == nil {
		return
	}
	for _, pattern := range patterns {
		// failures are logged by the invalidator; the write already succeeded
		_, _ = c.invalidator.Invalidate(ctx, pattern)
	}
}

// fieldString returns the first named field of record rendered with fmt.
func fieldString(record any, names ...string) (string, bool) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", false
	}
	for _, name := range names {
		field := v.FieldByName(name)
		if field.IsValid() && field.CanInterface() {
			return fmt.Sprint(field.Interface()), true
		}
	}
	return "", false
}
