package repositoryaudit

import (
	"context"

	"github.com/goliatone/go-repository-audit/internal/naming"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

var _ repository.Repository[any] = (*AuditedRepository[any])(nil)

// AuditedRepository stamps audit fields on records before classified writes
// reach the base repository. Reads, deletes and raw queries pass through.
type AuditedRepository[T any] struct {
	base        repository.Repository[T]
	interceptor *Interceptor
	namespace   string
}

// RepositoryOption configures an AuditedRepository.
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	namespace string
}

// WithNamespace overrides the namespace used for "namespace.Method" lookups.
func WithNamespace(namespace string) RepositoryOption {
	return func(o *repositoryOptions) {
		o.namespace = namespace
	}
}

// New wraps base. The namespace defaults to the snake_case name of T.
func New[T any](base repository.Repository[T], interceptor *Interceptor, opts ...RepositoryOption) *AuditedRepository[T] {
	o := repositoryOptions{namespace: naming.Namespace[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	if interceptor == nil {
		interceptor = NewInterceptor(nil)
	}
	return &AuditedRepository[T]{
		base:        base,
		interceptor: interceptor,
		namespace:   o.namespace,
	}
}

// Namespace returns the namespace used for classification lookups.
func (r *AuditedRepository[T]) Namespace() string {
	return r.namespace
}

func (r *AuditedRepository[T]) stamp(ctx context.Context, method string, record T) {
	r.interceptor.BeforeMethod(ctx, r.namespace, method, record)
}

func (r *AuditedRepository[T]) stampAll(ctx context.Context, method string, records []T) {
	for _, record := range records {
		r.interceptor.BeforeMethod(ctx, r.namespace, method, record)
	}
}

func (r *AuditedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	r.stamp(ctx, "Create", record)
	return r.base.Create(ctx, record, criteria...)
}

func (r *AuditedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	r.stamp(ctx, "CreateTx", record)
	return r.base.CreateTx(ctx, tx, record, criteria...)
}

func (r *AuditedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	r.stampAll(ctx, "CreateMany", records)
	return r.base.CreateMany(ctx, records, criteria...)
}

func (r *AuditedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	r.stampAll(ctx, "CreateManyTx", records)
	return r.base.CreateManyTx(ctx, tx, records, criteria...)
}

// GetOrCreate stamps the candidate record; if a row already exists the stamp is discarded with it.
func (r *AuditedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	r.stamp(ctx, "GetOrCreate", record)
	return r.base.GetOrCreate(ctx, record)
}

func (r *AuditedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	r.stamp(ctx, "GetOrCreateTx", record)
	return r.base.GetOrCreateTx(ctx, tx, record)
}

func (r *AuditedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	r.stamp(ctx, "Update", record)
	return r.base.Update(ctx, record, criteria...)
}

func (r *AuditedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	r.stamp(ctx, "UpdateTx", record)
	return r.base.UpdateTx(ctx, tx, record, criteria...)
}

func (r *AuditedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	r.stampAll(ctx, "UpdateMany", records)
	return r.base.UpdateMany(ctx, records, criteria...)
}

func (r *AuditedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	r.stampAll(ctx, "UpdateManyTx", records)
	return r.base.UpdateManyTx(ctx, tx, records, criteria...)
}

func (r *AuditedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	r.stamp(ctx, "Upsert", record)
	return r.base.Upsert(ctx, record, criteria...)
}

func (r *AuditedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	r.stamp(ctx, "UpsertTx", record)
	return r.base.UpsertTx(ctx, tx, record, criteria...)
}

func (r *AuditedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	r.stampAll(ctx, "UpsertMany", records)
	return r.base.UpsertMany(ctx, records, criteria...)
}

func (r *AuditedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	r.stampAll(ctx, "UpsertManyTx", records)
	return r.base.UpsertManyTx(ctx, tx, records, criteria...)
}

func (r *AuditedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.Get(ctx, criteria...)
}

func (r *AuditedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByID(ctx, id, criteria...)
}

func (r *AuditedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIdentifier(ctx, identifier, criteria...)
}

func (r *AuditedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return r.base.List(ctx, criteria...)
}

func (r *AuditedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return r.base.Count(ctx, criteria...)
}

func (r *AuditedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetTx(ctx, tx, criteria...)
}

func (r *AuditedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIDTx(ctx, tx, id, criteria...)
}

func (r *AuditedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

func (r *AuditedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return r.base.ListTx(ctx, tx, criteria...)
}

func (r *AuditedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return r.base.CountTx(ctx, tx, criteria...)
}

func (r *AuditedRepository[T]) Delete(ctx context.Context, record T) error {
	return r.base.Delete(ctx, record)
}

func (r *AuditedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return r.base.DeleteTx(ctx, tx, record)
}

func (r *AuditedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return r.base.DeleteMany(ctx, criteria...)
}

func (r *AuditedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return r.base.DeleteManyTx(ctx, tx, criteria...)
}

func (r *AuditedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return r.base.DeleteWhere(ctx, criteria...)
}

func (r *AuditedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return r.base.DeleteWhereTx(ctx, tx, criteria...)
}

func (r *AuditedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	return r.base.ForceDelete(ctx, record)
}

func (r *AuditedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return r.base.ForceDeleteTx(ctx, tx, record)
}

func (r *AuditedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return r.base.Raw(ctx, sql, args...)
}

func (r *AuditedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return r.base.RawTx(ctx, tx, sql, args...)
}

func (r *AuditedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return r.base.Handlers()
}
