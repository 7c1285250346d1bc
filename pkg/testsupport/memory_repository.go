package testsupport

import (
	"context"
	"errors"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned by MemoryRepository lookups that match nothing.
var ErrNotFound = errors.New("testsupport: record not found")

var _ repository.Repository[any] = (*MemoryRepository[any])(nil)

// Call is one recorded repository invocation.
type Call[T any] struct {
	Method  string
	Records []T
}

// MemoryRepository is a map backed repository.Repository for tests. Criteria
// are ignored: List returns every record in insertion order.
type MemoryRepository[T any] struct {
	mu      sync.Mutex
	idOf    func(T) string
	records map[string]T
	order   []string
	calls   []Call[T]
	errs    map[string]error
}

// NewMemoryRepository returns an empty repository keyed by idOf.
func NewMemoryRepository[T any](idOf func(T) string) *MemoryRepository[T] {
	return &MemoryRepository[T]{
		idOf:    idOf,
		records: make(map[string]T),
		errs:    make(map[string]error),
	}
}

// FailOn makes method return err until cleared with a nil error.
func (m *MemoryRepository[T]) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, method)
		return
	}
	m.errs[method] = err
}

// Seed stores records without recording calls.
func (m *MemoryRepository[T]) Seed(records ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.put(r)
	}
}

// Calls returns a copy of the recorded invocations.
func (m *MemoryRepository[T]) Calls() []Call[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call[T](nil), m.calls...)
}

// CallCount returns how many times method was invoked.
func (m *MemoryRepository[T]) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Records returns the stored records in insertion order.
func (m *MemoryRepository[T]) Records() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all()
}

func (m *MemoryRepository[T]) record(method string, records ...T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call[T]{Method: method, Records: records})
	return m.errs[method]
}

func (m *MemoryRepository[T]) put(r T) {
	id := m.idOf(r)
	if _, ok := m.records[id]; !ok {
		m.order = append(m.order, id)
	}
	m.records[id] = r
}

func (m *MemoryRepository[T]) remove(id string) {
	if _, ok := m.records[id]; !ok {
		return
	}
	delete(m.records, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *MemoryRepository[T]) all() []T {
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out
}

func (m *MemoryRepository[T]) get(method string) (T, error) {
	var zero T
	if err := m.record(method); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return zero, ErrNotFound
	}
	return m.records[m.order[0]], nil
}

func (m *MemoryRepository[T]) getByID(method, id string) (T, error) {
	var zero T
	if err := m.record(method); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return zero, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepository[T]) list(method string) ([]T, int, error) {
	if err := m.record(method); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.all()
	return records, len(records), nil
}

func (m *MemoryRepository[T]) save(method string, record T) (T, error) {
	if err := m.record(method, record); err != nil {
		var zero T
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(record)
	return record, nil
}

func (m *MemoryRepository[T]) saveMany(method string, records []T) ([]T, error) {
	if err := m.record(method, records...); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.put(r)
	}
	return records, nil
}

func (m *MemoryRepository[T]) delete(method string, record T) error {
	if err := m.record(method, record); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(m.idOf(record))
	return nil
}

func (m *MemoryRepository[T]) deleteAll(method string) error {
	if err := m.record(method); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]T)
	m.order = nil
	return nil
}

func (m *MemoryRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return m.get("Get")
}

func (m *MemoryRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return m.getByID("GetByID", id)
}

func (m *MemoryRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return m.getByID("GetByIdentifier", identifier)
}

func (m *MemoryRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return m.list("List")
}

func (m *MemoryRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	_, total, err := m.list("Count")
	return total, err
}

func (m *MemoryRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return m.get("GetTx")
}

func (m *MemoryRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return m.getByID("GetByIDTx", id)
}

func (m *MemoryRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return m.getByID("GetByIdentifierTx", identifier)
}

func (m *MemoryRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return m.list("ListTx")
}

func (m *MemoryRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	_, total, err := m.list("CountTx")
	return total, err
}

func (m *MemoryRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	return m.save("Create", record)
}

func (m *MemoryRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	return m.save("CreateTx", record)
}

func (m *MemoryRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return m.saveMany("CreateMany", records)
}

func (m *MemoryRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return m.saveMany("CreateManyTx", records)
}

func (m *MemoryRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	return m.getOrCreate("GetOrCreate", record)
}

func (m *MemoryRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	return m.getOrCreate("GetOrCreateTx", record)
}

func (m *MemoryRepository[T]) getOrCreate(method string, record T) (T, error) {
	if err := m.record(method, record); err != nil {
		var zero T
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[m.idOf(record)]; ok {
		return existing, nil
	}
	m.put(record)
	return record, nil
}

func (m *MemoryRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return m.save("Update", record)
}

func (m *MemoryRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return m.save("UpdateTx", record)
}

func (m *MemoryRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return m.saveMany("UpdateMany", records)
}

func (m *MemoryRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return m.saveMany("UpdateManyTx", records)
}

func (m *MemoryRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return m.save("Upsert", record)
}

func (m *MemoryRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return m.save("UpsertTx", record)
}

func (m *MemoryRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return m.saveMany("UpsertMany", records)
}

func (m *MemoryRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return m.saveMany("UpsertManyTx", records)
}

func (m *MemoryRepository[T]) Delete(ctx context.Context, record T) error {
	return m.delete("Delete", record)
}

func (m *MemoryRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return m.delete("DeleteTx", record)
}

func (m *MemoryRepository[T]) ForceDelete(ctx context.Context, record T) error {
	return m.delete("ForceDelete", record)
}

func (m *MemoryRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return m.delete("ForceDeleteTx", record)
}

// DeleteMany and the other criteria deletes clear the whole repository.
func (m *MemoryRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return m.deleteAll("DeleteMany")
}

func (m *MemoryRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return m.deleteAll("DeleteManyTx")
}

func (m *MemoryRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return m.deleteAll("DeleteWhere")
}

func (m *MemoryRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return m.deleteAll("DeleteWhereTx")
}

func (m *MemoryRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	records, _, err := m.list("Raw")
	return records, err
}

func (m *MemoryRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	records, _, err := m.list("RawTx")
	return records, err
}

func (m *MemoryRepository[T]) Handlers() repository.ModelHandlers[T] {
	return repository.ModelHandlers[T]{}
}
