package menu

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

var errStoreDown = errors.New("store down")

type fakeDishes struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Dish
	order   []uuid.UUID
	failOn  string
	// shared hands out the stored pointer, as the read cache does.
	shared bool
}

func newFakeDishes(dishes ...*Dish) *fakeDishes {
	f := &fakeDishes{records: map[uuid.UUID]*Dish{}}
	for _, d := range dishes {
		f.records[d.ID] = d
		f.order = append(f.order, d.ID)
	}
	return f
}

func (f *fakeDishes) Create(ctx context.Context, dish *Dish) (*Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "Create" {
		return nil, errStoreDown
	}
	audit.Stamp(dish, audit.OperationCreate, audit.CurrentActor(ctx), time.Now())
	f.records[dish.ID] = dish
	f.order = append(f.order, dish.ID)
	return dish, nil
}

func (f *fakeDishes) Update(ctx context.Context, dish *Dish) (*Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[dish.ID]; !ok {
		return nil, ErrDishNotFound
	}
	f.records[dish.ID] = dish
	return dish, nil
}

func (f *fakeDishes) UpdateStatus(ctx context.Context, id uuid.UUID, status int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dish, ok := f.records[id]
	if !ok {
		return ErrDishNotFound
	}
	dish.Status = status
	return nil
}

func (f *fakeDishes) GetByID(ctx context.Context, id uuid.UUID) (*Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dish, ok := f.records[id]
	if !ok {
		return nil, ErrDishNotFound
	}
	if f.shared {
		return dish, nil
	}
	copied := *dish
	return &copied, nil
}

func (f *fakeDishes) ListByCategory(ctx context.Context, categoryID uuid.UUID, status *int) ([]*Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "ListByCategory" {
		return nil, errStoreDown
	}
	var out []*Dish
	for _, id := range f.order {
		dish, ok := f.records[id]
		if !ok || dish.CategoryID != categoryID {
			continue
		}
		if status != nil && dish.Status != *status {
			continue
		}
		copied := *dish
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeDishes) Page(ctx context.Context, query PageQuery) ([]*Dish, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*Dish
	for _, id := range f.order {
		if dish, ok := f.records[id]; ok {
			all = append(all, dish)
		}
	}
	start := query.offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + query.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f *fakeDishes) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.records, id)
	}
	return nil
}

type fakeFlavors struct {
	mu      sync.Mutex
	records []*DishFlavor
}

func (f *fakeFlavors) CreateMany(ctx context.Context, flavors []*DishFlavor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, flavors...)
	return nil
}

func (f *fakeFlavors) ListByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]*DishFlavor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*DishFlavor
	for _, flavor := range f.records {
		for _, id := range dishIDs {
			if flavor.DishID == id {
				out = append(out, flavor)
			}
		}
	}
	return out, nil
}

func (f *fakeFlavors) DeleteByDishIDs(ctx context.Context, dishIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, flavor := range f.records {
		remove := false
		for _, id := range dishIDs {
			if flavor.DishID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, flavor)
		}
	}
	f.records = kept
	return nil
}

type fakeSetmeals struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*Setmeal
	links    []*SetmealDish
	disabled []uuid.UUID
}

func newFakeSetmeals(setmeals ...*Setmeal) *fakeSetmeals {
	f := &fakeSetmeals{records: map[uuid.UUID]*Setmeal{}}
	for _, s := range setmeals {
		f.records[s.ID] = s
	}
	return f
}

func (f *fakeSetmeals) link(setmealID, dishID uuid.UUID) {
	f.links = append(f.links, &SetmealDish{ID: uuid.New(), SetmealID: setmealID, DishID: dishID})
}

func (f *fakeSetmeals) GetByID(ctx context.Context, id uuid.UUID) (*Setmeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	setmeal, ok := f.records[id]
	if !ok {
		return nil, ErrSetmealNotFound
	}
	return setmeal, nil
}

func (f *fakeSetmeals) IDsByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, link := range f.links {
		for _, id := range dishIDs {
			if link.DishID == id {
				ids = append(ids, link.SetmealID)
			}
		}
	}
	return ids, nil
}

func (f *fakeSetmeals) UpdateStatus(ctx context.Context, id uuid.UUID, status int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	setmeal, ok := f.records[id]
	if !ok {
		return ErrSetmealNotFound
	}
	setmeal.Status = status
	if status == StatusDisabled {
		f.disabled = append(f.disabled, id)
	}
	return nil
}

type fakeCart struct {
	mu      sync.Mutex
	records []*CartItem
	updates int
}

func (f *fakeCart) Find(ctx context.Context, userID string, item AddCartItem) (*CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.records {
		if line.UserID == userID && line.DishID == item.DishID &&
			line.SetmealID == item.SetmealID && line.DishFlavor == item.DishFlavor {
			copied := *line
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeCart) Insert(ctx context.Context, item *CartItem) (*CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit.Stamp(item, audit.OperationCreate, audit.CurrentActor(ctx), time.Now())
	f.records = append(f.records, item)
	return item, nil
}

func (f *fakeCart) UpdateNumber(ctx context.Context, id uuid.UUID, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for _, line := range f.records {
		if line.ID == id {
			line.Number = number
			return nil
		}
	}
	return errors.New("cart item not found")
}

func (f *fakeCart) ListByUser(ctx context.Context, userID string) ([]*CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*CartItem
	for _, line := range f.records {
		if line.UserID == userID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeCart) CleanByUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, line := range f.records {
		if line.UserID != userID {
			kept = append(kept, line)
		}
	}
	f.records = kept
	return nil
}

// failingKeyStore wraps a store and fails every pattern lookup.
type failingKeyStore struct {
	cache.Store
}

func (failingKeyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return nil, errStoreDown
}

type harness struct {
	service  *DishService
	dishes   *fakeDishes
	flavors  *fakeFlavors
	setmeals *fakeSetmeals
	store    cache.Store
	logs     *logtest.Hook
}

func newHarness(t *testing.T, dishes ...*Dish) *harness {
	t.Helper()
	store, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := &harness{
		dishes:   newFakeDishes(dishes...),
		flavors:  &fakeFlavors{},
		setmeals: newFakeSetmeals(),
		store:    store,
		logs:     hook,
	}
	h.service = NewDishService(h.dishes, h.flavors, h.setmeals, store,
		cache.NewInvalidator(store, cache.WithInvalidationLogger(logger)),
		WithDishLogger(logger))
	return h
}

func (h *harness) seed(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, err := h.store.GetOrFetch(context.Background(), key, func(ctx context.Context) (string, error) {
			return "cached", nil
		}); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
}

func (h *harness) keys(t *testing.T) []string {
	t.Helper()
	keys, err := h.store.Keys(context.Background(), "*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(keys)
	return keys
}
