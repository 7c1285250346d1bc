package menu

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-audit/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Handlers for repository.NewRepository. Every menu entity keys on a UUID.

func DishHandlers() repository.ModelHandlers[*Dish] {
	return repository.ModelHandlers[*Dish]{
		NewRecord:     func() *Dish { return &Dish{} },
		GetID:         func(d *Dish) uuid.UUID { return d.ID },
		SetID:         func(d *Dish, id uuid.UUID) { d.ID = id },
		GetIdentifier: func() string { return "name" },
	}
}

func FlavorHandlers() repository.ModelHandlers[*DishFlavor] {
	return repository.ModelHandlers[*DishFlavor]{
		NewRecord:     func() *DishFlavor { return &DishFlavor{} },
		GetID:         func(f *DishFlavor) uuid.UUID { return f.ID },
		SetID:         func(f *DishFlavor, id uuid.UUID) { f.ID = id },
		GetIdentifier: func() string { return "name" },
	}
}

func SetmealHandlers() repository.ModelHandlers[*Setmeal] {
	return repository.ModelHandlers[*Setmeal]{
		NewRecord:     func() *Setmeal { return &Setmeal{} },
		GetID:         func(s *Setmeal) uuid.UUID { return s.ID },
		SetID:         func(s *Setmeal, id uuid.UUID) { s.ID = id },
		GetIdentifier: func() string { return "name" },
	}
}

func SetmealDishHandlers() repository.ModelHandlers[*SetmealDish] {
	return repository.ModelHandlers[*SetmealDish]{
		NewRecord:     func() *SetmealDish { return &SetmealDish{} },
		GetID:         func(s *SetmealDish) uuid.UUID { return s.ID },
		SetID:         func(s *SetmealDish, id uuid.UUID) { s.ID = id },
		GetIdentifier: func() string { return "id" },
	}
}

func CartItemHandlers() repository.ModelHandlers[*CartItem] {
	return repository.ModelHandlers[*CartItem]{
		NewRecord:     func() *CartItem { return &CartItem{} },
		GetID:         func(c *CartItem) uuid.UUID { return c.ID },
		SetID:         func(c *CartItem, id uuid.UUID) { c.ID = id },
		GetIdentifier: func() string { return "id" },
	}
}

// isNotFound reports a lookup that found no row or an update that matched none.
func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) ||
		goerrors.IsCategory(err, repository.CategoryDatabaseExpectedCount)
}

func onlyColumns(columns ...string) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Column(columns...)
	}
}

// setValues pins columns into the SET clause. Repository updates omit zero
// fields, so a status of 0 or an empty description would otherwise be dropped.
func setValues(values map[string]any) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		for column, value := range values {
			q = q.Column(column).Value(column, "?", value)
		}
		return q
	}
}

// unbounded lifts the default page size List applies.
func unbounded(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Limit(0).Offset(0)
}

var dishUpdateColumns = []string{"name", "category_id", "updated_at", "updated_by"}

type dishStore struct {
	records repository.Repository[*Dish]
}

// NewDishStore adapts a generic dish repository, typically the audited and
// cached stack built by the container.
func NewDishStore(records repository.Repository[*Dish]) DishRepository {
	return &dishStore{records: records}
}

func (s *dishStore) Create(ctx context.Context, dish *Dish) (*Dish, error) {
	return s.records.Create(ctx, dish)
}

func (s *dishStore) Update(ctx context.Context, dish *Dish) (*Dish, error) {
	updated, err := s.records.Update(ctx, dish,
		onlyColumns(dishUpdateColumns...),
		setValues(map[string]any{
			"price":       dish.Price,
			"image":       dish.Image,
			"description": dish.Description,
			"status":      dish.Status,
		}))
	if isNotFound(err) {
		return nil, ErrDishNotFound
	}
	return updated, err
}

func (s *dishStore) UpdateStatus(ctx context.Context, id uuid.UUID, status int) error {
	_, err := s.records.Update(ctx, &Dish{ID: id, Status: status},
		onlyColumns("updated_at", "updated_by"),
		setValues(map[string]any{"status": status}))
	if isNotFound(err) {
		return ErrDishNotFound
	}
	return err
}

func (s *dishStore) GetByID(ctx context.Context, id uuid.UUID) (*Dish, error) {
	dish, err := s.records.GetByID(ctx, id.String())
	if isNotFound(err) {
		return nil, ErrDishNotFound
	}
	return dish, err
}

func (s *dishStore) ListByCategory(ctx context.Context, categoryID uuid.UUID, status *int) ([]*Dish, error) {
	dishes, _, err := s.records.List(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.category_id = ?", categoryID)
		if status != nil {
			q = q.Where("?TableAlias.status = ?", *status)
		}
		return unbounded(q).Order("created_at DESC")
	})
	return dishes, err
}

func (s *dishStore) Page(ctx context.Context, query PageQuery) ([]*Dish, int, error) {
	query = query.normalize()
	return s.records.List(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		if query.Name != "" {
			q = q.Where("?TableAlias.name LIKE ?", "%"+query.Name+"%")
		}
		if query.CategoryID != uuid.Nil {
			q = q.Where("?TableAlias.category_id = ?", query.CategoryID)
		}
		if query.Status != nil {
			q = q.Where("?TableAlias.status = ?", *query.Status)
		}
		return q.Order("created_at DESC").Limit(query.PageSize).Offset(query.offset())
	})
}

func (s *dishStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.records.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("id IN (?)", bun.In(ids))
	})
}

type flavorStore struct {
	records repository.Repository[*DishFlavor]
}

func NewFlavorStore(records repository.Repository[*DishFlavor]) FlavorRepository {
	return &flavorStore{records: records}
}

func (s *flavorStore) CreateMany(ctx context.Context, flavors []*DishFlavor) error {
	if len(flavors) == 0 {
		return nil
	}
	_, err := s.records.CreateMany(ctx, flavors)
	return err
}

func (s *flavorStore) ListByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]*DishFlavor, error) {
	if len(dishIDs) == 0 {
		return nil, nil
	}
	flavors, _, err := s.records.List(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return unbounded(q).Where("?TableAlias.dish_id IN (?)", bun.In(dishIDs))
	})
	return flavors, err
}

func (s *flavorStore) DeleteByDishIDs(ctx context.Context, dishIDs []uuid.UUID) error {
	if len(dishIDs) == 0 {
		return nil
	}
	return s.records.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("dish_id IN (?)", bun.In(dishIDs))
	})
}

type setmealStore struct {
	setmeals repository.Repository[*Setmeal]
	links    repository.Repository[*SetmealDish]
}

func NewSetmealStore(setmeals repository.Repository[*Setmeal], links repository.Repository[*SetmealDish]) SetmealRepository {
	return &setmealStore{setmeals: setmeals, links: links}
}

func (s *setmealStore) GetByID(ctx context.Context, id uuid.UUID) (*Setmeal, error) {
	setmeal, err := s.setmeals.GetByID(ctx, id.String())
	if isNotFound(err) {
		return nil, ErrSetmealNotFound
	}
	return setmeal, err
}

func (s *setmealStore) IDsByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(dishIDs) == 0 {
		return nil, nil
	}
	links, _, err := s.links.List(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return unbounded(q).Where("?TableAlias.dish_id IN (?)", bun.In(dishIDs))
	})
	if err != nil {
		return nil, fmt.Errorf("list setmeal dishes: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(links))
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link.SetmealID]; ok {
			continue
		}
		seen[link.SetmealID] = struct{}{}
		ids = append(ids, link.SetmealID)
	}
	return ids, nil
}

func (s *setmealStore) UpdateStatus(ctx context.Context, id uuid.UUID, status int) error {
	_, err := s.setmeals.Update(ctx, &Setmeal{ID: id, Status: status},
		onlyColumns("updated_at", "updated_by"),
		setValues(map[string]any{"status": status}))
	if isNotFound(err) {
		return ErrSetmealNotFound
	}
	return err
}

type cartStore struct {
	records repository.Repository[*CartItem]
}

func NewCartStore(records repository.Repository[*CartItem]) CartRepository {
	return &cartStore{records: records}
}

func (s *cartStore) Find(ctx context.Context, userID string, item AddCartItem) (*CartItem, error) {
	found, err := s.records.Get(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.user_id = ?", userID)
		if item.DishID != uuid.Nil {
			q = q.Where("?TableAlias.dish_id = ?", item.DishID)
		} else {
			q = q.Where("?TableAlias.setmeal_id = ?", item.SetmealID)
		}
		if item.DishFlavor != "" {
			q = q.Where("?TableAlias.dish_flavor = ?", item.DishFlavor)
		}
		return q
	})
	if isNotFound(err) {
		return nil, nil
	}
	return found, err
}

func (s *cartStore) Insert(ctx context.Context, item *CartItem) (*CartItem, error) {
	return s.records.Create(ctx, item)
}

func (s *cartStore) UpdateNumber(ctx context.Context, id uuid.UUID, number int) error {
	_, err := s.records.Update(ctx, &CartItem{ID: id, Number: number}, onlyColumns("number"))
	if isNotFound(err) {
		return ErrCartItemNotFound
	}
	return err
}

func (s *cartStore) ListByUser(ctx context.Context, userID string) ([]*CartItem, error) {
	items, _, err := s.records.List(repositorycache.SkipCache(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return unbounded(q).Where("?TableAlias.user_id = ?", userID).Order("created_at DESC")
	})
	return items, err
}

func (s *cartStore) CleanByUser(ctx context.Context, userID string) error {
	return s.records.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("user_id = ?", userID)
	})
}
