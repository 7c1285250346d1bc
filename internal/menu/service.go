package menu

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-audit/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DishService implements the dish use cases of the admin and user APIs.
// Writes clear the dish_<categoryID> list entries after they succeed. A
// failed invalidation is logged and never fails the write.
type DishService struct {
	dishes      DishRepository
	flavors     FlavorRepository
	setmeals    SetmealRepository
	cache       cache.CacheService
	invalidator *cache.Invalidator
	logger      logrus.FieldLogger
}

type DishServiceOption func(*DishService)

func WithDishLogger(logger logrus.FieldLogger) DishServiceOption {
	return func(s *DishService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewDishService(
	dishes DishRepository,
	flavors FlavorRepository,
	setmeals SetmealRepository,
	cacheService cache.CacheService,
	invalidator *cache.Invalidator,
	opts ...DishServiceOption,
) *DishService {
	s := &DishService{
		dishes:      dishes,
		flavors:     flavors,
		setmeals:    setmeals,
		cache:       cacheService,
		invalidator: invalidator,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save creates a dish with its flavors and clears the cached list of its
// category only.
func (s *DishService) Save(ctx context.Context, dish *Dish) (*Dish, error) {
	if dish == nil {
		return nil, fmt.Errorf("%w: dish is required", ErrInvalidInput)
	}
	if err := dish.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if dish.ID == uuid.Nil {
		dish.ID = uuid.New()
	}

	flavors := dish.Flavors
	created, err := s.dishes.Create(ctx, dish)
	if err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}
	if err := s.saveFlavors(ctx, created.ID, flavors); err != nil {
		return nil, err
	}
	created.Flavors = flavors

	s.invalidateNarrow(ctx, DishCacheNamespace, created.CategoryID)
	return created, nil
}

// Update replaces a dish and its flavors. The dish may have moved category,
// so every dish list entry is cleared.
func (s *DishService) Update(ctx context.Context, dish *Dish) (*Dish, error) {
	if dish == nil || dish.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: dish id is required", ErrInvalidInput)
	}
	if err := dish.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := s.dishes.GetByID(ctx, dish.ID); err != nil {
		return nil, err
	}

	flavors := dish.Flavors
	updated, err := s.dishes.Update(ctx, dish)
	if err != nil {
		return nil, fmt.Errorf("update dish: %w", err)
	}
	if err := s.flavors.DeleteByDishIDs(ctx, []uuid.UUID{dish.ID}); err != nil {
		return nil, fmt.Errorf("delete flavors: %w", err)
	}
	if err := s.saveFlavors(ctx, dish.ID, flavors); err != nil {
		return nil, err
	}
	updated.Flavors = flavors

	s.invalidateBroad(ctx, DishCacheNamespace)
	return updated, nil
}

// DeleteBatch removes dishes and their flavors. Nothing is removed when any
// dish is on sale or belongs to a setmeal.
func (s *DishService) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no dish ids", ErrInvalidInput)
	}

	for _, id := range ids {
		dish, err := s.dishes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if dish.Status == StatusEnabled {
			return fmt.Errorf("%w: %s", ErrDishOnSale, dish.Name)
		}
	}

	setmealIDs, err := s.setmeals.IDsByDishIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(setmealIDs) > 0 {
		return ErrDishInSetmeal
	}

	if err := s.dishes.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete dishes: %w", err)
	}
	if err := s.flavors.DeleteByDishIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete flavors: %w", err)
	}

	s.invalidateBroad(ctx, DishCacheNamespace)
	return nil
}

// StartOrStop changes the sale status of a dish. Disabling a dish also
// disables every setmeal that contains it.
func (s *DishService) StartOrStop(ctx context.Context, status int, id uuid.UUID) error {
	if err := validateStatus(status); err != nil {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	if err := s.dishes.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if status == StatusDisabled {
		setmealIDs, err := s.setmeals.IDsByDishIDs(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		for _, setmealID := range setmealIDs {
			if err := s.setmeals.UpdateStatus(ctx, setmealID, StatusDisabled); err != nil {
				return fmt.Errorf("disable setmeal %s: %w", setmealID, err)
			}
		}
		s.invalidateBroad(ctx, SetmealCacheNamespace)
	}

	s.invalidateBroad(ctx, DishCacheNamespace)
	return nil
}

// Get returns a dish with its flavors. The record from the store may be
// shared through the read cache, so flavors go on a copy.
func (s *DishService) Get(ctx context.Context, id uuid.UUID) (*Dish, error) {
	cached, err := s.dishes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flavors, err := s.flavors.ListByDishIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("list flavors: %w", err)
	}
	dish := *cached
	dish.Flavors = flavors
	return &dish, nil
}

// ListByCategory returns the dishes on sale in a category. Results are cached
// under dish_<categoryID>.
func (s *DishService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Dish, error) {
	if categoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}
	key := cache.Key(DishCacheNamespace, categoryID)
	return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]*Dish, error) {
		return s.listOnSale(ctx, categoryID)
	})
}

// Page lists dishes for the admin console. It is never cached.
func (s *DishService) Page(ctx context.Context, query PageQuery) (PageResult, error) {
	dishes, total, err := s.dishes.Page(ctx, query.normalize())
	if err != nil {
		return PageResult{}, fmt.Errorf("page dishes: %w", err)
	}
	return PageResult{Total: total, Records: dishes}, nil
}

func (s *DishService) listOnSale(ctx context.Context, categoryID uuid.UUID) ([]*Dish, error) {
	status := StatusEnabled
	dishes, err := s.dishes.ListByCategory(ctx, categoryID, &status)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	if len(dishes) == 0 {
		return dishes, nil
	}

	ids := make([]uuid.UUID, 0, len(dishes))
	for _, dish := range dishes {
		ids = append(ids, dish.ID)
	}
	flavors, err := s.flavors.ListByDishIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list flavors: %w", err)
	}

	byDish := make(map[uuid.UUID][]*DishFlavor, len(dishes))
	for _, flavor := range flavors {
		byDish[flavor.DishID] = append(byDish[flavor.DishID], flavor)
	}
	for _, dish := range dishes {
		dish.Flavors = byDish[dish.ID]
	}
	return dishes, nil
}

func (s *DishService) saveFlavors(ctx context.Context, dishID uuid.UUID, flavors []*DishFlavor) error {
	if len(flavors) == 0 {
		return nil
	}
	for _, flavor := range flavors {
		flavor.DishID = dishID
		if flavor.ID == uuid.Nil {
			flavor.ID = uuid.New()
		}
	}
	if err := s.flavors.CreateMany(ctx, flavors); err != nil {
		return fmt.Errorf("create flavors: %w", err)
	}
	return nil
}

func (s *DishService) invalidateNarrow(ctx context.Context, namespace string, id any) {
	if s.invalidator == nil {
		return
	}
	if _, err := s.invalidator.Narrow(ctx, namespace, id); err != nil {
		s.logger.WithError(err).WithField("key", cache.Key(namespace, id)).Warn("dish cache not cleared")
	}
}

func (s *DishService) invalidateBroad(ctx context.Context, namespace string) {
	if s.invalidator == nil {
		return
	}
	if _, err := s.invalidator.Broad(ctx, namespace); err != nil {
		s.logger.WithError(err).WithField("namespace", namespace).Warn("cache namespace not cleared")
	}
}
