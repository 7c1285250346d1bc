package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/internal/menu"
	"github.com/goliatone/go-repository-audit/pkg/di"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// more than the page size go-repository-bun applies to List by default
const manyRows = 30

type menuStack struct {
	db       *bun.DB
	dishes   menu.DishRepository
	setmeals menu.SetmealRepository
	cart     menu.CartRepository
	service  *menu.DishService
	carts    *menu.CartService
}

// newMenuStack composes the stores the way the server does: audited over
// cached over the bun repository.
func newMenuStack(t *testing.T) *menuStack {
	t.Helper()
	db := openTestDB(t)
	logger, _ := logtest.NewNullLogger()
	container, err := di.NewContainerWithDefaults(di.WithLogger(logger))
	require.NoError(t, err)

	dishes := menu.NewDishStore(di.NewRepository[*menu.Dish](container,
		repository.NewRepository[*menu.Dish](db, menu.DishHandlers())))
	flavors := menu.NewFlavorStore(di.NewRepository[*menu.DishFlavor](container,
		repository.NewRepository[*menu.DishFlavor](db, menu.FlavorHandlers())))
	setmeals := menu.NewSetmealStore(
		di.NewRepository[*menu.Setmeal](container, repository.NewRepository[*menu.Setmeal](db, menu.SetmealHandlers())),
		di.NewRepository[*menu.SetmealDish](container, repository.NewRepository[*menu.SetmealDish](db, menu.SetmealDishHandlers())),
	)
	cart := menu.NewCartStore(di.NewRepository[*menu.CartItem](container,
		repository.NewRepository[*menu.CartItem](db, menu.CartItemHandlers())))

	return &menuStack{
		db:       db,
		dishes:   dishes,
		setmeals: setmeals,
		cart:     cart,
		service: menu.NewDishService(dishes, flavors, setmeals,
			container.CacheService(), container.Invalidator(), menu.WithDishLogger(logger)),
		carts: menu.NewCartService(cart, dishes, setmeals, logger),
	}
}

func (s *menuStack) saveDish(t *testing.T, ctx context.Context, name string, category uuid.UUID, flavors ...string) *menu.Dish {
	t.Helper()
	dish := &menu.Dish{Name: name, CategoryID: category, Price: 1800, Status: menu.StatusEnabled, Description: "house special"}
	for _, flavor := range flavors {
		dish.Flavors = append(dish.Flavors, &menu.DishFlavor{Name: flavor, Value: "mild,hot"})
	}
	saved, err := s.service.Save(ctx, dish)
	require.NoError(t, err)
	return saved
}

func (s *menuStack) insertSetmeals(t *testing.T, dishID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	setmeals := make([]*menu.Setmeal, 0, n)
	links := make([]*menu.SetmealDish, 0, n)
	for i := 0; i < n; i++ {
		setmeal := &menu.Setmeal{ID: uuid.New(), CategoryID: uuid.New(), Name: fmt.Sprintf("Combo %02d", i), Price: 3000, Status: menu.StatusEnabled}
		setmeals = append(setmeals, setmeal)
		links = append(links, &menu.SetmealDish{ID: uuid.New(), SetmealID: setmeal.ID, DishID: dishID, Copies: 1})
	}
	ctx := context.Background()
	_, err := s.db.NewInsert().Model(&setmeals).Exec(ctx)
	require.NoError(t, err)
	_, err = s.db.NewInsert().Model(&links).Exec(ctx)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, n)
	for _, setmeal := range setmeals {
		ids = append(ids, setmeal.ID)
	}
	return ids
}

func TestCartStore_FindWithoutMatch(t *testing.T) {
	stack := newMenuStack(t)

	found, err := stack.cart.Find(context.Background(), "user-1", menu.AddCartItem{DishID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = stack.cart.Find(context.Background(), "user-1", menu.AddCartItem{SetmealID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStores_UnknownIDs(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "admin-1")
	missing := uuid.New()

	_, err := stack.dishes.GetByID(ctx, missing)
	assert.ErrorIs(t, err, menu.ErrDishNotFound)

	_, err = stack.dishes.Update(ctx, &menu.Dish{ID: missing, Name: "Ghost", CategoryID: uuid.New()})
	assert.ErrorIs(t, err, menu.ErrDishNotFound)

	assert.ErrorIs(t, stack.dishes.UpdateStatus(ctx, missing, menu.StatusEnabled), menu.ErrDishNotFound)

	_, err = stack.setmeals.GetByID(ctx, missing)
	assert.ErrorIs(t, err, menu.ErrSetmealNotFound)

	assert.ErrorIs(t, stack.setmeals.UpdateStatus(ctx, missing, menu.StatusDisabled), menu.ErrSetmealNotFound)

	assert.ErrorIs(t, stack.cart.UpdateNumber(ctx, missing, 2), menu.ErrCartItemNotFound)

	_, err = stack.service.Get(ctx, missing)
	assert.ErrorIs(t, err, menu.ErrDishNotFound)

	assert.ErrorIs(t, stack.service.StartOrStop(ctx, menu.StatusDisabled, missing), menu.ErrDishNotFound)
}

func TestDishService_ListsBeyondDefaultPage(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "admin-1")
	category := uuid.New()

	for i := 0; i < manyRows; i++ {
		stack.saveDish(t, ctx, fmt.Sprintf("Dish %02d", i), category, "spice")
	}

	dishes, err := stack.service.ListByCategory(ctx, category)
	require.NoError(t, err)
	require.Len(t, dishes, manyRows)
	for _, dish := range dishes {
		assert.Len(t, dish.Flavors, 1, dish.Name)
	}

	page, err := stack.service.Page(ctx, menu.PageQuery{PageSize: 100, CategoryID: category})
	require.NoError(t, err)
	assert.Equal(t, manyRows, page.Total)
	assert.Len(t, page.Records, manyRows)

	page, err = stack.service.Page(ctx, menu.PageQuery{Page: 2, PageSize: 20, CategoryID: category})
	require.NoError(t, err)
	assert.Equal(t, manyRows, page.Total)
	assert.Len(t, page.Records, manyRows-20)
}

func TestDishService_StopDisablesEverySetmeal(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "admin-2")

	dish := stack.saveDish(t, ctx, "Braised Pork", uuid.New())
	setmealIDs := stack.insertSetmeals(t, dish.ID, manyRows)

	require.NoError(t, stack.service.StartOrStop(ctx, menu.StatusDisabled, dish.ID))

	stored, err := stack.dishes.GetByID(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, menu.StatusDisabled, stored.Status)
	assert.Equal(t, "admin-2", stored.UpdatedBy)

	enabled, err := stack.db.NewSelect().Model((*menu.Setmeal)(nil)).
		Where("status = ?", menu.StatusEnabled).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, enabled)

	setmeal, err := stack.setmeals.GetByID(ctx, setmealIDs[manyRows-1])
	require.NoError(t, err)
	assert.Equal(t, menu.StatusDisabled, setmeal.Status)
	assert.Equal(t, "admin-2", setmeal.UpdatedBy)

	require.NoError(t, stack.service.StartOrStop(ctx, menu.StatusEnabled, dish.ID))
	stored, err = stack.dishes.GetByID(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, menu.StatusEnabled, stored.Status)
}

func TestDishService_UpdateKeepsZeroValues(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "admin-3")
	dish := stack.saveDish(t, ctx, "Mapo Tofu", uuid.New(), "spice")

	_, err := stack.service.Update(ctx, &menu.Dish{
		ID:         dish.ID,
		Name:       "Mapo Tofu",
		CategoryID: dish.CategoryID,
		Price:      0,
		Status:     menu.StatusDisabled,
	})
	require.NoError(t, err)

	var row menu.Dish
	require.NoError(t, stack.db.NewSelect().Model(&row).Where("id = ?", dish.ID).Scan(context.Background()))
	assert.Equal(t, menu.StatusDisabled, row.Status)
	assert.Zero(t, row.Price)
	assert.Empty(t, row.Description)
	assert.Equal(t, "admin-3", row.UpdatedBy)

	got, err := stack.service.Get(ctx, dish.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Flavors)
}

func TestDishService_ConcurrentGetOnCachedRecord(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "admin-4")
	dish := stack.saveDish(t, ctx, "Spring Rolls", uuid.New(), "sauce", "size")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := stack.service.Get(ctx, dish.ID)
			if err == nil && len(got.Flavors) != 2 {
				err = fmt.Errorf("expected 2 flavors, got %d", len(got.Flavors))
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	cached, err := stack.dishes.GetByID(ctx, dish.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Flavors, "cached record must not carry flavors")
}

func TestCartService_AddThenIncrement(t *testing.T) {
	stack := newMenuStack(t)
	dish := stack.saveDish(t, audit.WithActor(context.Background(), "admin-1"), "Fried Rice", uuid.New())
	ctx := audit.WithActor(context.Background(), "user-7")

	first, err := stack.carts.Add(ctx, menu.AddCartItem{DishID: dish.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, dish.Price, first.Amount)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := stack.carts.Add(ctx, menu.AddCartItem{DishID: dish.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Number)

	items, err := stack.carts.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Number)

	other, err := stack.carts.List(audit.WithActor(context.Background(), "user-8"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCartService_ListBeyondDefaultPage(t *testing.T) {
	stack := newMenuStack(t)
	ctx := audit.WithActor(context.Background(), "user-9")

	items := make([]*menu.CartItem, 0, manyRows)
	for i := 0; i < manyRows; i++ {
		items = append(items, &menu.CartItem{
			ID: uuid.New(), UserID: "user-9", DishID: uuid.New(),
			Name: fmt.Sprintf("Item %02d", i), Number: 1, Amount: 500,
		})
	}
	_, err := stack.db.NewInsert().Model(&items).Exec(context.Background())
	require.NoError(t, err)

	listed, err := stack.carts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, manyRows)

	require.NoError(t, stack.carts.Clean(ctx))
	listed, err = stack.carts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
