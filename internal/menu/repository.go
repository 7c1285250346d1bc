package menu

import (
	"context"

	"github.com/google/uuid"
)

// DishRepository persists dishes. Implementations return ErrDishNotFound for
// unknown IDs.
type DishRepository interface {
	Create(ctx context.Context, dish *Dish) (*Dish, error)
	Update(ctx context.Context, dish *Dish) (*Dish, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dish, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, status *int) ([]*Dish, error)
	Page(ctx context.Context, query PageQuery) ([]*Dish, int, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type FlavorRepository interface {
	CreateMany(ctx context.Context, flavors []*DishFlavor) error
	ListByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]*DishFlavor, error)
	DeleteByDishIDs(ctx context.Context, dishIDs []uuid.UUID) error
}

type SetmealRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Setmeal, error)
	IDsByDishIDs(ctx context.Context, dishIDs []uuid.UUID) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status int) error
}

// CartRepository persists cart lines. Find returns nil without error when no
// line matches.
type CartRepository interface {
	Find(ctx context.Context, userID string, item AddCartItem) (*CartItem, error)
	Insert(ctx context.Context, item *CartItem) (*CartItem, error)
	UpdateNumber(ctx context.Context, id uuid.UUID, number int) error
	ListByUser(ctx context.Context, userID string) ([]*CartItem, error)
	CleanByUser(ctx context.Context, userID string) error
}
