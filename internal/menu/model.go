package menu

import (
	"time"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// Cache namespaces for use-case level entries such as dish_<categoryID>.
const (
	DishCacheNamespace    = "dish"
	SetmealCacheNamespace = "setmeal"
)

type Dish struct {
	bun.BaseModel `bun:"table:dishes,alias:d" json:"-" msgpack:"-"`

	ID          uuid.UUID     `bun:"id,pk" json:"id"`
	Name        string        `bun:"name,notnull" json:"name"`
	CategoryID  uuid.UUID     `bun:"category_id,notnull" json:"category_id"`
	Price       int64         `bun:"price,notnull" json:"price"`
	Image       string        `bun:"image" json:"image"`
	Description string        `bun:"description" json:"description"`
	Status      int           `bun:"status,notnull" json:"status"`
	Flavors     []*DishFlavor `bun:"-" json:"flavors,omitempty"`

	audit.Fields
}

type DishFlavor struct {
	bun.BaseModel `bun:"table:dish_flavors,alias:df" json:"-" msgpack:"-"`

	ID     uuid.UUID `bun:"id,pk" json:"id"`
	DishID uuid.UUID `bun:"dish_id,notnull" json:"dish_id"`
	Name   string    `bun:"name,notnull" json:"name"`
	Value  string    `bun:"value" json:"value"`
}

type Setmeal struct {
	bun.BaseModel `bun:"table:setmeals,alias:s" json:"-" msgpack:"-"`

	ID          uuid.UUID `bun:"id,pk" json:"id"`
	CategoryID  uuid.UUID `bun:"category_id,notnull" json:"category_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Price       int64     `bun:"price,notnull" json:"price"`
	Status      int       `bun:"status,notnull" json:"status"`
	Description string    `bun:"description" json:"description"`
	Image       string    `bun:"image" json:"image"`

	audit.Fields
}

// SetmealDish links a dish to the setmeals that contain it.
type SetmealDish struct {
	bun.BaseModel `bun:"table:setmeal_dishes,alias:sd" json:"-" msgpack:"-"`

	ID        uuid.UUID `bun:"id,pk" json:"id"`
	SetmealID uuid.UUID `bun:"setmeal_id,notnull" json:"setmeal_id"`
	DishID    uuid.UUID `bun:"dish_id,notnull" json:"dish_id"`
	Name      string    `bun:"name" json:"name"`
	Price     int64     `bun:"price" json:"price"`
	Copies    int       `bun:"copies" json:"copies"`
}

// CartItem only records when it was created. It exposes no other audit slot.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci" json:"-" msgpack:"-"`

	ID         uuid.UUID `bun:"id,pk" json:"id"`
	UserID     string    `bun:"user_id,notnull" json:"user_id"`
	DishID     uuid.UUID `bun:"dish_id,nullzero" json:"dish_id,omitempty"`
	SetmealID  uuid.UUID `bun:"setmeal_id,nullzero" json:"setmeal_id,omitempty"`
	DishFlavor string    `bun:"dish_flavor" json:"dish_flavor,omitempty"`
	Name       string    `bun:"name" json:"name"`
	Image      string    `bun:"image" json:"image"`
	Number     int       `bun:"number,notnull" json:"number"`
	Amount     int64     `bun:"amount,notnull" json:"amount"`
	CreatedAt  time.Time `bun:"created_at,nullzero" json:"created_at"`
}

func (c *CartItem) SetCreatedAt(t time.Time) { c.CreatedAt = t }

var (
	_ audit.Auditable       = (*Dish)(nil)
	_ audit.Auditable       = (*Setmeal)(nil)
	_ audit.CreatedAtSetter = (*CartItem)(nil)
)

// PageQuery filters the admin dish listing. Zero values mean no filter.
type PageQuery struct {
	Page       int
	PageSize   int
	Name       string
	CategoryID uuid.UUID
	Status     *int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func (q PageQuery) normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q
}

func (q PageQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

type PageResult struct {
	Total   int     `json:"total"`
	Records []*Dish `json:"records"`
}

// AddCartItem identifies the line a user adds to their cart. Exactly one of
// DishID and SetmealID is set.
type AddCartItem struct {
	DishID     uuid.UUID `json:"dish_id"`
	SetmealID  uuid.UUID `json:"setmeal_id"`
	DishFlavor string    `json:"dish_flavor"`
}
