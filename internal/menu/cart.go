package menu

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CartService manages the shopping cart of the actor bound to the context.
type CartService struct {
	items    CartRepository
	dishes   DishRepository
	setmeals SetmealRepository
	logger   logrus.FieldLogger
}

func NewCartService(items CartRepository, dishes DishRepository, setmeals SetmealRepository, logger logrus.FieldLogger) *CartService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CartService{items: items, dishes: dishes, setmeals: setmeals, logger: logger}
}

// Add puts one unit of a dish or setmeal in the cart. An existing line has its
// number incremented; otherwise a new line is inserted.
func (s *CartService) Add(ctx context.Context, req AddCartItem) (*CartItem, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := s.items.Find(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	if existing != nil {
		existing.Number++
		if err := s.items.UpdateNumber(ctx, existing.ID, existing.Number); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		return existing, nil
	}

	item := &CartItem{
		ID:         uuid.New(),
		UserID:     userID,
		DishID:     req.DishID,
		SetmealID:  req.SetmealID,
		DishFlavor: req.DishFlavor,
		Number:     1,
	}
	if req.DishID != uuid.Nil {
		dish, err := s.dishes.GetByID(ctx, req.DishID)
		if err != nil {
			return nil, err
		}
		item.Name, item.Image, item.Amount = dish.Name, dish.Image, dish.Price
	} else {
		setmeal, err := s.setmeals.GetByID(ctx, req.SetmealID)
		if err != nil {
			return nil, err
		}
		item.Name, item.Image, item.Amount = setmeal.Name, setmeal.Image, setmeal.Price
	}

	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.items.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	s.logger.WithField("user", userID).WithField("item", created.Name).Debug("cart item added")
	return created, nil
}

func (s *CartService) List(ctx context.Context) ([]*CartItem, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	return s.items.ListByUser(ctx, userID)
}

func (s *CartService) Clean(ctx context.Context) error {
	userID, err := s.user(ctx)
	if err != nil {
		return err
	}
	return s.items.CleanByUser(ctx, userID)
}

func (s *CartService) user(ctx context.Context) (string, error) {
	actor, ok := audit.ActorFromContext(ctx)
	if !ok || actor == audit.UnknownActor {
		return "", ErrNoActor
	}
	return actor.String(), nil
}
