package menu

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var errBlankID = errors.New("cannot be blank")

// requiredID rejects uuid.Nil. validation.Required treats fixed size arrays as
// always present.
var requiredID = validation.By(func(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return errBlankID
	}
	return nil
})

func (d Dish) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 32)),
		validation.Field(&d.CategoryID, requiredID),
		validation.Field(&d.Price, validation.Min(int64(0))),
		validation.Field(&d.Status, validation.In(StatusDisabled, StatusEnabled)),
		validation.Field(&d.Description, validation.Length(0, 255)),
		validation.Field(&d.Flavors),
	)
}

func (f DishFlavor) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 32)),
	)
}

func (a AddCartItem) Validate() error {
	if (a.DishID == uuid.Nil) == (a.SetmealID == uuid.Nil) {
		return errors.New("exactly one of dish_id and setmeal_id is required")
	}
	return validation.ValidateStruct(&a,
		validation.Field(&a.DishFlavor, validation.Length(0, 50)),
	)
}

func (c CartItem) Validate() error {
	if (c.DishID == uuid.Nil) == (c.SetmealID == uuid.Nil) {
		return errors.New("exactly one of dish_id and setmeal_id is required")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.UserID, validation.Required),
		validation.Field(&c.Number, validation.Required, validation.Min(1)),
		validation.Field(&c.Amount, validation.Min(int64(0))),
	)
}

func validateStatus(status int) error {
	return validation.Validate(status, validation.In(StatusDisabled, StatusEnabled))
}
