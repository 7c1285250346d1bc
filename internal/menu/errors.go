package menu

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrDishNotFound     = errors.New("dish not found")
	ErrSetmealNotFound  = errors.New("setmeal not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrDishOnSale       = errors.New("dish is on sale and cannot be deleted")
	ErrDishInSetmeal    = errors.New("dish belongs to a setmeal and cannot be deleted")
	ErrNoActor          = errors.New("no actor bound to request")
)
