package httpapi

import (
	"net/http"

	"github.com/goliatone/go-repository-audit/internal/menu"
	"github.com/labstack/echo/v4"
)

func (s *Server) AddToCart(c echo.Context) error {
	var req menu.AddCartItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	item, err := s.cart.Add(c.Request().Context(), req)
	if err != nil {
		return s.fail(c, err, "add cart item")
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) ListCart(c echo.Context) error {
	items, err := s.cart.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err, "list cart")
	}
	if items == nil {
		items = []*menu.CartItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) CleanCart(c echo.Context) error {
	if err := s.cart.Clean(c.Request().Context()); err != nil {
		return s.fail(c, err, "clean cart")
	}
	return c.NoContent(http.StatusNoContent)
}
