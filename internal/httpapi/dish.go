package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-repository-audit/internal/menu"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) SaveDish(c echo.Context) error {
	var dish menu.Dish
	if err := c.Bind(&dish); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	created, err := s.dishes.Save(c.Request().Context(), &dish)
	if err != nil {
		return s.fail(c, err, "save dish")
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateDish(c echo.Context) error {
	var dish menu.Dish
	if err := c.Bind(&dish); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	updated, err := s.dishes.Update(c.Request().Context(), &dish)
	if err != nil {
		return s.fail(c, err, "update dish")
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteDishes(c echo.Context) error {
	ids, err := parseIDs(c.QueryParam("ids"))
	if err != nil || len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("ids must be a comma separated list of dish ids"))
	}

	if err := s.dishes.DeleteBatch(c.Request().Context(), ids); err != nil {
		return s.fail(c, err, "delete dishes")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) StartOrStopDish(c echo.Context) error {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("status must be 0 or 1"))
	}
	id, err := uuid.Parse(c.QueryParam("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid dish id"))
	}

	if err := s.dishes.StartOrStop(c.Request().Context(), status, id); err != nil {
		return s.fail(c, err, "change dish status")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetDish(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid dish id"))
	}

	dish, err := s.dishes.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err, "get dish")
	}
	return c.JSON(http.StatusOK, dish)
}

func (s *Server) PageDishes(c echo.Context) error {
	query := menu.PageQuery{Name: c.QueryParam("name")}
	query.Page, _ = strconv.Atoi(c.QueryParam("page"))
	query.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))

	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid category id"))
		}
		query.CategoryID = id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid status"))
		}
		query.Status = &status
	}

	result, err := s.dishes.Page(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, "page dishes")
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) ListDishes(c echo.Context) error {
	categoryID, err := uuid.Parse(c.QueryParam("categoryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid category id"))
	}

	dishes, err := s.dishes.ListByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return s.fail(c, err, "list dishes")
	}
	if dishes == nil {
		dishes = []*menu.Dish{}
	}
	return c.JSON(http.StatusOK, dishes)
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
