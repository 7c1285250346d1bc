package httpapi

import (
	"context"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-audit/internal/menu"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type DishService interface {
	Save(ctx context.Context, dish *menu.Dish) (*menu.Dish, error)
	Update(ctx context.Context, dish *menu.Dish) (*menu.Dish, error)
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
	StartOrStop(ctx context.Context, status int, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*menu.Dish, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*menu.Dish, error)
	Page(ctx context.Context, query menu.PageQuery) (menu.PageResult, error)
}

type CartService interface {
	Add(ctx context.Context, req menu.AddCartItem) (*menu.CartItem, error)
	List(ctx context.Context) ([]*menu.CartItem, error)
	Clean(ctx context.Context) error
}

type Server struct {
	dishes  DishService
	cart    CartService
	health  func(ctx context.Context) error
	metrics http.Handler
	logger  logrus.FieldLogger
}

type Option func(*Server)

func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(dishes DishService, cart CartService, opts ...Option) *Server {
	s := &Server{
		dishes: dishes,
		cart:   cart,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEcho returns an echo instance with recovery and request logging.
func NewEcho(logger logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	return e
}

// Register mounts every route. Routes under /admin and /user require auth.
func (s *Server) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/health", s.HealthCheck)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	admin := e.Group("/admin", auth)
	admin.POST("/dish", s.SaveDish)
	admin.PUT("/dish", s.UpdateDish)
	admin.DELETE("/dish", s.DeleteDishes)
	admin.POST("/dish/status/:status", s.StartOrStopDish)
	admin.GET("/dish/page", s.PageDishes)
	admin.GET("/dish/:id", s.GetDish)

	user := e.Group("/user", auth)
	user.GET("/dish/list", s.ListDishes)
	user.POST("/cart", s.AddToCart)
	user.GET("/cart/list", s.ListCart)
	user.DELETE("/cart/clean", s.CleanCart)
}

func (s *Server) HealthCheck(c echo.Context) error {
	if s.health != nil {
		if err := s.health(c.Request().Context()); err != nil {
			s.logger.WithError(err).Error("health check failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// statusFor maps service errors to a status code and a client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, menu.ErrDishNotFound), errors.Is(err, menu.ErrSetmealNotFound),
		errors.Is(err, menu.ErrCartItemNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, menu.ErrDishOnSale), errors.Is(err, menu.ErrDishInSetmeal):
		return http.StatusConflict, err.Error()
	case errors.Is(err, menu.ErrInvalidInput), errors.Is(err, menu.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, menu.ErrNoActor):
		return http.StatusUnauthorized, err.Error()
	}

	// store errors carry an HTTP code, e.g. 409 for a duplicate key
	var typed *goerrors.Error
	if goerrors.As(err, &typed) && typed.Code >= 400 && typed.Code < 500 {
		return typed.Code, typed.Message
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) fail(c echo.Context, err error, action string) error {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("action", action).Error("request failed")
	}
	return c.JSON(status, errorBody(message))
}
