package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const DefaultTokenHeader = "Authorization"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenIssuer signs and verifies HS256 tokens whose subject is the actor.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer using now as its time source.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	copied := *i
	copied.now = now
	return &copied
}

func (i *TokenIssuer) Issue(actor audit.Actor) (string, error) {
	if actor == audit.UnknownActor {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}
	issuedAt := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   actor.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns its subject.
func (i *TokenIssuer) Parse(token string) (audit.Actor, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return audit.UnknownActor, ErrTokenExpired
		}
		return audit.UnknownActor, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return audit.UnknownActor, ErrInvalidToken
	}
	return audit.Actor(claims.Subject), nil
}

// AuthMiddleware binds the token subject as the actor of the request context.
// The binding lives as long as the request context. Requests without a valid
// token get 401.
func AuthMiddleware(issuer *TokenIssuer, header string, logger logrus.FieldLogger) echo.MiddlewareFunc {
	if header == "" {
		header = DefaultTokenHeader
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(header))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody(ErrMissingToken.Error()))
			}

			actor, err := issuer.Parse(token)
			if err != nil {
				logger.WithError(err).WithField("path", c.Path()).Debug("rejected token")
				return c.JSON(http.StatusUnauthorized, errorBody(err.Error()))
			}

			req := c.Request()
			c.SetRequest(req.WithContext(audit.WithActor(req.Context(), actor)))
			return next(c)
		}
	}
}

func bearerToken(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		value = strings.TrimSpace(value[7:])
	}
	return value
}
