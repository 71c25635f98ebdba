package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"schedulr-api/core/cache"
	"schedulr-api/core/constants"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	"schedulr-api/core/utils"
)

// Middleware validates Bearer tokens issued by the identity service and
// exposes the parsed claims to handlers via the request context.
type Middleware struct {
	cache cache.Cache
}

func NewMiddleware(c cache.Cache) *Middleware {
	return &Middleware{cache: c}
}

func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Authorization header is required", nil))
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrInvalidTokenFormat, "Authorization header must be a Bearer token", nil))
			}
			token := strings.TrimSpace(parts[1])

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				logger.Warn("Middleware:Auth:InvalidToken", "error", err)
				return c.JSON(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrUnauthorized, "Invalid or expired token", err))
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:Auth:BlacklistCheckError", "error", err)
				} else if blacklisted {
					return c.JSON(http.StatusUnauthorized,
						errors.NewAppError(errors.ErrUnauthorized, "Token has been revoked", nil))
				}
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequestID attaches a short identifier to every request for log correlation.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = utils.GenerateID()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}
