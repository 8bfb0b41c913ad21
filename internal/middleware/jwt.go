package middleware // middleware provides reusable HTTP middleware for protected routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// SessionValidator checks a raw bearer token and returns the authenticated
// user. It fails when the token is malformed, expired or no longer the
// user's bound session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (repository.User, error)
}

// SessionAuth returns an Echo middleware that validates a Bearer token
// against the single-active-session rule. A signature-valid token that has
// been superseded by a newer login is rejected with a distinct message so
// clients can tell "log in again" apart from "you were logged in elsewhere".
// On success the user id, role and full user row are stored in the request
// context under "user_id", "role" and "user".
func SessionAuth(v SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			u, err := v.Validate(c.Request().Context(), raw)
			switch {
			case errors.Is(err, service.ErrSessionSuperseded):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "logged in from another device"})
			case errors.Is(err, service.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			case errors.Is(err, service.ErrNotFound):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account no longer exists"})
			case err != nil:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not validate session"})
			}

			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			c.Set("user", u)
			return next(c)
		}
	}
}
