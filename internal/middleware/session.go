package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionValidator resolves a bearer token to a user id.  Expired or unknown
// tokens report sql.ErrNoRows.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (uint64, error)
}

// ctxUserIDKey is where SessionAuth stores the resolved user id.
const ctxUserIDKey = "user_id"

// UserID returns the authenticated user's id from the request context.  It
// is only meaningful behind SessionAuth.
func UserID(c echo.Context) (uint64, bool) {
	v, ok := c.Get(ctxUserIDKey).(uint64)
	return v, ok
}

// BearerToken extracts the session token from the Authorization header.  A
// bare token without the Bearer prefix is accepted too.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(h)
}

// SessionAuth authenticates requests with an opaque bearer token.  The token
// resolves to a user id only; role and status are re-read from the users
// table by whichever guard or handler needs them.
func SessionAuth(sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
			}
			userID, err := sessions.Validate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired session"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
			}
			c.Set(ctxUserIDKey, userID)
			return next(c)
		}
	}
}
