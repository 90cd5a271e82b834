package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// UserLoader fetches the current user record.  Guards read the role and
// status fresh on every request, so a demotion or ban takes effect
// immediately instead of at next login.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// RequireAdmin rejects requests unless the authenticated user is an active
// admin (Admin role or super-admin flag).  Must run behind SessionAuth.
func RequireAdmin(users UserLoader) echo.MiddlewareFunc {
	return requireAuthority(users, func(u repository.User) bool { return u.IsAdmin() })
}

// RequireEditor rejects requests unless the user may author content
// (Editor, Admin or super-admin).  Must run behind SessionAuth.
func RequireEditor(users UserLoader) echo.MiddlewareFunc {
	return requireAuthority(users, func(u repository.User) bool { return u.CanEdit() })
}

func requireAuthority(users UserLoader, allowed func(repository.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
			}
			u, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired session"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
			}
			if u.Status != "Active" || !allowed(u) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Insufficient permissions"})
			}
			return next(c)
		}
	}
}
