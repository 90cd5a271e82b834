// Package handler contains the HTTP endpoints.  Handlers bind a request
// DTO, delegate to a repository, and translate sentinel errors into the
// status codes and message strings clients depend on.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/middleware"
)

// dbTimeout bounds each handler's database work.
const dbTimeout = 5 * time.Second

// currentUserID pulls the authenticated user id set by SessionAuth.
func currentUserID(c echo.Context) (uint64, bool) {
	return middleware.UserID(c)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pagination reads page/per_page query parameters with sane bounds.
func pagination(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func internalError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
