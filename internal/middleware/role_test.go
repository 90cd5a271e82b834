package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/repository"
)

type mockUserLoader struct {
	getByIDFn func(id uint64) (repository.User, error)
}

func (m *mockUserLoader) GetByID(_ context.Context, id uint64) (repository.User, error) {
	return m.getByIDFn(id)
}

var _ UserLoader = (*mockUserLoader)(nil)

func runGuard(t *testing.T, guard echo.MiddlewareFunc, userID uint64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := guard(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestRequireAdminAllowsActiveAdmin(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{ID: 1, RoleID: model.RoleAdmin, Status: "Active"}, nil
	}}
	if rec := runGuard(t, RequireAdmin(users), 1); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsEditor(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{ID: 2, RoleID: model.RoleEditor, Status: "Active"}, nil
	}}
	if rec := runGuard(t, RequireAdmin(users), 2); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsSuspendedAdmin(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{ID: 1, RoleID: model.RoleAdmin, Status: "Suspended"}, nil
	}}
	if rec := runGuard(t, RequireAdmin(users), 1); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for suspended account, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsSuperAdminFlag(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{ID: 3, RoleID: model.RoleUser, IsSuperAdmin: true, Status: "Active"}, nil
	}}
	if rec := runGuard(t, RequireAdmin(users), 3); rec.Code != http.StatusOK {
		t.Fatalf("super admin flag must grant access, got %d", rec.Code)
	}
}

func TestRequireEditorAllowsEditorAndAdmin(t *testing.T) {
	for _, role := range []int{model.RoleAdmin, model.RoleEditor} {
		users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
			return repository.User{ID: 2, RoleID: role, Status: "Active"}, nil
		}}
		if rec := runGuard(t, RequireEditor(users), 2); rec.Code != http.StatusOK {
			t.Fatalf("role %d: expected 200, got %d", role, rec.Code)
		}
	}
}

func TestRequireEditorRejectsPlainUser(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{ID: 4, RoleID: model.RoleUser, Status: "Active"}, nil
	}}
	if rec := runGuard(t, RequireEditor(users), 4); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminDeletedUser(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		return repository.User{}, sql.ErrNoRows
	}}
	if rec := runGuard(t, RequireAdmin(users), 9); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when the account vanished, got %d", rec.Code)
	}
}

func TestRequireAdminWithoutSession(t *testing.T) {
	users := &mockUserLoader{getByIDFn: func(uint64) (repository.User, error) {
		t.Fatal("loader must not run without an authenticated user")
		return repository.User{}, nil
	}}
	if rec := runGuard(t, RequireAdmin(users), 0); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
