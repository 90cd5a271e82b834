package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type mockValidator struct {
	validateFn func(token string) (uint64, error)
}

func (m *mockValidator) Validate(_ context.Context, token string) (uint64, error) {
	return m.validateFn(token)
}

var _ SessionValidator = (*mockValidator)(nil)

func runSession(t *testing.T, v SessionValidator, authHeader string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := SessionAuth(v)(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestSessionAuthMissingToken(t *testing.T) {
	v := &mockValidator{validateFn: func(string) (uint64, error) {
		t.Fatal("validator must not be called without a token")
		return 0, nil
	}}
	rec := runSession(t, v, "", func(c echo.Context) error { return nil })
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthInvalidToken(t *testing.T) {
	v := &mockValidator{validateFn: func(string) (uint64, error) {
		return 0, sql.ErrNoRows
	}}
	rec := runSession(t, v, "Bearer bad-token", func(c echo.Context) error { return nil })
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthSetsUserID(t *testing.T) {
	v := &mockValidator{validateFn: func(token string) (uint64, error) {
		if token != "good-token" {
			t.Fatalf("unexpected token %q", token)
		}
		return 42, nil
	}}
	called := false
	rec := runSession(t, v, "Bearer good-token", func(c echo.Context) error {
		called = true
		id, ok := UserID(c)
		if !ok || id != 42 {
			t.Fatalf("user id not propagated, got %d ok=%v", id, ok)
		}
		return c.NoContent(http.StatusOK)
	})
	if !called {
		t.Fatal("next handler not invoked")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBearerTokenBareValue(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "raw-token-value")
	c := e.NewContext(req, httptest.NewRecorder())
	if got := BearerToken(c); got != "raw-token-value" {
		t.Fatalf("expected bare token passthrough, got %q", got)
	}
}
