package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/repository"
	"github.com/prabhjot122/LawCourt/internal/utils"
)

type mockUserStore struct {
	registerFn         func(email, hash string, p model.Profile) (uint64, error)
	getActiveByEmailFn func(email string) (repository.User, error)
	getByIDFn          func(id uint64) (repository.User, error)
}

func (m *mockUserStore) Register(_ context.Context, email, hash string, p model.Profile) (uint64, error) {
	return m.registerFn(email, hash, p)
}

func (m *mockUserStore) GetActiveByEmail(_ context.Context, email string) (repository.User, error) {
	return m.getActiveByEmailFn(email)
}

func (m *mockUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	return m.getByIDFn(id)
}

var _ UserStore = (*mockUserStore)(nil)

type mockSessionStore struct {
	createFn   func(userID uint64) (string, error)
	validateFn func(token string) (uint64, error)
	destroyFn  func(token string) error
}

func (m *mockSessionStore) Create(_ context.Context, userID uint64) (string, error) {
	return m.createFn(userID)
}

func (m *mockSessionStore) Validate(_ context.Context, token string) (uint64, error) {
	return m.validateFn(token)
}

func (m *mockSessionStore) Destroy(_ context.Context, token string) error {
	return m.destroyFn(token)
}

var _ SessionStore = (*mockSessionStore)(nil)

type mockProfileStore struct {
	getByUserIDFn func(userID uint64) (model.Profile, error)
	completeFn    func(userID uint64, p model.Profile) error
}

func (m *mockProfileStore) GetByUserID(_ context.Context, userID uint64) (model.Profile, error) {
	return m.getByUserIDFn(userID)
}

func (m *mockProfileStore) Complete(_ context.Context, userID uint64, p model.Profile) error {
	return m.completeFn(userID, p)
}

var _ ProfileStore = (*mockProfileStore)(nil)

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func testConfig() config.Config {
	return config.Config{BcryptCost: bcrypt.MinCost}
}

func TestRegisterSuccess(t *testing.T) {
	e := echo.New()
	users := &mockUserStore{
		registerFn: func(email, hash string, p model.Profile) (uint64, error) {
			if email != "new@example.com" {
				t.Fatalf("email not lowercased/trimmed: %q", email)
			}
			if !utils.VerifyPassword(hash, "hunter22") {
				t.Fatal("stored hash does not verify against the submitted password")
			}
			if p.FullName != "New User" {
				t.Fatalf("profile not bound, full_name=%q", p.FullName)
			}
			return 7, nil
		},
	}
	h := NewAuthHandler(testConfig(), users, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/register",
		`{"email":" New@Example.com ","password":"hunter22","full_name":"New User","practice_area":"Corporate"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["message"]; got != "Registration successful." {
		t.Fatalf("unexpected message %v", got)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(testConfig(), &mockUserStore{}, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/register", `{"email":"a@b.com"}`)
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	e := echo.New()
	hash, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &mockUserStore{
		getActiveByEmailFn: func(email string) (repository.User, error) {
			return repository.User{
				ID:           3,
				Email:        email,
				PasswordHash: sql.NullString{String: hash, Valid: true},
				RoleID:       model.RoleEditor,
				RoleName:     "Editor",
				Status:       "Active",
			}, nil
		},
	}
	sessions := &mockSessionStore{
		createFn: func(userID uint64) (string, error) {
			if userID != 3 {
				t.Fatalf("session created for wrong user %d", userID)
			}
			return "tok-123", nil
		},
	}
	h := NewAuthHandler(testConfig(), users, sessions, nil)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"email":"ed@example.com","password":"correct-pw"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["session_token"] != "tok-123" {
		t.Fatalf("missing session token: %v", body)
	}
	if body["user_role"] != "Editor" {
		t.Fatalf("unexpected role: %v", body["user_role"])
	}
	if body["is_admin"] != false {
		t.Fatalf("editor flagged as admin: %v", body["is_admin"])
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	e := echo.New()
	users := &mockUserStore{
		getActiveByEmailFn: func(string) (repository.User, error) {
			return repository.User{}, sql.ErrNoRows
		},
	}
	h := NewAuthHandler(testConfig(), users, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"email":"ghost@example.com","password":"x"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "User not found" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := echo.New()
	hash, _ := utils.HashPassword("right-pw", bcrypt.MinCost)
	users := &mockUserStore{
		getActiveByEmailFn: func(string) (repository.User, error) {
			return repository.User{ID: 3, PasswordHash: sql.NullString{String: hash, Valid: true}}, nil
		},
	}
	h := NewAuthHandler(testConfig(), users, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"email":"ed@example.com","password":"wrong-pw"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid credentials" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	e := echo.New()
	users := &mockUserStore{
		getActiveByEmailFn: func(string) (repository.User, error) {
			// Google accounts have no local password hash.
			return repository.User{ID: 9, PasswordHash: sql.NullString{}}, nil
		},
	}
	h := NewAuthHandler(testConfig(), users, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"email":"g@example.com","password":"anything"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestValidateSession(t *testing.T) {
	e := echo.New()
	sessions := &mockSessionStore{
		validateFn: func(token string) (uint64, error) {
			if token == "live" {
				return 11, nil
			}
			return 0, sql.ErrNoRows
		},
	}
	h := NewAuthHandler(testConfig(), nil, sessions, nil)

	req, rec := jsonRequest(http.MethodGet, "/user/validate_session", "")
	req.Header.Set(echo.HeaderAuthorization, "Bearer live")
	if err := h.ValidateSession(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["valid"] != true || body["user_id"] != float64(11) {
		t.Fatalf("unexpected body %v", body)
	}

	req, rec = jsonRequest(http.MethodGet, "/user/validate_session", "")
	req.Header.Set(echo.HeaderAuthorization, "Bearer stale")
	if err := h.ValidateSession(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if decodeBody(t, rec)["valid"] != false {
		t.Fatal("expected valid:false for stale token")
	}
}

func TestLogout(t *testing.T) {
	e := echo.New()
	destroyed := ""
	sessions := &mockSessionStore{
		destroyFn: func(token string) error {
			destroyed = token
			return nil
		},
	}
	h := NewAuthHandler(testConfig(), nil, sessions, nil)

	req, rec := jsonRequest(http.MethodPost, "/logout", `{"session_token":"tok-9"}`)
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if destroyed != "tok-9" {
		t.Fatalf("wrong token destroyed: %q", destroyed)
	}
}
