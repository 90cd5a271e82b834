package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/oauth"
	"github.com/prabhjot122/LawCourt/internal/repository"
)

type mockVerifier struct {
	verifyFn func(raw string) (*oauth.Claims, error)
}

func (m *mockVerifier) Verify(_ context.Context, raw string) (*oauth.Claims, error) {
	return m.verifyFn(raw)
}

var _ TokenVerifier = (*mockVerifier)(nil)

type mockGoogleUserStore struct {
	getActiveGoogleUserFn      func(oauthID, email string) (repository.User, error)
	emailExistsOtherProviderFn func(email string) (bool, error)
	createGoogleUserFn         func(email, oauthID, name, picture string) (uint64, error)
}

func (m *mockGoogleUserStore) GetActiveGoogleUser(_ context.Context, oauthID, email string) (repository.User, error) {
	return m.getActiveGoogleUserFn(oauthID, email)
}

func (m *mockGoogleUserStore) EmailExistsOtherProvider(_ context.Context, email string) (bool, error) {
	return m.emailExistsOtherProviderFn(email)
}

func (m *mockGoogleUserStore) CreateGoogleUser(_ context.Context, email, oauthID, name, picture string) (uint64, error) {
	return m.createGoogleUserFn(email, oauthID, name, picture)
}

var _ GoogleUserStore = (*mockGoogleUserStore)(nil)

func googleClaims() *oauth.Claims {
	return &oauth.Claims{
		Subject:       "google-sub-1",
		Email:         "gal@example.com",
		Name:          "Gal Example",
		Picture:       "https://example.com/p.jpg",
		EmailVerified: true,
	}
}

func TestGoogleAuthMissingToken(t *testing.T) {
	e := echo.New()
	h := NewOAuthHandler(&mockVerifier{}, nil, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/auth/google", `{}`)
	if err := h.GoogleAuth(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Token is required" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestGoogleAuthInvalidToken(t *testing.T) {
	e := echo.New()
	v := &mockVerifier{verifyFn: func(string) (*oauth.Claims, error) {
		return nil, oauth.ErrInvalidToken
	}}
	h := NewOAuthHandler(v, nil, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/auth/google", `{"token":"forged"}`)
	if err := h.GoogleAuth(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid Google token" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestGoogleAuthExistingUser(t *testing.T) {
	e := echo.New()
	v := &mockVerifier{verifyFn: func(string) (*oauth.Claims, error) { return googleClaims(), nil }}
	users := &mockGoogleUserStore{
		getActiveGoogleUserFn: func(oauthID, email string) (repository.User, error) {
			if oauthID != "google-sub-1" || email != "gal@example.com" {
				t.Fatalf("lookup with wrong identity %q %q", oauthID, email)
			}
			return repository.User{ID: 5, RoleID: model.RoleUser, RoleName: "User", ProfileComplete: true}, nil
		},
	}
	sessions := &mockSessionStore{createFn: func(uint64) (string, error) { return "tok-g", nil }}
	h := NewOAuthHandler(v, users, sessions, nil)

	req, rec := jsonRequest(http.MethodPost, "/auth/google", `{"token":"valid"}`)
	if err := h.GoogleAuth(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["session_token"] != "tok-g" || body["profile_complete"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGoogleAuthEmailConflict(t *testing.T) {
	e := echo.New()
	v := &mockVerifier{verifyFn: func(string) (*oauth.Claims, error) { return googleClaims(), nil }}
	users := &mockGoogleUserStore{
		getActiveGoogleUserFn: func(string, string) (repository.User, error) {
			return repository.User{}, sql.ErrNoRows
		},
		emailExistsOtherProviderFn: func(string) (bool, error) { return true, nil },
	}
	h := NewOAuthHandler(v, users, nil, nil)

	req, rec := jsonRequest(http.MethodPost, "/auth/google", `{"token":"valid"}`)
	if err := h.GoogleAuth(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Email already registered with different login method" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestGoogleAuthNewUser(t *testing.T) {
	e := echo.New()
	v := &mockVerifier{verifyFn: func(string) (*oauth.Claims, error) { return googleClaims(), nil }}
	users := &mockGoogleUserStore{
		getActiveGoogleUserFn: func(string, string) (repository.User, error) {
			return repository.User{}, sql.ErrNoRows
		},
		emailExistsOtherProviderFn: func(string) (bool, error) { return false, nil },
		createGoogleUserFn: func(email, oauthID, name, picture string) (uint64, error) {
			if email != "gal@example.com" || oauthID != "google-sub-1" {
				t.Fatalf("create with wrong identity %q %q", email, oauthID)
			}
			return 21, nil
		},
	}
	sessions := &mockSessionStore{createFn: func(userID uint64) (string, error) {
		if userID != 21 {
			t.Fatalf("session for wrong user %d", userID)
		}
		return "tok-new", nil
	}}
	h := NewOAuthHandler(v, users, sessions, nil)

	req, rec := jsonRequest(http.MethodPost, "/auth/google", `{"token":"valid"}`)
	if err := h.GoogleAuth(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["requires_profile_completion"] != true {
		t.Fatalf("registration must flag incomplete profile: %v", body)
	}
	if body["user_id"] != float64(21) || body["session_token"] != "tok-new" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCompleteProfileValidation(t *testing.T) {
	e := echo.New()
	h := NewOAuthHandler(nil, nil, nil, &mockProfileStore{})

	cases := []struct {
		body string
		want string
	}{
		{`{"user_id":1}`, "bio is required"},
		{`{"user_id":1,"bio":"b"}`, "practice_area is required"},
		{`{"user_id":1,"bio":"b","practice_area":"Tax"}`, "bar_exam_status is required"},
	}
	for _, tc := range cases {
		req, rec := jsonRequest(http.MethodPost, "/auth/complete-profile", tc.body)
		if err := h.CompleteProfile(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", tc.body, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != tc.want {
			t.Fatalf("expected %q, got %v", tc.want, got)
		}
	}
}

func TestCompleteProfileSuccess(t *testing.T) {
	e := echo.New()
	profiles := &mockProfileStore{
		completeFn: func(userID uint64, p model.Profile) error {
			if userID != 4 || p.Bio != "Practicing since 2015" {
				t.Fatalf("wrong completion call: id=%d bio=%q", userID, p.Bio)
			}
			return nil
		},
	}
	h := NewOAuthHandler(nil, nil, nil, profiles)

	req, rec := jsonRequest(http.MethodPost, "/auth/complete-profile",
		`{"user_id":4,"bio":"Practicing since 2015","practice_area":"Tax","bar_exam_status":"Passed"}`)
	if err := h.CompleteProfile(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Profile completed successfully" {
		t.Fatalf("unexpected message %v", got)
	}
}
