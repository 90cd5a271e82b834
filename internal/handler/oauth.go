package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/oauth"
	"github.com/prabhjot122/LawCourt/internal/repository"
)

// TokenVerifier checks a Google ID token and extracts its identity claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*oauth.Claims, error)
}

// GoogleUserStore is the slice of the user repository the OAuth endpoints
// need.
type GoogleUserStore interface {
	GetActiveGoogleUser(ctx context.Context, oauthID, email string) (repository.User, error)
	EmailExistsOtherProvider(ctx context.Context, email string) (bool, error)
	CreateGoogleUser(ctx context.Context, email, oauthID, name, picture string) (uint64, error)
}

// OAuthHandler bundles dependencies for Google sign-in and the follow-up
// profile completion.
type OAuthHandler struct {
	Verifier TokenVerifier
	Users    GoogleUserStore
	Sessions SessionStore
	Profiles ProfileStore
}

func NewOAuthHandler(v TokenVerifier, u GoogleUserStore, s SessionStore, p ProfileStore) *OAuthHandler {
	return &OAuthHandler{Verifier: v, Users: u, Sessions: s, Profiles: p}
}

type googleAuthReq struct {
	Token string `json:"token"`
}

type completeProfileReq struct {
	UserID uint64 `json:"user_id"`
	model.Profile
}

// GoogleAuth verifies a Google ID token, then either logs the matching
// account in or registers a fresh one.  An email already held by a non-Google
// account is rejected so OAuth cannot silently take over a local account.
func (h *OAuthHandler) GoogleAuth(c echo.Context) error {
	var req googleAuthReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	claims, err := h.Verifier.Verify(ctx, req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid Google token"})
	}

	u, err := h.Users.GetActiveGoogleUser(ctx, claims.Subject, claims.Email)
	switch {
	case err == nil:
		token, err := h.Sessions.Create(ctx, u.ID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":          "Login successful",
			"session_token":    token,
			"user_role":        u.RoleName,
			"is_admin":         u.IsAdmin(),
			"profile_complete": u.ProfileComplete,
			"user_id":          u.ID,
		})
	case errors.Is(err, sql.ErrNoRows):
		// fall through to registration
	default:
		return internalError(c, err)
	}

	taken, err := h.Users.EmailExistsOtherProvider(ctx, claims.Email)
	if err != nil {
		return internalError(c, err)
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered with different login method"})
	}

	userID, err := h.Users.CreateGoogleUser(ctx, claims.Email, claims.Subject, claims.Name, claims.Picture)
	if err != nil {
		return internalError(c, err)
	}
	token, err := h.Sessions.Create(ctx, userID)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":                     "Registration successful",
		"session_token":               token,
		"user_role":                   "User",
		"is_admin":                    false,
		"profile_complete":            false,
		"user_id":                     userID,
		"requires_profile_completion": true,
	})
}

// CompleteProfile fills in the fields a Google registration leaves empty and
// marks the profile complete.  Bio, practice area and bar exam status are
// mandatory; the first missing one names the 400.
func (h *OAuthHandler) CompleteProfile(c echo.Context) error {
	var req completeProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Bio == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bio is required"})
	}
	if req.PracticeArea == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "practice_area is required"})
	}
	if req.BarExamStatus == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bar_exam_status is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Profiles.Complete(ctx, req.UserID, req.Profile); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile completed successfully"})
}
