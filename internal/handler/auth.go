package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/middleware"
	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/repository"
	"github.com/prabhjot122/LawCourt/internal/utils"
)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Register(ctx context.Context, email, passwordHash string, p model.Profile) (uint64, error)
	GetActiveByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// SessionStore issues, validates and destroys opaque session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID uint64) (string, error)
	Validate(ctx context.Context, token string) (uint64, error)
	Destroy(ctx context.Context, token string) error
}

// ProfileStore reads and completes user profiles.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
	Complete(ctx context.Context, userID uint64, p model.Profile) error
}

// AuthHandler bundles dependencies for the credential auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Profiles ProfileStore
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, p ProfileStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Profiles: p}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	model.Profile
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutReq struct {
	SessionToken string `json:"session_token"`
}

// Register creates a local-credential account with its full profile.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.Register(ctx, req.Email, hash, req.Profile); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Registration successful."})
}

// Login verifies credentials and issues a session token.  The two 401
// variants are deliberately distinguishable: unknown email reads differently
// from a wrong password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}
	if !u.PasswordHash.Valid || !utils.VerifyPassword(u.PasswordHash.String, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Login successful",
		"session_token": token,
		"user_role":     u.RoleName,
		"is_admin":      u.IsAdmin(),
	})
}

// Logout destroys the session named in the body.  The token may also come
// from the Authorization header for clients that prefer it.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	_ = c.Bind(&req)
	token := req.SessionToken
	if token == "" {
		token = middleware.BearerToken(c)
	}
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Destroy(ctx, token); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

// ValidateSession reports whether the bearer token names a live session.
func (h *AuthHandler) ValidateSession(c echo.Context) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"valid": false, "error": "Invalid or expired session"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true, "user_id": userID})
}

// Profile returns the authenticated user's account and profile data.
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}
	p, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"user_id":          u.ID,
			"email":            u.Email,
			"role_id":          u.RoleID,
			"role_name":        u.RoleName,
			"is_admin":         u.IsAdmin(),
			"status":           u.Status,
			"auth_provider":    u.AuthProvider,
			"profile_complete": u.ProfileComplete,
		},
		"profile": p,
	})
}
