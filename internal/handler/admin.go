package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/model"
	"github.com/prabhjot122/LawCourt/internal/queue"
	"github.com/prabhjot122/LawCourt/internal/repository"
	"github.com/prabhjot122/LawCourt/internal/service"
	"github.com/prabhjot122/LawCourt/internal/utils"
)

// AdminHandler bundles dependencies for the /admin endpoints.  All of them
// run behind SessionAuth + RequireAdmin; the acting admin's identity always
// comes from the session.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Profiles *repository.ProfileRepo
	Audit    *repository.AuditRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, p *repository.ProfileRepo, a *repository.AuditRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Profiles: p, Audit: a}
}

// audit writes the audit row and mirrors it onto the broker, best effort.
func (h *AdminHandler) audit(ctx context.Context, adminID, targetID uint64, actionType, details string) {
	if err := h.Audit.Insert(ctx, adminID, actionType, details); err != nil {
		return
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.PublishAdminAction(pctx, queue.AdminActionEvent{
			AdminID:    adminID,
			ActionType: actionType,
			Details:    details,
			TargetID:   targetID,
		})
	}()
}

// ListUsers returns every account with profile fields and activity flags.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.AdminList(ctx)
	if err != nil {
		return internalError(c, err)
	}
	if users == nil {
		users = []repository.AdminUserView{}
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Analytics returns the dashboard counters.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Users.LoadAnalytics(ctx)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// AuditLogs returns the newest audit entries.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	logs, err := h.Audit.List(ctx, 100)
	if err != nil {
		return internalError(c, err)
	}
	if logs == nil {
		logs = []repository.AuditEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"audit_logs": logs})
}

type updateRoleReq struct {
	UserID uint64 `json:"user_id"`
	RoleID int    `json:"role_id"`
}

// UpdateUserRole assigns a new role to an account.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.RoleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required parameters"})
	}
	if !model.ValidRoleID(req.RoleID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid role_id. Must be 1 (Admin), 2 (Editor), or 3 (User)"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}
	if err := h.Users.UpdateRole(ctx, req.UserID, req.RoleID); err != nil {
		return internalError(c, err)
	}
	h.audit(ctx, adminID, req.UserID, "Update User Role",
		fmt.Sprintf("Changed user %d role from %d to %d", req.UserID, u.RoleID, req.RoleID))
	return c.JSON(http.StatusOK, echo.Map{"message": "User role updated successfully"})
}

type updateStatusReq struct {
	UserID uint64 `json:"user_id"`
	Status string `json:"status"`
}

// UpdateUserStatus assigns a new account status.
func (h *AdminHandler) UpdateUserStatus(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required parameters"})
	}
	if !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status. Must be one of: Active, Inactive, Suspended, Banned"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}
	if err := h.Users.UpdateStatus(ctx, req.UserID, req.Status); err != nil {
		return internalError(c, err)
	}
	h.audit(ctx, adminID, req.UserID, "Update User Status",
		fmt.Sprintf("Changed user %d status from %s to %s", req.UserID, u.Status, req.Status))
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("User status updated to %s successfully", req.Status)})
}

type profileData struct {
	Email             *string `json:"email"`
	FullName          *string `json:"full_name"`
	Phone             *string `json:"phone"`
	Bio               *string `json:"bio"`
	PracticeArea      *string `json:"practice_area"`
	Location          *string `json:"location"`
	YearsOfExperience *int    `json:"years_of_experience"`
}

type updateProfileReq struct {
	UserID      uint64      `json:"user_id"`
	ProfileData profileData `json:"profile_data"`
}

// UpdateUserProfile patches an account's email and profile fields.  Absent
// fields stay untouched; the patch runs through one fixed statement.
func (h *AdminHandler) UpdateUserProfile(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required parameters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}

	var updated []string
	if req.ProfileData.Email != nil && *req.ProfileData.Email != "" {
		if err := h.Users.UpdateEmail(ctx, req.UserID, *req.ProfileData.Email); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already exists"})
			}
			return internalError(c, err)
		}
		updated = append(updated, "email")
	}

	patch := repository.ProfilePatch{
		FullName:          req.ProfileData.FullName,
		Phone:             req.ProfileData.Phone,
		Bio:               req.ProfileData.Bio,
		PracticeArea:      req.ProfileData.PracticeArea,
		Location:          req.ProfileData.Location,
		YearsOfExperience: req.ProfileData.YearsOfExperience,
	}
	for name, set := range map[string]bool{
		"full_name":           patch.FullName != nil,
		"phone":               patch.Phone != nil,
		"bio":                 patch.Bio != nil,
		"practice_area":       patch.PracticeArea != nil,
		"location":            patch.Location != nil,
		"years_of_experience": patch.YearsOfExperience != nil,
	} {
		if set {
			updated = append(updated, name)
		}
	}
	if len(updated) > 0 {
		if err := h.Profiles.Patch(ctx, req.UserID, patch); err != nil {
			return internalError(c, err)
		}
	}

	h.audit(ctx, adminID, req.UserID, "Update User Profile",
		fmt.Sprintf("Updated profile for user %d. Fields: %s", req.UserID, strings.Join(updated, ", ")))
	return c.JSON(http.StatusOK, echo.Map{"message": "User profile updated successfully"})
}

type createUserReq struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	RoleID      int         `json:"role_id"`
	ProfileData profileData `json:"profile_data"`
}

// CreateUser provisions an account with an explicit role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	}
	if req.RoleID == 0 {
		req.RoleID = model.RoleUser
	}
	if !model.ValidRoleID(req.RoleID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid role_id. Must be 1 (Admin), 2 (Editor), or 3 (User)"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	patch := repository.ProfilePatch{
		FullName:          req.ProfileData.FullName,
		Phone:             req.ProfileData.Phone,
		Bio:               req.ProfileData.Bio,
		PracticeArea:      req.ProfileData.PracticeArea,
		Location:          req.ProfileData.Location,
		YearsOfExperience: req.ProfileData.YearsOfExperience,
	}
	userID, err := h.Users.CreateByAdmin(ctx, req.Email, hash, req.RoleID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already exists"})
		}
		return internalError(c, err)
	}

	roleName := map[int]string{model.RoleAdmin: "Admin", model.RoleEditor: "Editor", model.RoleUser: "User"}[req.RoleID]
	h.audit(ctx, adminID, userID, "Create User",
		fmt.Sprintf("Created new %s account for %s (User ID: %d)", roleName, req.Email, userID))
	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully", "user_id": userID})
}

type changePasswordReq struct {
	UserID      uint64 `json:"user_id"`
	NewPassword string `json:"new_password"`
}

// ChangePassword sets a new password on an account.  The 6-character floor
// applies here only; self-registration enforces no minimum.
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and new_password are required"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password must be at least 6 characters long"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return internalError(c, err)
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, err)
	}
	if err := h.Users.UpdatePassword(ctx, req.UserID, hash); err != nil {
		return internalError(c, err)
	}
	h.audit(ctx, adminID, req.UserID, "Change Password",
		fmt.Sprintf("Changed password for user %s (User ID: %d)", u.Email, req.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
