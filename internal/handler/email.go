package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// EmailHandler serves the admin notification endpoints.  Delivery is
// deliberately stubbed: no mail ever leaves the process, the send is logged
// and acknowledged so the admin UI keeps working without an SMTP setup.
type EmailHandler struct {
	Users  *repository.UserRepo
	Logger zerolog.Logger
}

func NewEmailHandler(u *repository.UserRepo, logger zerolog.Logger) *EmailHandler {
	return &EmailHandler{Users: u, Logger: logger}
}

type sendEmailReq struct {
	RecipientUserIDs []uint64 `json:"recipient_user_ids"`
	Subject          string   `json:"subject"`
	Content          string   `json:"content"`
	EmailType        string   `json:"email_type"`
}

// SendEmail simulates a bulk send and reports success.
func (h *EmailHandler) SendEmail(c echo.Context) error {
	adminID, _ := currentUserID(c)

	var req sendEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.RecipientUserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Recipient user IDs are required"})
	}
	if req.Subject == "" {
		req.Subject = "LawCourt Notification"
	}
	if req.EmailType == "" {
		req.EmailType = "announcement"
	}

	h.Logger.Info().
		Uint64("admin_id", adminID).
		Int("recipients", len(req.RecipientUserIDs)).
		Str("subject", req.Subject).
		Str("type", req.EmailType).
		Msg("stub email send")

	return c.JSON(http.StatusOK, echo.Map{
		"message":          fmt.Sprintf("Email sent successfully to %d recipients", len(req.RecipientUserIDs)),
		"recipients_count": len(req.RecipientUserIDs),
	})
}

// EmailLogs returns sample log rows so the admin UI renders without a real
// delivery backend.
func (h *EmailHandler) EmailLogs(c echo.Context) error {
	logs := []echo.Map{
		{
			"email_id": 1, "sender_id": 1, "sender_name": "Admin User",
			"recipient_count": 5, "subject": "Welcome to LawCourt Platform",
			"email_type": "announcement", "status": "sent", "sent_at": "2024-01-15T10:30:00",
		},
		{
			"email_id": 2, "sender_id": 1, "sender_name": "Admin User",
			"recipient_count": 3, "subject": "System Maintenance Notification",
			"email_type": "notification", "status": "sent", "sent_at": "2024-01-14T14:15:00",
		},
		{
			"email_id": 3, "sender_id": 1, "sender_name": "Admin User",
			"recipient_count": 8, "subject": "Test Email - Platform Features",
			"email_type": "test", "status": "sent", "sent_at": "2024-01-13T09:45:00",
		},
	}
	return c.JSON(http.StatusOK, echo.Map{"email_logs": logs})
}

// UsersForEmail lists active accounts for the recipient picker.
func (h *EmailHandler) UsersForEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.ListForEmail(ctx)
	if err != nil {
		return internalError(c, err)
	}
	if users == nil {
		users = []repository.EmailRecipient{}
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
