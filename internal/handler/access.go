package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/queue"
	"github.com/prabhjot122/LawCourt/internal/repository"
	"github.com/prabhjot122/LawCourt/internal/service"
)

// AccessStore manages the editor-access request lifecycle.
type AccessStore interface {
	Submit(ctx context.Context, userID uint64) error
	ListPending(ctx context.Context) ([]repository.PendingRequest, error)
	Decide(ctx context.Context, requestID, adminID uint64, approve bool) (uint64, error)
}

// AccessHandler bundles dependencies for the editor-access workflow.
type AccessHandler struct {
	Requests AccessStore
}

func NewAccessHandler(r AccessStore) *AccessHandler {
	return &AccessHandler{Requests: r}
}

type decideAccessReq struct {
	RequestID uint64 `json:"request_id"`
	Action    string `json:"action"` // Approve | Deny
}

// RequestEditorAccess files a pending request for the authenticated user.
func (h *AccessHandler) RequestEditorAccess(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Requests.Submit(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "You already have a pending request."})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Request for editor access sent to admin."})
}

// ApproveDenyAccess lets an admin settle a pending request.  The acting
// admin's identity comes from the session, never from the request body.
func (h *AccessHandler) ApproveDenyAccess(c echo.Context) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token required"})
	}

	var req decideAccessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RequestID == 0 || req.Action == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required parameters"})
	}
	if req.Action != "Approve" && req.Action != "Deny" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": `Invalid action. Must be "Approve" or "Deny"`})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	approve := req.Action == "Approve"
	targetID, err := h.Requests.Decide(ctx, req.RequestID, adminID, approve)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Request not found"})
		case errors.Is(err, repository.ErrAlreadyProcessed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This request has already been processed"})
		default:
			return internalError(c, err)
		}
	}

	actionType, details, message := "Deny Editor Access", "Denied editor access", "Editor access denied."
	if approve {
		actionType, details, message = "Approve Editor Access", "Approved editor access", "Editor access granted."
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = service.PublishAdminAction(pctx, queue.AdminActionEvent{
			AdminID:    adminID,
			ActionType: actionType,
			Details:    details,
			TargetID:   targetID,
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": message, "success": true})
}

// ListAccessRequests returns the pending review queue.
func (h *AccessHandler) ListAccessRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListPending(ctx)
	if err != nil {
		return internalError(c, err)
	}
	if reqs == nil {
		reqs = []repository.PendingRequest{}
	}
	return c.JSON(http.StatusOK, echo.Map{"access_requests": reqs})
}
