package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

type mockAccessStore struct {
	submitFn      func(userID uint64) error
	listPendingFn func() ([]repository.PendingRequest, error)
	decideFn      func(requestID, adminID uint64, approve bool) (uint64, error)
}

func (m *mockAccessStore) Submit(_ context.Context, userID uint64) error {
	return m.submitFn(userID)
}

func (m *mockAccessStore) ListPending(_ context.Context) ([]repository.PendingRequest, error) {
	return m.listPendingFn()
}

func (m *mockAccessStore) Decide(_ context.Context, requestID, adminID uint64, approve bool) (uint64, error) {
	return m.decideFn(requestID, adminID, approve)
}

var _ AccessStore = (*mockAccessStore)(nil)

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint64) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c
}

func TestRequestEditorAccess(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		submitFn: func(userID uint64) error {
			if userID != 8 {
				t.Fatalf("submitted for wrong user %d", userID)
			}
			return nil
		},
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodPost, "/request_editor_access", "")
	if err := h.RequestEditorAccess(authedContext(e, req, rec, 8)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Request for editor access sent to admin." {
		t.Fatalf("unexpected message %v", got)
	}
}

func TestRequestEditorAccessDuplicate(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		submitFn: func(uint64) error { return repository.ErrDuplicatePending },
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodPost, "/request_editor_access", "")
	if err := h.RequestEditorAccess(authedContext(e, req, rec, 8)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "You already have a pending request." {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestApproveDenyAccessValidation(t *testing.T) {
	e := echo.New()
	h := NewAccessHandler(&mockAccessStore{})

	cases := []struct {
		body string
		want string
	}{
		{`{"action":"Approve"}`, "Missing required parameters"},
		{`{"request_id":2}`, "Missing required parameters"},
		{`{"request_id":2,"action":"Reject"}`, `Invalid action. Must be "Approve" or "Deny"`},
	}
	for _, tc := range cases {
		req, rec := jsonRequest(http.MethodPost, "/admin/approve_deny_access", tc.body)
		if err := h.ApproveDenyAccess(authedContext(e, req, rec, 1)); err != nil {
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

func TestApproveDenyAccessNotFound(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		decideFn: func(uint64, uint64, bool) (uint64, error) { return 0, sql.ErrNoRows },
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodPost, "/admin/approve_deny_access", `{"request_id":99,"action":"Approve"}`)
	if err := h.ApproveDenyAccess(authedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Request not found" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestApproveDenyAccessAlreadyProcessed(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		decideFn: func(uint64, uint64, bool) (uint64, error) {
			return 0, repository.ErrAlreadyProcessed
		},
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodPost, "/admin/approve_deny_access", `{"request_id":2,"action":"Deny"}`)
	if err := h.ApproveDenyAccess(authedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "This request has already been processed" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestApproveDenyAccessApprove(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		decideFn: func(requestID, adminID uint64, approve bool) (uint64, error) {
			if requestID != 2 || adminID != 1 || !approve {
				t.Fatalf("wrong decide call: req=%d admin=%d approve=%v", requestID, adminID, approve)
			}
			return 15, nil
		},
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodPost, "/admin/approve_deny_access", `{"request_id":2,"action":"Approve"}`)
	if err := h.ApproveDenyAccess(authedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Editor access granted." || body["success"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestListAccessRequestsEmpty(t *testing.T) {
	e := echo.New()
	store := &mockAccessStore{
		listPendingFn: func() ([]repository.PendingRequest, error) { return nil, nil },
	}
	h := NewAccessHandler(store)

	req, rec := jsonRequest(http.MethodGet, "/admin/access_requests", "")
	if err := h.ListAccessRequests(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "{\"access_requests\":[]}\n" {
		t.Fatalf("nil slice must serialize as empty array, got %s", rec.Body.String())
	}
}
