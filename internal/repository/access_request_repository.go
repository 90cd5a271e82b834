package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prabhjot122/LawCourt/internal/model"
)

// AccessRequestRepo manages the editor-access petition state machine:
// Pending -> Approved | Denied, one terminal transition per request.
type AccessRequestRepo struct{ DB *sql.DB }

func NewAccessRequestRepo(db *sql.DB) *AccessRequestRepo { return &AccessRequestRepo{DB: db} }

// Submit files a new pending request.  The conditional insert is a single
// atomic statement, so concurrent submissions from the same user cannot
// both slip past the pending check.
func (r *AccessRequestRepo) Submit(ctx context.Context, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO access_requests (user_id, status)
		SELECT ?, 'Pending' FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM access_requests WHERE user_id = ? AND status = 'Pending'
		)`, userID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicatePending
	}
	return nil
}

// PendingRequest is one row of the admin review queue.
type PendingRequest struct {
	RequestID    uint64 `json:"request_id"`
	UserID       uint64 `json:"user_id"`
	FullName     string `json:"full_name"`
	PracticeArea string `json:"practice_area"`
	RequestedAt  string `json:"requested_at"`
	Status       string `json:"status"`
}

// ListPending returns all pending requests with profile context, newest
// first.
func (r *AccessRequestRepo) ListPending(ctx context.Context) ([]PendingRequest, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ar.id, ar.user_id, COALESCE(p.full_name, ''), COALESCE(p.practice_area, ''),
		       ar.requested_at, ar.status
		FROM access_requests ar
		JOIN user_profiles p ON p.user_id = ar.user_id
		WHERE ar.status = 'Pending'
		ORDER BY ar.requested_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingRequest
	for rows.Next() {
		var pr PendingRequest
		var requestedAt time.Time
		if err := rows.Scan(&pr.RequestID, &pr.UserID, &pr.FullName, &pr.PracticeArea,
			&requestedAt, &pr.Status); err != nil {
			return nil, err
		}
		pr.RequestedAt = requestedAt.Format(time.RFC3339)
		out = append(out, pr)
	}
	return out, rows.Err()
}

// Decide moves a pending request to its terminal state.  Approval promotes
// the requester to Editor; status update, role change and audit entry commit
// or roll back as one unit.  The request row is locked for the duration so
// two admins cannot decide it concurrently.  Returns the requester's id.
func (r *AccessRequestRepo) Decide(ctx context.Context, requestID, adminID uint64, approve bool) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		userID uint64
		status string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, status FROM access_requests WHERE id=? FOR UPDATE", requestID).
		Scan(&userID, &status)
	if err != nil {
		return 0, err // sql.ErrNoRows -> 404
	}
	if status != "Pending" {
		return 0, ErrAlreadyProcessed
	}

	if approve {
		if _, err := tx.ExecContext(ctx,
			"UPDATE access_requests SET status='Approved', decided_at=NOW(), admin_id=? WHERE id=?",
			adminID, requestID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET role_id=? WHERE id=?", model.RoleEditor, userID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO audit_logs (admin_id, action_type, details) VALUES (?,?,?)",
			adminID, "Approve Editor Access",
			fmt.Sprintf("Approved editor access for user %d", userID)); err != nil {
			return 0, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"UPDATE access_requests SET status='Denied', decided_at=NOW(), admin_id=? WHERE id=?",
			adminID, requestID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO audit_logs (admin_id, action_type, details) VALUES (?,?,?)",
			adminID, "Deny Editor Access",
			fmt.Sprintf("Denied editor access for user %d", userID)); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return userID, nil
}
