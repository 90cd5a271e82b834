package repository

import (
	"context"
	"database/sql"
	"time"
)

// AuditRepo appends and lists admin-action records.  The table is
// append-only; nothing in the application updates or deletes rows.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends one admin-action record.
func (r *AuditRepo) Insert(ctx context.Context, adminID uint64, actionType, details string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (admin_id, action_type, details) VALUES (?,?,?)",
		adminID, actionType, details)
	return err
}

// AuditEntry is one row of the admin audit trail.
type AuditEntry struct {
	LogID      uint64 `json:"log_id"`
	AdminID    uint64 `json:"admin_id"`
	ActionType string `json:"action_type"`
	Details    string `json:"action_details"`
	Timestamp  string `json:"timestamp"`
	AdminName  string `json:"admin_name"`
}

// List returns the newest entries with the acting admin's name, capped at
// limit.
func (r *AuditRepo) List(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT al.id, al.admin_id, al.action_type, COALESCE(al.details, ''), al.created_at,
		       COALESCE(NULLIF(p.full_name, ''), 'Unknown Admin')
		FROM audit_logs al
		LEFT JOIN user_profiles p ON p.user_id = al.admin_id
		ORDER BY al.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts time.Time
		if err := rows.Scan(&e.LogID, &e.AdminID, &e.ActionType, &e.Details, &ts, &e.AdminName); err != nil {
			return nil, err
		}
		e.Timestamp = ts.Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}
