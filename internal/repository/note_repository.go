package repository

import (
	"context"
	"database/sql"
	"time"
)

// NoteRepo stores private study notes.  Every operation is scoped to the
// owning user; notes are never visible to anyone else, admins included.
type NoteRepo struct{ DB *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{DB: db} }

// Note is one private note.
type Note struct {
	ID        uint64 `json:"note_id"`
	UserID    uint64 `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Create inserts a note for the user.
func (r *NoteRepo) Create(ctx context.Context, userID uint64, title, content, category string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notes (user_id, title, content, category) VALUES (?,?,?,?)",
		userID, title, content, category)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// List returns the user's own notes, optionally filtered by category, newest
// first.
func (r *NoteRepo) List(ctx context.Context, userID uint64, category string) ([]Note, error) {
	query := `
		SELECT id, user_id, title, content, category, created_at, updated_at
		FROM notes WHERE user_id = ?`
	args := []interface{}{userID}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		var created, updated time.Time
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category,
			&created, &updated); err != nil {
			return nil, err
		}
		n.CreatedAt = created.Format(time.RFC3339)
		n.UpdatedAt = updated.Format(time.RFC3339)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Get loads one of the user's notes.  A note owned by someone else reads as
// absent, not forbidden, so note ids leak nothing.
func (r *NoteRepo) Get(ctx context.Context, id, userID uint64) (Note, error) {
	var n Note
	var created, updated time.Time
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, title, content, category, created_at, updated_at
		FROM notes WHERE id = ? AND user_id = ? LIMIT 1`, id, userID).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &created, &updated)
	if err != nil {
		return n, err
	}
	n.CreatedAt = created.Format(time.RFC3339)
	n.UpdatedAt = updated.Format(time.RFC3339)
	return n, nil
}

// NotePatch carries optional new values for a note; nil means unchanged.
type NotePatch struct {
	Title    *string
	Content  *string
	Category *string
}

// Update patches one of the user's notes.
func (r *NoteRepo) Update(ctx context.Context, id, userID uint64, patch NotePatch) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notes SET
			title = COALESCE(?, title),
			content = COALESCE(?, content),
			category = COALESCE(?, category)
		WHERE id = ? AND user_id = ?`,
		patch.Title, patch.Content, patch.Category, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one of the user's notes.
func (r *NoteRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
