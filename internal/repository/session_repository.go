package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/prabhjot122/LawCourt/internal/utils"
)

// SessionRepo persists opaque bearer tokens in the 'sessions' table.  Tokens
// identify a user and nothing more; authority is always re-derived from the
// users table.
type SessionRepo struct {
	DB *sql.DB
	// IdleTTL is the sliding idle expiry window.  Zero disables expiry and
	// restores the original unbounded-validity behavior.
	IdleTTL time.Duration
}

func NewSessionRepo(db *sql.DB, idleTTL time.Duration) *SessionRepo {
	return &SessionRepo{DB: db, IdleTTL: idleTTL}
}

// Create issues a fresh token for the user.  Every login gets a new row; a
// user may hold any number of concurrent sessions.
func (r *SessionRepo) Create(ctx context.Context, userID uint64) (string, error) {
	token := utils.NewSessionToken()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, last_active) VALUES (?,?,NOW())",
		userID, token)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a token to its user id.  Sessions idle longer than
// IdleTTL are deleted and reported as sql.ErrNoRows; valid lookups slide
// the last_active timestamp forward.
func (r *SessionRepo) Validate(ctx context.Context, token string) (uint64, error) {
	var (
		userID     uint64
		lastActive time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, last_active FROM sessions WHERE token=? LIMIT 1", token).
		Scan(&userID, &lastActive)
	if err != nil {
		return 0, err
	}
	if r.IdleTTL > 0 && time.Now().UTC().Sub(lastActive) > r.IdleTTL {
		_, _ = r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token=?", token)
		return 0, sql.ErrNoRows
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE sessions SET last_active=NOW() WHERE token=?", token)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Destroy deletes the session row.  Idempotent: destroying an absent token
// is not an error.
func (r *SessionRepo) Destroy(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token=?", token)
	return err
}
