package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/prabhjot122/LawCourt/internal/model"
)

// User mirrors the 'users' table joined with its role name.  PasswordHash is
// nullable: OAuth-only accounts never set one.
type User struct {
	ID              uint64
	Email           string
	PasswordHash    sql.NullString
	RoleID          int
	RoleName        string
	IsSuperAdmin    bool
	Status          string
	AuthProvider    string
	OAuthID         sql.NullString
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin derives administrative authority from the current row.  Tokens
// never carry this; it is re-read from the database on every request.
func (u User) IsAdmin() bool { return u.RoleID == model.RoleAdmin || u.IsSuperAdmin }

// CanEdit reports whether the user may manage content (Admin or Editor).
func (u User) CanEdit() bool { return u.RoleID <= model.RoleEditor || u.IsSuperAdmin }

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.email, u.password_hash, u.role_id, r.name, u.is_super_admin,
	u.status, u.auth_provider, u.oauth_id, u.profile_complete, u.created_at, u.updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.IsSuperAdmin,
		&u.Status, &u.AuthProvider, &u.OAuthID, &u.ProfileComplete, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Register inserts a user with the User role and its full profile as one
// transaction and returns the new user id.
func (r *UserRepo) Register(ctx context.Context, email, passwordHash string, p model.Profile) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role_id, status) VALUES (?,?,?, 'Active')",
		email, passwordHash, model.RoleUser)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertProfileTx(ctx, tx, uint64(id), p); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateGoogleUser inserts a first-login OAuth user (role User, profile
// incomplete) together with a minimal profile carrying the provider's name
// and picture.
func (r *UserRepo) CreateGoogleUser(ctx context.Context, email, oauthID, name, picture string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, role_id, auth_provider, oauth_id, status, profile_complete)
		 VALUES (?, ?, 'google', ?, 'Active', FALSE)`,
		email, model.RoleUser, oauthID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_profiles (user_id, full_name, profile_pic) VALUES (?,?,?)",
		id, name, picture); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateByAdmin inserts a user with an explicit role plus any provided
// profile fields, in one transaction.
func (r *UserRepo) CreateByAdmin(ctx context.Context, email, passwordHash string, roleID int, p ProfilePatch) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role_id, status) VALUES (?,?,?, 'Active')",
		email, passwordHash, roleID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO user_profiles (user_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	if err := applyProfilePatchTx(ctx, tx, uint64(id), p); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetActiveByEmail fetches an Active user by normalized email, joined with
// its role name.
func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON u.role_id = r.id WHERE u.email=? AND u.status='Active' LIMIT 1",
		email))
}

// GetByID fetches a user by id regardless of status.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON u.role_id = r.id WHERE u.id=? LIMIT 1",
		id))
}

// GetActiveGoogleUser resolves an Active google-provider account by subject
// id or email.
func (r *UserRepo) GetActiveGoogleUser(ctx context.Context, oauthID, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u JOIN roles r ON u.role_id = r.id
		 WHERE u.auth_provider='google' AND (u.oauth_id=? OR u.email=?) AND u.status='Active' LIMIT 1`,
		oauthID, email))
}

// EmailExistsOtherProvider reports whether the email is already registered
// under a provider other than google.  Guards against silent account
// takeover through OAuth.
func (r *UserRepo) EmailExistsOtherProvider(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND auth_provider <> 'google'", email).Scan(&n)
	return n > 0, err
}

// UpdateRole assigns a new role to the user.
func (r *UserRepo) UpdateRole(ctx context.Context, userID uint64, roleID int) error {
	return r.execOnUser(ctx, "UPDATE users SET role_id=? WHERE id=?", roleID, userID)
}

// UpdateStatus assigns a new account status to the user.
func (r *UserRepo) UpdateStatus(ctx context.Context, userID uint64, status string) error {
	return r.execOnUser(ctx, "UPDATE users SET status=? WHERE id=?", status, userID)
}

// UpdateEmail changes the user's login email.
func (r *UserRepo) UpdateEmail(ctx context.Context, userID uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.execOnUser(ctx, "UPDATE users SET email=? WHERE id=?", email, userID)
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
	return r.execOnUser(ctx, "UPDATE users SET password_hash=? WHERE id=?", passwordHash, userID)
}

func (r *UserRepo) execOnUser(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows both for missing users and for no-op
	// updates, so existence is checked by the caller where it matters.
	_, err = res.RowsAffected()
	return err
}

// AdminUserView is one row of the admin user listing.  IsActive means the
// user had a session touched within the last 30 days.
type AdminUserView struct {
	UserID            uint64 `json:"user_id"`
	Email             string `json:"email"`
	RoleID            int    `json:"role_id"`
	RoleName          string `json:"role_name"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	FullName          string `json:"full_name"`
	Phone             string `json:"phone"`
	Bio               string `json:"bio"`
	PracticeArea      string `json:"practice_area"`
	Location          string `json:"location"`
	YearsOfExperience int    `json:"years_of_experience"`
	IsActive          bool   `json:"is_active"`
}

// AdminList returns every user with profile fields and recent-session
// activity, newest first.
func (r *UserRepo) AdminList(ctx context.Context) ([]AdminUserView, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.email, u.role_id, COALESCE(r.name, 'User'), u.status, u.created_at,
		       COALESCE(p.full_name, ''), COALESCE(p.phone, ''), COALESCE(p.bio, ''),
		       COALESCE(p.practice_area, ''), COALESCE(p.location, ''), COALESCE(p.years_of_experience, 0),
		       EXISTS (SELECT 1 FROM sessions s WHERE s.user_id = u.id
		               AND s.last_active > DATE_SUB(NOW(), INTERVAL 30 DAY))
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		LEFT JOIN roles r ON r.id = u.role_id
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminUserView
	for rows.Next() {
		var v AdminUserView
		var createdAt time.Time
		if err := rows.Scan(&v.UserID, &v.Email, &v.RoleID, &v.RoleName, &v.Status, &createdAt,
			&v.FullName, &v.Phone, &v.Bio, &v.PracticeArea, &v.Location, &v.YearsOfExperience,
			&v.IsActive); err != nil {
			return nil, err
		}
		v.CreatedAt = createdAt.Format(time.RFC3339)
		out = append(out, v)
	}
	return out, rows.Err()
}

// EmailRecipient is one row of the recipient picker used by the (stubbed)
// email endpoints.
type EmailRecipient struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	PracticeArea string `json:"practice_area"`
	RoleName     string `json:"role_name"`
	Status       string `json:"status"`
}

// ListForEmail returns all Active users ordered by name.
func (r *UserRepo) ListForEmail(ctx context.Context) ([]EmailRecipient, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.email, COALESCE(NULLIF(p.full_name, ''), 'No Name'),
		       COALESCE(NULLIF(p.practice_area, ''), 'Not Specified'),
		       COALESCE(r.name, 'User'), u.status
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.status = 'Active'
		ORDER BY p.full_name, u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmailRecipient
	for rows.Next() {
		var v EmailRecipient
		if err := rows.Scan(&v.UserID, &v.Email, &v.FullName, &v.PracticeArea, &v.RoleName, &v.Status); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RoleCount pairs a role name with its Active user count.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// MonthlyCount pairs a YYYY-MM month with its registration count.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	RoleCounts           []RoleCount    `json:"role_counts"`
	ActiveUsers          int            `json:"active_users"`
	TotalUsers           int            `json:"total_users"`
	PendingRequests      int            `json:"pending_requests"`
	MonthlyRegistrations []MonthlyCount `json:"monthly_registrations"`
}

// LoadAnalytics gathers the dashboard counters: users per role, active users
// (session within 30 days), totals, pending requests, and registrations per
// month over the last 6 months.
func (r *UserRepo) LoadAnalytics(ctx context.Context) (Analytics, error) {
	var a Analytics

	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.name, COUNT(u.id)
		FROM roles r
		LEFT JOIN users u ON u.role_id = r.id AND u.status = 'Active'
		GROUP BY r.id, r.name`)
	if err != nil {
		return a, err
	}
	defer rows.Close()
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return a, err
		}
		a.RoleCounts = append(a.RoleCounts, rc)
	}
	if err := rows.Err(); err != nil {
		return a, err
	}

	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM sessions WHERE last_active > DATE_SUB(NOW(), INTERVAL 30 DAY)").
		Scan(&a.ActiveUsers); err != nil {
		return a, err
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE status='Active'").Scan(&a.TotalUsers); err != nil {
		return a, err
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM access_requests WHERE status='Pending'").Scan(&a.PendingRequests); err != nil {
		return a, err
	}

	mrows, err := r.DB.QueryContext(ctx, `
		SELECT DATE_FORMAT(created_at, '%Y-%m') AS month, COUNT(*)
		FROM users
		WHERE created_at >= DATE_SUB(NOW(), INTERVAL 6 MONTH)
		GROUP BY month ORDER BY month`)
	if err != nil {
		return a, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var mc MonthlyCount
		if err := mrows.Scan(&mc.Month, &mc.Count); err != nil {
			return a, err
		}
		a.MonthlyRegistrations = append(a.MonthlyRegistrations, mc)
	}
	return a, mrows.Err()
}

// isDuplicate detects MySQL error 1062 (duplicate entry) without depending
// on the driver's error type.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
