package repository

import (
	"context"
	"database/sql"
	"time"
)

// InternshipRepo provides CRUD for internship postings and applications.
type InternshipRepo struct{ DB *sql.DB }

func NewInternshipRepo(db *sql.DB) *InternshipRepo { return &InternshipRepo{DB: db} }

// Internship is the listing/detail shape returned to clients.
type Internship struct {
	ID          uint64   `json:"internship_id"`
	UserID      uint64   `json:"user_id"`
	PostedBy    string   `json:"posted_by"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Stipend     string   `json:"stipend"`
	Deadline    string   `json:"deadline,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// InternshipApplication is one user's application to a posting.
type InternshipApplication struct {
	ID            uint64 `json:"application_id"`
	InternshipID  uint64 `json:"internship_id"`
	UserID        uint64 `json:"user_id"`
	ApplicantName string `json:"applicant_name"`
	CoverLetter   string `json:"cover_letter"`
	AppliedAt     string `json:"applied_at"`
}

// Create inserts a posting and its tags in one transaction.  deadline may be
// empty and is stored as NULL then.
func (r *InternshipRepo) Create(ctx context.Context, userID uint64, title, company, location, description, stipend, deadline string, tags []string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO internships (user_id, title, company, location, description, stipend, deadline) VALUES (?,?,?,?,?,?,?)",
		userID, title, company, location, description, stipend, nullIfEmpty(deadline))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceTagsTx(ctx, tx, "internship_tags", "internship_id", uint64(id), tags, false); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns a page of postings, optionally filtered by location, plus the
// total matching count.
func (r *InternshipRepo) List(ctx context.Context, page, perPage int, location string) ([]Internship, int, error) {
	where, args := "", []interface{}{}
	if location != "" {
		where = " WHERE i.location = ?"
		args = append(args, location)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM internships i"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT i.id, i.user_id, COALESCE(p.full_name, ''), i.title, i.company, i.location,
		       i.description, i.stipend, i.deadline, i.created_at, i.updated_at
		FROM internships i
		LEFT JOIN user_profiles p ON p.user_id = i.user_id` + where + `
		ORDER BY i.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// Get loads one posting with its tags.
func (r *InternshipRepo) Get(ctx context.Context, id uint64) (Internship, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT i.id, i.user_id, COALESCE(p.full_name, ''), i.title, i.company, i.location,
		       i.description, i.stipend, i.deadline, i.created_at, i.updated_at
		FROM internships i
		LEFT JOIN user_profiles p ON p.user_id = i.user_id
		WHERE i.id = ? LIMIT 1`, id)
	in, err := scanInternship(row)
	if err != nil {
		return in, err
	}
	in.Tags, err = listTags(ctx, r.DB, "internship_tags", "internship_id", "tag_name", id)
	return in, err
}

func scanInternship(row rowScanner) (Internship, error) {
	var in Internship
	var deadline sql.NullTime
	var created, updated time.Time
	err := row.Scan(&in.ID, &in.UserID, &in.PostedBy, &in.Title, &in.Company, &in.Location,
		&in.Description, &in.Stipend, &deadline, &created, &updated)
	if err != nil {
		return in, err
	}
	if deadline.Valid {
		in.Deadline = deadline.Time.Format("2006-01-02")
	}
	in.CreatedAt = created.Format(time.RFC3339)
	in.UpdatedAt = updated.Format(time.RFC3339)
	return in, nil
}

// InternshipPatch carries optional new values for a posting; nil means
// unchanged.  Tags == nil leaves tags alone.
type InternshipPatch struct {
	Title       *string
	Company     *string
	Location    *string
	Description *string
	Stipend     *string
	Deadline    *string
	Tags        []string
}

// Update applies a patch to the poster's own listing.
func (r *InternshipRepo) Update(ctx context.Context, id, userID uint64, patch InternshipPatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "internships", id, userID, false); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE internships SET
			title = COALESCE(?, title),
			company = COALESCE(?, company),
			location = COALESCE(?, location),
			description = COALESCE(?, description),
			stipend = COALESCE(?, stipend),
			deadline = COALESCE(?, deadline)
		WHERE id = ?`,
		patch.Title, patch.Company, patch.Location, patch.Description,
		patch.Stipend, patch.Deadline, id); err != nil {
		return err
	}
	if patch.Tags != nil {
		if err := replaceTagsTx(ctx, tx, "internship_tags", "internship_id", id, patch.Tags, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a posting with its tags and applications.  Allowed for the
// poster or an admin.
func (r *InternshipRepo) Delete(ctx context.Context, id, userID uint64, isAdmin bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "internships", id, userID, isAdmin); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM internship_applications WHERE internship_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM internship_tags WHERE internship_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM internships WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Apply records the user's application to a posting.  Missing postings read
// as sql.ErrNoRows; a second application from the same user hits the unique
// (internship_id, user_id) key and surfaces as ErrConflict.
func (r *InternshipRepo) Apply(ctx context.Context, internshipID, userID uint64, coverLetter string) (uint64, error) {
	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM internships WHERE id=?", internshipID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, sql.ErrNoRows
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO internship_applications (internship_id, user_id, cover_letter) VALUES (?,?,?)",
		internshipID, userID, coverLetter)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// Applications lists who applied to a posting.  Only the poster or an admin
// may read the list.
func (r *InternshipRepo) Applications(ctx context.Context, internshipID, userID uint64, isAdmin bool) ([]InternshipApplication, error) {
	var owner uint64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM internships WHERE id=?", internshipID).Scan(&owner); err != nil {
		return nil, err
	}
	if owner != userID && !isAdmin {
		return nil, ErrForbidden
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT ia.id, ia.internship_id, ia.user_id, COALESCE(p.full_name, ''),
		       ia.cover_letter, ia.applied_at
		FROM internship_applications ia
		LEFT JOIN user_profiles p ON p.user_id = ia.user_id
		WHERE ia.internship_id = ?
		ORDER BY ia.applied_at ASC`, internshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InternshipApplication
	for rows.Next() {
		var a InternshipApplication
		var at time.Time
		if err := rows.Scan(&a.ID, &a.InternshipID, &a.UserID, &a.ApplicantName,
			&a.CoverLetter, &at); err != nil {
			return nil, err
		}
		a.AppliedAt = at.Format(time.RFC3339)
		out = append(out, a)
	}
	return out, rows.Err()
}
