package repository

import (
	"context"
	"database/sql"
	"time"
)

// CourseRepo provides CRUD for courses, their ordered modules and
// enrollments.
type CourseRepo struct{ DB *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{DB: db} }

// Course is the listing/detail shape returned to clients.
type Course struct {
	ID             uint64 `json:"course_id"`
	UserID         uint64 `json:"user_id"`
	InstructorName string `json:"instructor_name"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	DurationWeeks  int    `json:"duration_weeks"`
	EnrolledCount  int    `json:"enrolled_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// CourseModule is one ordered unit of course material.
type CourseModule struct {
	ID       uint64 `json:"module_id"`
	CourseID uint64 `json:"course_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Create inserts a course.
func (r *CourseRepo) Create(ctx context.Context, userID uint64, title, description, category string, durationWeeks int) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO courses (user_id, title, description, category, duration_weeks) VALUES (?,?,?,?,?)",
		userID, title, description, category, durationWeeks)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// List returns a page of courses, optionally filtered by category, plus the
// total matching count.
func (r *CourseRepo) List(ctx context.Context, page, perPage int, category string) ([]Course, int, error) {
	where, args := "", []interface{}{}
	if category != "" {
		where = " WHERE c.category = ?"
		args = append(args, category)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM courses c"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.user_id, COALESCE(p.full_name, ''), c.title, c.description,
		       c.category, c.duration_weeks,
		       (SELECT COUNT(*) FROM course_enrollments ce WHERE ce.course_id = c.id),
		       c.created_at, c.updated_at
		FROM courses c
		LEFT JOIN user_profiles p ON p.user_id = c.user_id` + where + `
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get loads one course with its modules in position order.
func (r *CourseRepo) Get(ctx context.Context, id uint64) (Course, []CourseModule, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, COALESCE(p.full_name, ''), c.title, c.description,
		       c.category, c.duration_weeks,
		       (SELECT COUNT(*) FROM course_enrollments ce WHERE ce.course_id = c.id),
		       c.created_at, c.updated_at
		FROM courses c
		LEFT JOIN user_profiles p ON p.user_id = c.user_id
		WHERE c.id = ? LIMIT 1`, id)
	c, err := scanCourse(row)
	if err != nil {
		return c, nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, course_id, title, content, position
		FROM course_modules WHERE course_id = ?
		ORDER BY position ASC, id ASC`, id)
	if err != nil {
		return c, nil, err
	}
	defer rows.Close()

	var mods []CourseModule
	for rows.Next() {
		var m CourseModule
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Content, &m.Position); err != nil {
			return c, nil, err
		}
		mods = append(mods, m)
	}
	return c, mods, rows.Err()
}

func scanCourse(row rowScanner) (Course, error) {
	var c Course
	var created, updated time.Time
	err := row.Scan(&c.ID, &c.UserID, &c.InstructorName, &c.Title, &c.Description,
		&c.Category, &c.DurationWeeks, &c.EnrolledCount, &created, &updated)
	if err != nil {
		return c, err
	}
	c.CreatedAt = created.Format(time.RFC3339)
	c.UpdatedAt = updated.Format(time.RFC3339)
	return c, nil
}

// CoursePatch carries optional new values for a course; nil means unchanged.
type CoursePatch struct {
	Title         *string
	Description   *string
	Category      *string
	DurationWeeks *int
}

// Update applies a patch to the instructor's own course.
func (r *CourseRepo) Update(ctx context.Context, id, userID uint64, patch CoursePatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "courses", id, userID, false); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE courses SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			category = COALESCE(?, category),
			duration_weeks = COALESCE(?, duration_weeks)
		WHERE id = ?`,
		patch.Title, patch.Description, patch.Category, patch.DurationWeeks, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a course with its modules and enrollments.  Allowed for the
// instructor or an admin.
func (r *CourseRepo) Delete(ctx context.Context, id, userID uint64, isAdmin bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "courses", id, userID, isAdmin); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM course_enrollments WHERE course_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM course_modules WHERE course_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddModule appends a module to the instructor's own course.  Position 0
// places it after the current last module.
func (r *CourseRepo) AddModule(ctx context.Context, courseID, userID uint64, title, content string, position int) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "courses", courseID, userID, false); err != nil {
		return 0, err
	}
	if position <= 0 {
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), 0) + 1 FROM course_modules WHERE course_id=?",
			courseID).Scan(&position); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO course_modules (course_id, title, content, position) VALUES (?,?,?,?)",
		courseID, title, content, position)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Enroll records the user's enrollment.  Missing courses read as
// sql.ErrNoRows; re-enrollment hits the unique (course_id, user_id) key and
// surfaces as ErrConflict.
func (r *CourseRepo) Enroll(ctx context.Context, courseID, userID uint64) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM courses WHERE id=?", courseID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return sql.ErrNoRows
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO course_enrollments (course_id, user_id) VALUES (?,?)",
		courseID, userID)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}
