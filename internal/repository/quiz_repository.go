package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// QuizRepo provides CRUD for quizzes, their questions and attempt scoring.
// Question options are stored as a JSON array; correct answers never leave
// the database through the read paths.
type QuizRepo struct{ DB *sql.DB }

func NewQuizRepo(db *sql.DB) *QuizRepo { return &QuizRepo{DB: db} }

// Quiz is the listing/detail shape returned to clients.
type Quiz struct {
	ID            uint64 `json:"quiz_id"`
	UserID        uint64 `json:"user_id"`
	CreatorName   string `json:"creator_name"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	QuestionCount int    `json:"question_count"`
	TotalPoints   int    `json:"total_points"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// QuizQuestion is one question as shown to a quiz taker.  The correct
// answer is deliberately absent.
type QuizQuestion struct {
	ID       uint64   `json:"question_id"`
	QuizID   uint64   `json:"quiz_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// QuizResult is the outcome of one scored attempt.
type QuizResult struct {
	AttemptID    uint64 `json:"attempt_id"`
	QuizID       uint64 `json:"quiz_id"`
	Score        int    `json:"score"`
	TotalPoints  int    `json:"total_points"`
	CorrectCount int    `json:"correct_count"`
	Total        int    `json:"total_questions"`
}

// Create inserts a quiz.
func (r *QuizRepo) Create(ctx context.Context, userID uint64, title, description, category string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO quizzes (user_id, title, description, category) VALUES (?,?,?,?)",
		userID, title, description, category)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// List returns a page of quizzes, optionally filtered by category, plus the
// total matching count.
func (r *QuizRepo) List(ctx context.Context, page, perPage int, category string) ([]Quiz, int, error) {
	where, args := "", []interface{}{}
	if category != "" {
		where = " WHERE q.category = ?"
		args = append(args, category)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM quizzes q"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT q.id, q.user_id, COALESCE(p.full_name, ''), q.title, q.description, q.category,
		       (SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		       (SELECT COALESCE(SUM(qq.points), 0) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		       q.created_at, q.updated_at
		FROM quizzes q
		LEFT JOIN user_profiles p ON p.user_id = q.user_id` + where + `
		ORDER BY q.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

// Get loads one quiz and its questions without correct answers.
func (r *QuizRepo) Get(ctx context.Context, id uint64) (Quiz, []QuizQuestion, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT q.id, q.user_id, COALESCE(p.full_name, ''), q.title, q.description, q.category,
		       (SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		       (SELECT COALESCE(SUM(qq.points), 0) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		       q.created_at, q.updated_at
		FROM quizzes q
		LEFT JOIN user_profiles p ON p.user_id = q.user_id
		WHERE q.id = ? LIMIT 1`, id)
	q, err := scanQuiz(row)
	if err != nil {
		return q, nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, quiz_id, question, options, points
		FROM quiz_questions WHERE quiz_id = ?
		ORDER BY id ASC`, id)
	if err != nil {
		return q, nil, err
	}
	defer rows.Close()

	var questions []QuizQuestion
	for rows.Next() {
		var qq QuizQuestion
		var options []byte
		if err := rows.Scan(&qq.ID, &qq.QuizID, &qq.Question, &options, &qq.Points); err != nil {
			return q, nil, err
		}
		if err := json.Unmarshal(options, &qq.Options); err != nil {
			return q, nil, err
		}
		questions = append(questions, qq)
	}
	return q, questions, rows.Err()
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var created, updated time.Time
	err := row.Scan(&q.ID, &q.UserID, &q.CreatorName, &q.Title, &q.Description, &q.Category,
		&q.QuestionCount, &q.TotalPoints, &created, &updated)
	if err != nil {
		return q, err
	}
	q.CreatedAt = created.Format(time.RFC3339)
	q.UpdatedAt = updated.Format(time.RFC3339)
	return q, nil
}

// QuizPatch carries optional new values for a quiz; nil means unchanged.
type QuizPatch struct {
	Title       *string
	Description *string
	Category    *string
}

// Update applies a patch to the creator's own quiz.
func (r *QuizRepo) Update(ctx context.Context, id, userID uint64, patch QuizPatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "quizzes", id, userID, false); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE quizzes SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			category = COALESCE(?, category)
		WHERE id = ?`, patch.Title, patch.Description, patch.Category, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a quiz with its questions and attempts.  Allowed for the
// creator or an admin.
func (r *QuizRepo) Delete(ctx context.Context, id, userID uint64, isAdmin bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "quizzes", id, userID, isAdmin); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM quiz_attempts WHERE quiz_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM quiz_questions WHERE quiz_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM quizzes WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddQuestion appends a question to the creator's own quiz.  The correct
// answer must be one of the options; points below 1 default to 1.
func (r *QuizRepo) AddQuestion(ctx context.Context, quizID, userID uint64, question string, options []string, correctAnswer string, points int) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "quizzes", quizID, userID, false); err != nil {
		return 0, err
	}
	if points < 1 {
		points = 1
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO quiz_questions (quiz_id, question, options, correct_answer, points) VALUES (?,?,?,?,?)",
		quizID, question, raw, correctAnswer, points)
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

// Submit scores the user's answers against the stored correct answers and
// records the attempt.  answers maps question id to the chosen option.
// Unanswered or unknown question ids simply score zero.
func (r *QuizRepo) Submit(ctx context.Context, quizID, userID uint64, answers map[uint64]string) (QuizResult, error) {
	var res QuizResult
	res.QuizID = quizID

	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM quizzes WHERE id=?", quizID).Scan(&exists); err != nil {
		return res, err
	}
	if exists == 0 {
		return res, sql.ErrNoRows
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, correct_answer, points FROM quiz_questions WHERE quiz_id=?", quizID)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qid     uint64
			correct string
			points  int
		)
		if err := rows.Scan(&qid, &correct, &points); err != nil {
			return res, err
		}
		res.Total++
		res.TotalPoints += points
		if answers[qid] == correct {
			res.CorrectCount++
			res.Score += points
		}
	}
	if err := rows.Err(); err != nil {
		return res, err
	}

	ins, err := r.DB.ExecContext(ctx,
		"INSERT INTO quiz_attempts (quiz_id, user_id, score, total_points) VALUES (?,?,?,?)",
		quizID, userID, res.Score, res.TotalPoints)
	if err != nil {
		return res, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return res, err
	}
	res.AttemptID = uint64(id)
	return res, nil
}
