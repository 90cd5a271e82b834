package repository

import (
	"context"
	"database/sql"
	"time"
)

// BlogRepo provides CRUD for blog posts, their tag side table and comments.
type BlogRepo struct{ DB *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

// BlogPost is the listing/detail shape returned to clients.
type BlogPost struct {
	ID           uint64   `json:"post_id"`
	UserID       uint64   `json:"user_id"`
	AuthorName   string   `json:"author_name"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	ImageURL     string   `json:"image_url"`
	CommentCount int      `json:"comment_count"`
	Tags         []string `json:"tags,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// BlogComment is one comment with its author's name.
type BlogComment struct {
	ID         uint64 `json:"comment_id"`
	UserID     uint64 `json:"user_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// Create inserts a post and its tags in one transaction.
func (r *BlogRepo) Create(ctx context.Context, userID uint64, title, content, imageURL string, tags []string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO blog_posts (user_id, title, content, image_url) VALUES (?,?,?,?)",
		userID, title, content, imageURL)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceTagsTx(ctx, tx, "blog_tags", "post_id", uint64(id), tags, false); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns a page of posts, optionally filtered by tag, plus the total
// matching count for pagination.
func (r *BlogRepo) List(ctx context.Context, page, perPage int, tag string) ([]BlogPost, int, error) {
	where, args := "", []interface{}{}
	if tag != "" {
		where = " WHERE bp.id IN (SELECT post_id FROM blog_tags WHERE tag_name = ?)"
		args = append(args, tag)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blog_posts bp"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT bp.id, bp.user_id, COALESCE(p.full_name, ''), bp.title, bp.content, bp.image_url,
		       (SELECT COUNT(*) FROM blog_comments bc WHERE bc.post_id = bp.id),
		       bp.created_at, bp.updated_at
		FROM blog_posts bp
		LEFT JOIN user_profiles p ON p.user_id = bp.user_id` + where + `
		ORDER BY bp.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []BlogPost
	for rows.Next() {
		var bp BlogPost
		var created, updated time.Time
		if err := rows.Scan(&bp.ID, &bp.UserID, &bp.AuthorName, &bp.Title, &bp.Content,
			&bp.ImageURL, &bp.CommentCount, &created, &updated); err != nil {
			return nil, 0, err
		}
		bp.CreatedAt = created.Format(time.RFC3339)
		bp.UpdatedAt = updated.Format(time.RFC3339)
		out = append(out, bp)
	}
	return out, total, rows.Err()
}

// Get loads one post with its tags and comments.
func (r *BlogRepo) Get(ctx context.Context, id uint64) (BlogPost, []BlogComment, error) {
	var bp BlogPost
	var created, updated time.Time
	err := r.DB.QueryRowContext(ctx, `
		SELECT bp.id, bp.user_id, COALESCE(p.full_name, ''), bp.title, bp.content, bp.image_url,
		       (SELECT COUNT(*) FROM blog_comments bc WHERE bc.post_id = bp.id),
		       bp.created_at, bp.updated_at
		FROM blog_posts bp
		LEFT JOIN user_profiles p ON p.user_id = bp.user_id
		WHERE bp.id = ? LIMIT 1`, id).
		Scan(&bp.ID, &bp.UserID, &bp.AuthorName, &bp.Title, &bp.Content,
			&bp.ImageURL, &bp.CommentCount, &created, &updated)
	if err != nil {
		return bp, nil, err
	}
	bp.CreatedAt = created.Format(time.RFC3339)
	bp.UpdatedAt = updated.Format(time.RFC3339)

	bp.Tags, err = listTags(ctx, r.DB, "blog_tags", "post_id", "tag_name", id)
	if err != nil {
		return bp, nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT bc.id, bc.user_id, COALESCE(p.full_name, ''), bc.content, bc.created_at
		FROM blog_comments bc
		LEFT JOIN user_profiles p ON p.user_id = bc.user_id
		WHERE bc.post_id = ?
		ORDER BY bc.created_at ASC`, id)
	if err != nil {
		return bp, nil, err
	}
	defer rows.Close()

	var comments []BlogComment
	for rows.Next() {
		var c BlogComment
		var at time.Time
		if err := rows.Scan(&c.ID, &c.UserID, &c.AuthorName, &c.Content, &at); err != nil {
			return bp, nil, err
		}
		c.CreatedAt = at.Format(time.RFC3339)
		comments = append(comments, c)
	}
	return bp, comments, rows.Err()
}

// BlogPatch carries optional new values for a post; nil means unchanged.
// Tags == nil leaves tags alone, an empty non-nil slice clears them.
type BlogPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
	Tags     []string
}

// Update applies a patch to the author's own post.  Non-authors get
// ErrForbidden; unknown ids get sql.ErrNoRows.
func (r *BlogRepo) Update(ctx context.Context, id, userID uint64, patch BlogPatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "blog_posts", id, userID, false); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE blog_posts SET
			title = COALESCE(?, title),
			content = COALESCE(?, content),
			image_url = COALESCE(?, image_url)
		WHERE id = ?`, patch.Title, patch.Content, patch.ImageURL, id); err != nil {
		return err
	}
	if patch.Tags != nil {
		if err := replaceTagsTx(ctx, tx, "blog_tags", "post_id", id, patch.Tags, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a post with its comments and tags.  Allowed for the author
// or an admin.
func (r *BlogRepo) Delete(ctx context.Context, id, userID uint64, isAdmin bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "blog_posts", id, userID, isAdmin); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM blog_comments WHERE post_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM blog_tags WHERE post_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM blog_posts WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddComment appends a comment to an existing post.
func (r *BlogRepo) AddComment(ctx context.Context, postID, userID uint64, content string) (uint64, error) {
	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blog_posts WHERE id=?", postID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, sql.ErrNoRows
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO blog_comments (post_id, user_id, content) VALUES (?,?,?)",
		postID, userID, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}
