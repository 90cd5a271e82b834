package repository

import (
	"context"
	"database/sql"
	"time"
)

// ResearchRepo provides CRUD for research papers and their keyword side
// table.
type ResearchRepo struct{ DB *sql.DB }

func NewResearchRepo(db *sql.DB) *ResearchRepo { return &ResearchRepo{DB: db} }

// ResearchPaper is the listing/detail shape returned to clients.
type ResearchPaper struct {
	ID              uint64   `json:"paper_id"`
	UserID          uint64   `json:"user_id"`
	AuthorName      string   `json:"author_name"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Content         string   `json:"content"`
	PDFURL          string   `json:"pdf_url"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// Create inserts a paper and its keywords in one transaction.
// publicationDate may be empty; it is stored as NULL then.
func (r *ResearchRepo) Create(ctx context.Context, userID uint64, title, abstract, content, pdfURL, publicationDate string, keywords []string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO research_papers (user_id, title, abstract, content, pdf_url, publication_date) VALUES (?,?,?,?,?,?)",
		userID, title, abstract, content, pdfURL, nullIfEmpty(publicationDate))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceKeywordsTx(ctx, tx, uint64(id), keywords, false); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns a page of papers, optionally filtered by keyword, plus the
// total matching count.
func (r *ResearchRepo) List(ctx context.Context, page, perPage int, keyword string) ([]ResearchPaper, int, error) {
	where, args := "", []interface{}{}
	if keyword != "" {
		where = " WHERE rp.id IN (SELECT paper_id FROM paper_keywords WHERE keyword = ?)"
		args = append(args, keyword)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM research_papers rp"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT rp.id, rp.user_id, COALESCE(p.full_name, ''), rp.title, rp.abstract,
		       rp.content, rp.pdf_url, rp.publication_date, rp.created_at, rp.updated_at
		FROM research_papers rp
		LEFT JOIN user_profiles p ON p.user_id = rp.user_id` + where + `
		ORDER BY rp.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ResearchPaper
	for rows.Next() {
		rp, err := scanPaper(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rp)
	}
	return out, total, rows.Err()
}

// Get loads one paper with its keywords.
func (r *ResearchRepo) Get(ctx context.Context, id uint64) (ResearchPaper, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT rp.id, rp.user_id, COALESCE(p.full_name, ''), rp.title, rp.abstract,
		       rp.content, rp.pdf_url, rp.publication_date, rp.created_at, rp.updated_at
		FROM research_papers rp
		LEFT JOIN user_profiles p ON p.user_id = rp.user_id
		WHERE rp.id = ? LIMIT 1`, id)
	rp, err := scanPaper(row)
	if err != nil {
		return rp, err
	}
	rp.Keywords, err = listTags(ctx, r.DB, "paper_keywords", "paper_id", "keyword", id)
	return rp, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(row rowScanner) (ResearchPaper, error) {
	var rp ResearchPaper
	var pubDate sql.NullTime
	var created, updated time.Time
	err := row.Scan(&rp.ID, &rp.UserID, &rp.AuthorName, &rp.Title, &rp.Abstract,
		&rp.Content, &rp.PDFURL, &pubDate, &created, &updated)
	if err != nil {
		return rp, err
	}
	if pubDate.Valid {
		rp.PublicationDate = pubDate.Time.Format("2006-01-02")
	}
	rp.CreatedAt = created.Format(time.RFC3339)
	rp.UpdatedAt = updated.Format(time.RFC3339)
	return rp, nil
}

// ResearchPatch carries optional new values for a paper; nil means
// unchanged.  Keywords == nil leaves keywords alone.
type ResearchPatch struct {
	Title           *string
	Abstract        *string
	Content         *string
	PDFURL          *string
	PublicationDate *string
	Keywords        []string
}

// Update applies a patch to the author's own paper.
func (r *ResearchRepo) Update(ctx context.Context, id, userID uint64, patch ResearchPatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "research_papers", id, userID, false); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE research_papers SET
			title = COALESCE(?, title),
			abstract = COALESCE(?, abstract),
			content = COALESCE(?, content),
			pdf_url = COALESCE(?, pdf_url),
			publication_date = COALESCE(?, publication_date)
		WHERE id = ?`,
		patch.Title, patch.Abstract, patch.Content, patch.PDFURL,
		patch.PublicationDate, id); err != nil {
		return err
	}
	if patch.Keywords != nil {
		if err := replaceKeywordsTx(ctx, tx, id, patch.Keywords, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a paper with its keywords.  Allowed for the author or an
// admin.
func (r *ResearchRepo) Delete(ctx context.Context, id, userID uint64, isAdmin bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOwnerTx(ctx, tx, "research_papers", id, userID, isAdmin); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM paper_keywords WHERE paper_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM research_papers WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceKeywordsTx(ctx context.Context, tx *sql.Tx, paperID uint64, keywords []string, clearFirst bool) error {
	if clearFirst {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM paper_keywords WHERE paper_id=?", paperID); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO paper_keywords (paper_id, keyword) VALUES (?,?)", paperID, kw); err != nil {
			return err
		}
	}
	return nil
}
