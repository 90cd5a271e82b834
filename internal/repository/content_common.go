package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Shared helpers for the content repositories.  Table and column names are
// always compile-time constants from this package, never request input.

// checkOwnerTx verifies the row exists and belongs to userID (admins may act
// on any row when adminOverride is set).  Missing row -> sql.ErrNoRows,
// foreign row -> ErrForbidden.  The row is locked until the transaction
// ends.
func checkOwnerTx(ctx context.Context, tx *sql.Tx, table string, id, userID uint64, adminOverride bool) error {
	var owner uint64
	err := tx.QueryRowContext(ctx,
		"SELECT user_id FROM "+table+" WHERE id=? FOR UPDATE", id).Scan(&owner)
	if err != nil {
		return err
	}
	if owner != userID && !adminOverride {
		return ErrForbidden
	}
	return nil
}

// replaceTagsTx rewrites the tag side table for one parent row.  Tags are
// trimmed and de-duplicated; empty tags are dropped.
func replaceTagsTx(ctx context.Context, tx *sql.Tx, table, fkCol string, parentID uint64, tags []string, clearFirst bool) error {
	if clearFirst {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE "+fkCol+"=?", parentID); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" ("+fkCol+", tag_name) VALUES (?,?)", parentID, tag); err != nil {
			return err
		}
	}
	return nil
}

// listTags loads the tag values for one parent row.
func listTags(ctx context.Context, db *sql.DB, table, fkCol, valCol string, parentID uint64) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+valCol+" FROM "+table+" WHERE "+fkCol+"=? ORDER BY "+valCol, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
