//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/decisionlog/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			kind UNINDEXED,
			filename UNINDEXED,
			number UNINDEXED,
			title,
			status,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, row DocumentRow) error {
	if err := ftsDelete(tx, row.Kind, row.Filename); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO documents_fts (kind, filename, number, title, status) VALUES (?, ?, ?, ?, ?)`,
		string(row.Kind), row.Filename, row.Number, row.Title, row.Status)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, kind models.Kind, filename string) error {
	if _, err := tx.Exec(`DELETE FROM documents_fts WHERE kind = ? AND filename = ?`, string(kind), filename); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search over titles and statuses.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT kind, number, title, filename,
		       snippet(documents_fts, 3, '<b>', '</b>', '...', 32)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var (
			r    SearchResult
			kind string
		)
		if err := rows.Scan(&kind, &r.Number, &r.Title, &r.Filename, &r.Snippet); err != nil {
			return nil, err
		}
		r.Kind = models.Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
