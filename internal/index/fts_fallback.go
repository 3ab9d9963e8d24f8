//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/decisionlog/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the documents table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ DocumentRow) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ models.Kind, _ string) error {
	return nil
}

// Search performs a LIKE-based search over titles and statuses (fallback
// when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT kind, number, title, filename, status
		FROM documents
		WHERE title LIKE ? OR status LIKE ?
		ORDER BY kind, number
		LIMIT ?
	`, like, like, limit)
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
