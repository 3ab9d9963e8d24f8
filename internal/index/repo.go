package index

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/parser"
)

// Relation types stored in the relations table.
const (
	RelationRelated    = "related"
	RelationSupersedes = "supersedes"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Kind       models.Kind `json:"kind"`
	Number     string      `json:"number"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	Date       string      `json:"date"`
	Filename   string      `json:"filename"`
	Checksum   string      `json:"checksum"`
	Related    []string    `json:"related"`
	Supersedes string      `json:"supersedes,omitempty"`
}

// ID returns the display identifier, e.g. "ADR-0003".
func (r DocumentRow) ID() string {
	return r.Kind.Prefix() + "-" + r.Number
}

// SearchResult represents one search hit.
type SearchResult struct {
	Kind     models.Kind `json:"kind"`
	Number   string      `json:"number"`
	Title    string      `json:"title"`
	Filename string      `json:"filename"`
	Snippet  string      `json:"snippet"`
}

func rowFromDocument(doc models.Document) DocumentRow {
	h := doc.Meta()
	row := DocumentRow{
		Kind:     doc.Kind(),
		Number:   h.Number,
		Title:    h.Title,
		Status:   h.Status,
		Date:     h.Date,
		Filename: h.Filename,
		Checksum: h.Checksum,
		Related:  h.Related,
	}
	if adr, ok := doc.(*models.ADR); ok {
		row.Supersedes = adr.Supersedes
	}
	if row.Related == nil {
		row.Related = []string{}
	}
	return row
}

// UpsertDocument inserts or replaces a document, its FTS entry and its
// outgoing relations within a transaction.
func (db *DB) UpsertDocument(doc models.Document) error {
	row := rowFromDocument(doc)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	relatedJSON, _ := json.Marshal(row.Related)

	_, err = tx.Exec(`
		INSERT INTO documents (kind, filename, number, title, status, date, checksum, related, supersedes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, filename) DO UPDATE SET
			number     = excluded.number,
			title      = excluded.title,
			status     = excluded.status,
			date       = excluded.date,
			checksum   = excluded.checksum,
			related    = excluded.related,
			supersedes = excluded.supersedes
	`, string(row.Kind), row.Filename, row.Number, row.Title, row.Status, row.Date, row.Checksum, string(relatedJSON), row.Supersedes)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, row); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM relations WHERE kind = ? AND filename = ?`, string(row.Kind), row.Filename); err != nil {
		return fmt.Errorf("index: clear relations: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO relations (kind, filename, source, target, type) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare relation insert: %w", err)
	}
	defer stmt.Close()

	source := parser.TrimZeros(row.Number)
	for _, target := range row.Related {
		if _, err := stmt.Exec(string(row.Kind), row.Filename, source, parser.TrimZeros(target), RelationRelated); err != nil {
			return fmt.Errorf("index: insert relation: %w", err)
		}
	}
	if row.Supersedes != "" {
		if _, err := stmt.Exec(string(row.Kind), row.Filename, source, row.Supersedes, RelationSupersedes); err != nil {
			return fmt.Errorf("index: insert relation: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry and its outgoing relations.
func (db *DB) DeleteDocument(kind models.Kind, filename string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, kind, filename); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM relations WHERE kind = ? AND filename = ?`, string(kind), filename); err != nil {
		return fmt.Errorf("index: delete relations: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE kind = ? AND filename = ?`, string(kind), filename); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}

	return tx.Commit()
}

// AllChecksums returns filename → checksum for every indexed document of kind.
func (db *DB) AllChecksums(kind models.Kind) (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT filename, checksum FROM documents WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

const selectDocument = `SELECT kind, number, title, status, date, filename, checksum, related, supersedes FROM documents`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (DocumentRow, error) {
	var (
		r       DocumentRow
		kind    string
		related string
	)
	if err := s.Scan(&kind, &r.Number, &r.Title, &r.Status, &r.Date, &r.Filename, &r.Checksum, &related, &r.Supersedes); err != nil {
		return r, err
	}
	r.Kind = models.Kind(kind)
	if err := json.Unmarshal([]byte(related), &r.Related); err != nil || r.Related == nil {
		r.Related = []string{}
	}
	return r, nil
}

// ListDocuments returns indexed documents ordered by kind then number.
// An empty kind lists every category.
func (db *DB) ListDocuments(kind models.Kind) ([]DocumentRow, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = db.conn.Query(selectDocument + ` ORDER BY kind, number, filename`)
	} else {
		rows, err = db.conn.Query(selectDocument+` WHERE kind = ? ORDER BY number, filename`, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []DocumentRow{}
	for rows.Next() {
		r, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDocument returns the document of kind whose number matches, ignoring
// leading zeros. It returns apperr.ErrNotFound when none matches.
func (db *DB) GetDocument(kind models.Kind, number string) (*DocumentRow, error) {
	rows, err := db.conn.Query(selectDocument+` WHERE kind = ? ORDER BY number, filename`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	defer rows.Close()

	want := parser.TrimZeros(number)
	for rows.Next() {
		r, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if parser.TrimZeros(r.Number) == want {
			return &r, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("index: %s-%s: %w", kind.Prefix(), number, apperr.ErrNotFound)
}

// Backlinks returns the numbers of documents of kind that relate to or
// supersede the given number.
func (db *DB) Backlinks(kind models.Kind, number string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT d.number
		FROM relations r
		JOIN documents d ON d.kind = r.kind AND d.filename = r.filename
		WHERE r.kind = ? AND r.target = ?
		ORDER BY d.number
	`, string(kind), parser.TrimZeros(number))
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
