//go:build sqlite_fts5

package index

import (
	"testing"

	"github.com/starford/decisionlog/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_DeleteRemovesEntry(t *testing.T) {
	db := testDB(t)
	doc := testADR("0001", "0001-a.md", "1", nil, "")
	doc.Title = "Unique tokenizer heading"
	_ = db.UpsertDocument(doc)
	if err := db.DeleteDocument(models.KindADR, "0001-a.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	results, err := db.Search("tokenizer", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %d", len(results))
	}
}
