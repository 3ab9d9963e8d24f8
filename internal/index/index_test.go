package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "decisionlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testADR(number, filename, checksum string, related []string, supersedes string) *models.ADR {
	return &models.ADR{
		Header: models.Header{
			Number:   number,
			Title:    "ADR " + number,
			Status:   "수락됨",
			Date:     "2024-01-01",
			Filename: filename,
			Related:  related,
			Checksum: checksum,
		},
		Supersedes: supersedes,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM relations`).Scan(&count); err != nil {
		t.Fatalf("relations table missing: %v", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.UpsertDocument(testADR("0001", "0001-a.md", "c1", nil, "")); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	docs, err := db.ListDocuments(models.KindADR)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("len = %d, want 1", len(docs))
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertDocument(testADR("0007", "0007-x.md", "abc", []string{"0001", "0002"}, "3")); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	got, err := db.GetDocument(models.KindADR, "7")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Number != "0007" || got.Filename != "0007-x.md" || got.Checksum != "abc" {
		t.Errorf("row = %+v", got)
	}
	if !reflect.DeepEqual(got.Related, []string{"0001", "0002"}) {
		t.Errorf("related = %v", got.Related)
	}
	if got.Supersedes != "3" {
		t.Errorf("supersedes = %q", got.Supersedes)
	}
	if got.ID() != "ADR-0007" {
		t.Errorf("ID = %q", got.ID())
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetDocument(models.KindIdea, "42")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestKindsAreSeparateNamespaces(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(testADR("0001", "0001-a.md", "1", nil, ""))
	_ = db.UpsertDocument(&models.Idea{Header: models.Header{Number: "001", Title: "Idea", Filename: "001-i.md", Checksum: "2"}})

	adrs, _ := db.ListDocuments(models.KindADR)
	ideas, _ := db.ListDocuments(models.KindIdea)
	all, _ := db.ListDocuments("")
	if len(adrs) != 1 || len(ideas) != 1 || len(all) != 2 {
		t.Errorf("adrs=%d ideas=%d all=%d", len(adrs), len(ideas), len(all))
	}
	if ideas[0].Related == nil {
		t.Error("related should decode to an empty slice")
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(testADR("0002", "0002-b.md", "1", []string{"0001"}, ""))
	_ = db.UpsertDocument(testADR("0003", "0003-c.md", "2", nil, "1"))
	_ = db.UpsertDocument(testADR("0004", "0004-d.md", "3", []string{"0002"}, ""))

	bl, err := db.Backlinks(models.KindADR, "0001")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if !reflect.DeepEqual(bl, []string{"0002", "0003"}) {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestUpsertReplacesRelations(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(testADR("0002", "0002-b.md", "1", []string{"0001"}, ""))
	_ = db.UpsertDocument(testADR("0002", "0002-b.md", "2", []string{"0005"}, ""))

	if bl, _ := db.Backlinks(models.KindADR, "1"); len(bl) != 0 {
		t.Errorf("old relation should be removed, got %v", bl)
	}
	if bl, _ := db.Backlinks(models.KindADR, "5"); len(bl) != 1 {
		t.Errorf("new relation should exist, got %v", bl)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(testADR("0002", "0002-b.md", "1", []string{"0001"}, ""))
	if err := db.DeleteDocument(models.KindADR, "0002-b.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.AllChecksums(models.KindADR)
	if len(cs) != 0 {
		t.Errorf("checksums = %v, want empty", cs)
	}
	if bl, _ := db.Backlinks(models.KindADR, "1"); len(bl) != 0 {
		t.Errorf("backlinks after delete = %v", bl)
	}
}

func TestDeleteDocument_ReportsFailure(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertDocument(testADR("0002", "0002-b.md", "1", nil, "")); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if _, err := db.conn.Exec(`DROP TABLE relations`); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteDocument(models.KindADR, "0002-b.md"); err == nil {
		t.Fatal("expected error when a delete statement fails")
	}
	cs, _ := db.AllChecksums(models.KindADR)
	if _, ok := cs["0002-b.md"]; !ok {
		t.Error("document removed despite failed transaction")
	}
	if err := Sync(db, models.KindADR, nil, discardLogger()); err == nil {
		t.Error("Sync should surface the delete failure")
	}
}

func TestSync_UpsertsAndRemovesStale(t *testing.T) {
	db := testDB(t)
	logger := discardLogger()

	first := []models.Document{
		testADR("0001", "0001-a.md", "c1", nil, ""),
		testADR("0002", "0002-b.md", "c2", nil, ""),
	}
	if err := Sync(db, models.KindADR, first, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	second := []models.Document{
		testADR("0001", "0001-a.md", "c1-changed", nil, ""),
	}
	if err := Sync(db, models.KindADR, second, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	cs, err := db.AllChecksums(models.KindADR)
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if want := map[string]string{"0001-a.md": "c1-changed"}; !reflect.DeepEqual(cs, want) {
		t.Errorf("checksums = %v, want %v", cs, want)
	}
}

func TestSync_LeavesOtherKindAlone(t *testing.T) {
	db := testDB(t)
	logger := discardLogger()
	_ = db.UpsertDocument(&models.Idea{Header: models.Header{Number: "001", Title: "Idea", Filename: "001-i.md", Checksum: "i"}})

	if err := Sync(db, models.KindADR, nil, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	ideas, _ := db.ListDocuments(models.KindIdea)
	if len(ideas) != 1 {
		t.Errorf("idea removed by ADR sync")
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	doc := testADR("0009", "0009-s.md", "1", nil, "")
	doc.Title = "Event sourcing rollout"
	_ = db.UpsertDocument(doc)

	results, err := db.Search("sourcing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "0009-s.md" || results[0].Kind != models.KindADR {
		t.Errorf("search results = %+v, want 1 hit for 0009-s.md", results)
	}
}
