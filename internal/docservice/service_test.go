package docservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/generator"
	"github.com/starford/decisionlog/internal/testutil"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	_, store := testutil.TestWorkspace(t, testutil.SampleWorkspace())
	db := testutil.TestDB(t)
	gen := generator.New(store, generator.DefaultPaths(),
		generator.WithIndex(db),
		generator.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	svc := NewService(gen, store, db, opts...)
	if _, err := svc.Regenerate(context.Background()); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	return svc
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"adr", "ADR", " idea ", "IDEA"} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q): %v", in, err)
		}
	}
	if _, err := ParseKind("note"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListDocuments(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListDocuments(ctx, "")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("all = %d, want 5", len(all))
	}

	ideas, err := svc.ListDocuments(ctx, "idea")
	if err != nil {
		t.Fatalf("ListDocuments(idea): %v", err)
	}
	if len(ideas) != 2 {
		t.Errorf("ideas = %d, want 2", len(ideas))
	}

	if _, err := svc.ListDocuments(ctx, "memo"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetDocument(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.GetDocument(context.Background(), "adr", "1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Number != "0001" || doc.Path != "decisions/0001-monorepo.md" {
		t.Errorf("doc = %+v", doc.DocumentRow)
	}
	if !strings.HasPrefix(doc.Content, "# ADR-0001: 모노레포 채택") {
		t.Errorf("content = %q", doc.Content)
	}
	if strings.Join(doc.Backlinks, ",") != "0002,0003" {
		t.Errorf("backlinks = %v, want [0002 0003]", doc.Backlinks)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetDocument(context.Background(), "idea", "042"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Search(context.Background(), "PostgreSQL", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].Number != "0002" {
		t.Errorf("results = %+v", results)
	}

	if _, err := svc.Search(context.Background(), "  ", 10); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestArtifact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Artifact(ctx, ArtifactRelations)
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	if a.Path != "RELATIONS.md" || !strings.Contains(a.Content, "```mermaid") {
		t.Errorf("artifact = %+v", a)
	}

	idx, err := svc.Artifact(ctx, ArtifactIdeasIndex)
	if err != nil {
		t.Fatalf("Artifact(ideas-index): %v", err)
	}
	if !strings.Contains(idx.Content, "IDEA-001") {
		t.Errorf("ideas index not regenerated:\n%s", idx.Content)
	}

	if _, err := svc.Artifact(ctx, "secrets"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRegenerate_NotifiesListeners(t *testing.T) {
	var got *generator.Report
	svc := newTestService(t, OnRegenerate(func(r *generator.Report) { got = r }))

	if got == nil {
		t.Fatal("listener not called")
	}
	if got.ADRs != 3 || got.Ideas != 2 {
		t.Errorf("report = %+v", got)
	}
	if _, err := svc.Regenerate(context.Background()); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
}
