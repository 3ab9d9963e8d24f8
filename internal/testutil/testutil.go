// Package testutil provides shared test helpers for setting up workspaces and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/storage"
)

// IndexReadme is a minimal category index document with an empty
// auto-generated region.
const IndexReadme = "# 목록\n\n<!-- AUTO-GENERATED-START -->\n<!-- AUTO-GENERATED-END -->\n\n직접 작성한 내용.\n"

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "decisionlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace holding files (relative path →
// content) and returns its root with a storage.FS over it.
func TestWorkspace(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		WriteFile(t, root, name, content)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile writes content to root/name, creating parent directories.
func WriteFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of root/name, failing the test on error.
func ReadFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// SampleWorkspace returns the files of a small knowledge base with three
// ADRs and two ideas.
func SampleWorkspace() map[string]string {
	return map[string]string{
		"decisions/README.md":    IndexReadme,
		"decisions/_template.md": "# ADR-0000: 템플릿\n",
		"decisions/0001-monorepo.md": "# ADR-0001: 모노레포 채택\n\n" +
			"**상태**: 수락됨\n**날짜**: 2024-01-10\n**관련 ADR**: -\n",
		"decisions/0002-postgres.md": "# ADR-0002: PostgreSQL 사용\n\n" +
			"**상태**: 폐기됨\n**날짜**: 2024-02-01\n**관련 ADR**: [ADR-0001](0001-monorepo.md)\n",
		"decisions/0003-sqlite.md": "# ADR-0003: SQLite로 전환\n\n" +
			"**상태**: 수락됨\n**날짜**: 2024-02-01\n**관련 ADR**: ADR-0001, ADR-0002\n" +
			"**대체된 ADR**: [ADR-0002](0002-postgres.md)\n",
		"ideas/README.md":     IndexReadme,
		"ideas/001-search.md": "# IDEA-001: 전문 검색\n\n**상태**: 검토 중\n**제안일**: 2024-02-01\n",
		"ideas/002-graph.md":  "# IDEA-002: 그래프 뷰\n\n**상태**: 제안됨\n",
		"ideas/scratch.md":    "메모\n",
	}
}
