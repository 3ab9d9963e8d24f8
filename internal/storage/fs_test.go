package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func TestWriteAndRead(t *testing.T) {
	s := tempWorkspace(t)
	content := []byte("# ADR-1: Hello\n")
	if err := s.Write("decisions/0001-hello.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("decisions/0001-hello.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestList_TopLevelMarkdownOnly(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("decisions/0001-a.md", []byte("a"))
	_ = s.Write("decisions/0002-b.md", []byte("b"))
	_ = s.Write("decisions/notes.txt", []byte("not md"))
	_ = s.Write("decisions/archive/0000-old.md", []byte("nested"))

	items, err := s.List("decisions")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(items), items)
	}
	if items[0].Name != "0001-a.md" || items[1].Name != "0002-b.md" {
		t.Errorf("names = %q, %q", items[0].Name, items[1].Name)
	}
}

func TestList_DoesNotReadFiles(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("decisions/0001-a.md", []byte("a"))
	if err := os.Symlink(filepath.Join(s.Root(), "gone.md"), filepath.Join(s.Root(), "decisions", "0002-moved.md")); err != nil {
		t.Skipf("symlink: %v", err)
	}

	items, err := s.List("decisions")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(items), items)
	}
	if _, err := s.Read("decisions/0002-moved.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read dangling = %v, want fs.ErrNotExist", err)
	}
}

func TestList_MissingDir(t *testing.T) {
	s := tempWorkspace(t)
	if _, err := s.List("ideas"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("List missing dir = %v, want fs.ErrNotExist", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("CHANGELOG.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("CHANGELOG.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("CHANGELOG.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".decisionlog-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "decisionlog-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
