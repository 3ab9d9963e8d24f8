// Package docservice exposes the knowledge base to the HTTP API and the MCP
// server: document lookups come from the index, content and artifacts from
// the workspace, and regeneration goes through the generator.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/generator"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/loader"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/storage"
)

// Artifact names accepted by Artifact.
const (
	ArtifactChangelog      = "changelog"
	ArtifactRelations      = "relations"
	ArtifactDecisionsIndex = "decisions-index"
	ArtifactIdeasIndex     = "ideas-index"
)

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	index.DocumentRow
	Path      string   `json:"path"`
	Content   string   `json:"content"`
	Backlinks []string `json:"backlinks"`
}

// ArtifactContent is a generated file as currently written to disk.
type ArtifactContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Service coordinates the generator, the index and the workspace.
type Service struct {
	gen   *generator.Generator
	store storage.Provider
	db    index.DocumentIndex

	listeners []func(*generator.Report)
}

// Option configures a Service.
type Option func(*Service)

// OnRegenerate registers fn to be called after every successful Regenerate.
func OnRegenerate(fn func(*generator.Report)) Option {
	return func(s *Service) { s.listeners = append(s.listeners, fn) }
}

// NewService creates a new document service. db must be the index the
// generator keeps in sync.
func NewService(gen *generator.Generator, store storage.Provider, db index.DocumentIndex, opts ...Option) *Service {
	s := &Service{gen: gen, store: store, db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseKind validates a kind given by a client. Matching is case-insensitive
// and accepts the heading prefixes ("ADR", "IDEA") as well.
func ParseKind(s string) (models.Kind, error) {
	k := models.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown kind %q: %w", s, apperr.ErrInvalidInput)
	}
	return k, nil
}

// ListDocuments returns the indexed documents of kind, or of both kinds when
// kind is empty.
func (s *Service) ListDocuments(_ context.Context, kind string) ([]index.DocumentRow, error) {
	kinds := []models.Kind{models.KindADR, models.KindIdea}
	if kind != "" {
		k, err := ParseKind(kind)
		if err != nil {
			return nil, err
		}
		kinds = []models.Kind{k}
	}

	out := []index.DocumentRow{}
	for _, k := range kinds {
		rows, err := s.db.ListDocuments(k)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// GetDocument returns the document of kind with the given number, including
// its raw Markdown and the numbers of documents that reference it.
func (s *Service) GetDocument(_ context.Context, kind, number string) (*DocumentDetail, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(number) == "" {
		return nil, fmt.Errorf("number is required: %w", apperr.ErrInvalidInput)
	}
	row, err := s.db.GetDocument(k, number)
	if err != nil {
		return nil, err
	}

	p := path.Join(s.dir(k), row.Filename)
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	bl, err := s.db.Backlinks(k, row.Number)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		DocumentRow: *row,
		Path:        p,
		Content:     string(data),
		Backlinks:   bl,
	}, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", apperr.ErrInvalidInput)
	}
	return s.db.Search(query, limit)
}

// Artifact reads a generated file by name.
func (s *Service) Artifact(_ context.Context, name string) (*ArtifactContent, error) {
	paths := s.gen.Paths()
	var p string
	switch name {
	case ArtifactChangelog:
		p = paths.Changelog
	case ArtifactRelations:
		p = paths.Relations
	case ArtifactDecisionsIndex:
		p = path.Join(paths.DecisionsDir, loader.IndexName)
	case ArtifactIdeasIndex:
		p = path.Join(paths.IdeasDir, loader.IndexName)
	default:
		return nil, fmt.Errorf("unknown artifact %q: %w", name, apperr.ErrInvalidInput)
	}

	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &ArtifactContent{Name: name, Path: p, Content: string(data)}, nil
}

// Regenerate runs one regeneration pass and notifies listeners.
func (s *Service) Regenerate(ctx context.Context) (*generator.Report, error) {
	report, err := s.gen.Run(ctx)
	if err != nil {
		return nil, err
	}
	for _, fn := range s.listeners {
		fn(report)
	}
	return report, nil
}

func (s *Service) dir(k models.Kind) string {
	if k == models.KindIdea {
		return s.gen.Paths().IdeasDir
	}
	return s.gen.Paths().DecisionsDir
}
