// Package loader collects the documents of one category from a directory.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/starford/decisionlog/internal/checksum"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/parser"
	"github.com/starford/decisionlog/internal/storage"
)

// IndexName is the per-category index document that holds the generated table.
const IndexName = "README.md"

// IsCandidate reports whether a file name may hold a document. Index files
// and names starting with "_" (templates) are infrastructure, not content.
func IsCandidate(name string) bool {
	return strings.HasSuffix(name, ".md") && !strings.HasPrefix(name, "_") && name != IndexName
}

// Load reads every candidate file directly inside dir and returns the
// documents of the given kind in listing order. Files without a recognised
// heading are dropped without notice. A missing directory is an empty
// collection, but a listed file that cannot be read fails the whole load.
func Load(store storage.Provider, kind models.Kind, dir string) ([]models.Document, error) {
	metas, err := store.List(dir)
	if err != nil {
		// List never reads file bodies, so ErrNotExist here is the directory.
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Document{}, nil
		}
		return nil, fmt.Errorf("loader: %s: %w", kind, err)
	}

	out := make([]models.Document, 0, len(metas))
	for _, m := range metas {
		if !IsCandidate(m.Name) {
			continue
		}
		data, err := store.Read(path.Join(dir, m.Name))
		if err != nil {
			return nil, fmt.Errorf("loader: %s: read %s: %w", kind, m.Name, err)
		}
		doc, ok := parser.Extract(kind, data)
		if !ok {
			continue
		}
		out = append(out, withFile(doc, m.Name, checksum.Sum(data)))
	}
	return out, nil
}

func withFile(doc models.Document, name, sum string) models.Document {
	switch d := doc.(type) {
	case *models.ADR:
		d.Filename, d.Checksum = name, sum
	case *models.Idea:
		d.Filename, d.Checksum = name, sum
	}
	return doc
}

// ADRs narrows a collection to its ADR members, preserving order.
func ADRs(docs []models.Document) []*models.ADR {
	out := make([]*models.ADR, 0, len(docs))
	for _, d := range docs {
		if a, ok := d.(*models.ADR); ok {
			out = append(out, a)
		}
	}
	return out
}
