package index

import "github.com/starford/decisionlog/internal/models"

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(doc models.Document) error
	DeleteDocument(kind models.Kind, filename string) error
	AllChecksums(kind models.Kind) (map[string]string, error)
	ListDocuments(kind models.Kind) ([]DocumentRow, error)
	GetDocument(kind models.Kind, number string) (*DocumentRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(kind models.Kind, number string) ([]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
