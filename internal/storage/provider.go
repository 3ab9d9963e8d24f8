// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/starford/decisionlog/internal/models"

// Provider is the interface for workspace file operations. Paths are
// relative to the workspace root.
type Provider interface {
	// List returns the names of the .md files directly inside dir without
	// reading them.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write replaces the content of the file at path.
	Write(path string, content []byte) error
}
