// Package store defines file-backed access to the flashcard content store.
package store

import "github.com/halloran/medkit/internal/models"

// Store is the interface for content store access.
type Store interface {
	// Load parses the content store file. It returns the parsed document and
	// the checksum of the raw bytes it was parsed from.
	Load() (*models.Document, string, error)
	// Save atomically replaces the content store file as a whole and returns
	// the checksum of the written bytes.
	Save(doc *models.Document) (string, error)
	// Path returns the absolute path of the backing file.
	Path() string
}
