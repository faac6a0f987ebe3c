package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/halloran/medkit/internal/checksum"
	"github.com/halloran/medkit/internal/models"
)

// File implements Store backed by a single JSON file on the local file system.
type File struct {
	path string // absolute path to the content store file
}

// NewFile creates a File store for the given path. The file does not have to
// exist yet; Load reports a read error when it is missing.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("store: resolve path: %w", err)
	}
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("store: path is a directory: %s", abs)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string { return f.path }

// Load reads and parses the content store file.
func (f *File) Load() (*models.Document, string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, "", fmt.Errorf("store: read %s: %w", f.path, err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("store: parse %s: %w", f.path, err)
	}
	return &doc, checksum.Sum(data), nil
}

// Save atomically writes the document: tmp file → fsync → rename. The source
// file is never touched until the replacement is fully on disk.
func (f *File) Save(doc *models.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".medkit-tmp-*")
	if err != nil {
		return "", fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return "", fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return checksum.Sum(data), nil
}
