// Package testutil provides shared test helpers for setting up content stores
// and index databases.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/halloran/medkit/internal/index"
	"github.com/halloran/medkit/internal/models"
	"github.com/halloran/medkit/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "medkit-test-*.db")
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

// TestStore creates a content store file in a temp directory. When doc is
// non-nil it is written as the initial store content; otherwise the file does
// not exist yet.
func TestStore(t *testing.T, doc *models.Document) *store.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flashcards.json")
	if doc != nil {
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	st, err := store.NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return st
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
