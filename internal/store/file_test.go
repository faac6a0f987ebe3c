package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halloran/medkit/internal/models"
)

func testFile(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "flashcards.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestNewFile_RejectsDirectory(t *testing.T) {
	if _, err := NewFile(t.TempDir()); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestSaveAndLoad(t *testing.T) {
	f := testFile(t)

	doc := &models.Document{}
	doc.Data.MainFlashcards = []models.Card{
		{ID: "c1", Question: "q", Answer: "a", Difficulty: "Basic", Tags: []string{"trauma"}},
	}
	doc.Data.HasMain = true

	savedCS, err := f.Save(doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if savedCS == "" {
		t.Fatal("empty checksum from Save")
	}

	loaded, loadedCS, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loadedCS != savedCS {
		t.Errorf("checksum mismatch: save %q, load %q", savedCS, loadedCS)
	}
	if len(loaded.Data.MainFlashcards) != 1 || loaded.Data.MainFlashcards[0].ID != "c1" {
		t.Errorf("loaded = %+v", loaded.Data.MainFlashcards)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	f := testFile(t)
	_, _, err := f.Load()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	f := testFile(t)
	if err := os.WriteFile(f.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	f := testFile(t)
	doc := &models.Document{}
	doc.Data.HasMain = true

	if _, err := f.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".medkit-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSave_OverwritesAtomically(t *testing.T) {
	f := testFile(t)

	first := &models.Document{}
	first.Data.MainFlashcards = []models.Card{{ID: "old", Question: "q", Answer: "a"}}
	if _, err := f.Save(first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := &models.Document{}
	second.Data.MainFlashcards = []models.Card{{ID: "new", Question: "q", Answer: "a"}}
	if _, err := f.Save(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, _, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Data.MainFlashcards[0].ID != "new" {
		t.Errorf("id = %q, want new", loaded.Data.MainFlashcards[0].ID)
	}
}

func TestSave_EndsWithNewline(t *testing.T) {
	f := testFile(t)
	if _, err := f.Save(&models.Document{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("saved file should end with a newline")
	}
}
