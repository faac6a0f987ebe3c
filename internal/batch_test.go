package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/halloran/medkit/internal/models"
)

func batchConfig(t *testing.T, doc *models.Document) *Config {
	t.Helper()
	dir := t.TempDir()

	cfg := NewDefaultConfig()
	cfg.Content.Path = filepath.Join(dir, "flashcards.json")
	cfg.SQLite.Path = filepath.Join(dir, "index.db")

	if doc != nil {
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(cfg.Content.Path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestRunNormalize_RewritesStore(t *testing.T) {
	doc := &models.Document{}
	doc.Data.MainFlashcards = []models.Card{{
		ID:            "c1",
		Question:      "What is <b>shock</b>?",
		Answer:        "Poor perfusion.",
		Difficulty:    "Basic",
		ChapterNumber: 2,
	}}
	doc.Data.HasMain = true
	cfg := batchConfig(t, doc)

	if err := RunNormalize(cfg); err != nil {
		t.Fatalf("RunNormalize: %v", err)
	}

	data, err := os.ReadFile(cfg.Content.Path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "<b>") {
		t.Error("markup survived normalization")
	}
	if !strings.Contains(s, "chapter-2") {
		t.Errorf("backfilled chapter tag missing:\n%s", s)
	}

	// A second run over the normalized file changes nothing.
	before := s
	if err := RunNormalize(cfg); err != nil {
		t.Fatalf("second RunNormalize: %v", err)
	}
	data, _ = os.ReadFile(cfg.Content.Path)
	if string(data) != before {
		t.Error("second run changed an already-normalized store")
	}
}

func TestRunNormalize_MissingStore(t *testing.T) {
	cfg := batchConfig(t, nil)
	if err := RunNormalize(cfg); err == nil {
		t.Error("missing store file should be an error")
	}
}

func TestRunVerify_DirtyContentFails(t *testing.T) {
	doc := &models.Document{}
	doc.Data.MainFlashcards = []models.Card{{
		ID: "c1", Question: "untagged", Answer: "card",
	}}
	doc.Data.HasMain = true
	cfg := batchConfig(t, doc)

	err := RunVerify(cfg)
	if err == nil {
		t.Fatal("verification of untagged content should fail")
	}
	if !strings.Contains(err.Error(), "issue") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunVerify_CleanContentPasses(t *testing.T) {
	doc := &models.Document{}
	doc.Data.MainFlashcards = []models.Card{{
		ID: "c1", Question: "q", Answer: "a", Difficulty: "Basic", Tags: []string{"x"},
	}}
	doc.Data.HasMain = true
	cfg := batchConfig(t, doc)

	if err := RunVerify(cfg); err != nil {
		t.Errorf("RunVerify: %v", err)
	}
}
