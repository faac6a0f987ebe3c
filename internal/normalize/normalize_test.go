package normalize

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/halloran/medkit/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testDoc(main []models.Card, collections ...[]models.Card) *models.Document {
	doc := &models.Document{}
	doc.Data.MainFlashcards = main
	doc.Data.HasMain = true
	doc.Data.HasCollections = true
	for _, cards := range collections {
		doc.Data.ChapterCollections = append(doc.Data.ChapterCollections,
			models.Collection{Flashcards: cards})
	}
	return doc
}

func TestRun_BackfillsEmptyTags(t *testing.T) {
	doc := testDoc([]models.Card{{
		ID:            "c1",
		Question:      "What is the first step of patient assessment?",
		Answer:        "Scene size-up.",
		Difficulty:    "Basic",
		Type:          "Definition",
		ChapterNumber: 10,
	}})

	report, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TagsAdded != 1 {
		t.Errorf("TagsAdded = %d, want 1", report.TagsAdded)
	}

	got := doc.Data.MainFlashcards[0].Tags
	want := []string{"chapter-10", "definition", "basic", "assessment", "scene-safety"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestRun_PreservesExistingTags(t *testing.T) {
	doc := testDoc([]models.Card{{
		ID:         "c1",
		Question:   "What is cardiac arrest?",
		Answer:     "The heart stops pumping.",
		Difficulty: "Basic",
		Tags:       []string{"curated"},
	}})

	report, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TagsAdded != 0 {
		t.Errorf("TagsAdded = %d, want 0", report.TagsAdded)
	}
	if got := doc.Data.MainFlashcards[0].Tags; !reflect.DeepEqual(got, []string{"curated"}) {
		t.Errorf("tags = %v, want [curated]", got)
	}
}

func TestRun_StripsMarkup(t *testing.T) {
	doc := testDoc([]models.Card{{
		ID:       "c1",
		Question: "What is <b>shock</b>?",
		Answer:   "<p>Inadequate tissue perfusion.</p>",
		Tags:     []string{"trauma"},
	}})

	report, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.MarkupStripped != 1 {
		t.Errorf("MarkupStripped = %d, want 1", report.MarkupStripped)
	}
	card := doc.Data.MainFlashcards[0]
	if card.Question != "What is shock?" {
		t.Errorf("question = %q", card.Question)
	}
	if card.Answer != "Inadequate tissue perfusion." {
		t.Errorf("answer = %q", card.Answer)
	}
}

func TestRun_Idempotent(t *testing.T) {
	doc := testDoc([]models.Card{
		{ID: "c1", Question: "What is <i>triage</i>?", Answer: "Sorting patients.", Difficulty: "Basic", ChapterNumber: 3},
		{ID: "c2", Question: "Define airway patency.", Answer: "An open airway.", Tags: []string{"airway"}},
	})

	if _, err := Run(doc, quietLogger()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Modified != 0 {
		t.Errorf("second run Modified = %d, want 0", second.Modified)
	}
}

func TestRun_PreservesGroupsAndOrder(t *testing.T) {
	doc := testDoc(
		[]models.Card{{ID: "m1"}, {ID: "m2"}},
		[]models.Card{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		[]models.Card{{ID: "b1"}},
	)

	report, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 6 {
		t.Errorf("Total = %d, want 6", report.Total)
	}

	ids := func(cards []models.Card) []string {
		out := make([]string, len(cards))
		for i, c := range cards {
			out[i] = c.ID
		}
		return out
	}
	if got := ids(doc.Data.MainFlashcards); !reflect.DeepEqual(got, []string{"m1", "m2"}) {
		t.Errorf("main = %v", got)
	}
	if got := ids(doc.Data.ChapterCollections[0].Flashcards); !reflect.DeepEqual(got, []string{"a1", "a2", "a3"}) {
		t.Errorf("collection 0 = %v", got)
	}
	if got := ids(doc.Data.ChapterCollections[1].Flashcards); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Errorf("collection 1 = %v", got)
	}
}

func TestRun_MissingSections(t *testing.T) {
	doc := &models.Document{}

	report, err := Run(doc, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 0 || report.Modified != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
}

func TestRepartition_SizeMismatch(t *testing.T) {
	var d models.Data
	d.MainFlashcards = []models.Card{{ID: "m1"}}

	err := repartition(&d, []models.Card{{ID: "m1"}, {ID: "x"}}, []int{1})
	if err == nil {
		t.Fatal("expected partition mismatch error")
	}
}

func TestDeriveTags_Fallback(t *testing.T) {
	got := deriveTags(0, "Application", "Advanced", "Which option is correct?", "Option B.")
	want := []string{"application", "advanced", "emt-basic", "core-knowledge"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestDeriveTags_MultipleTopics(t *testing.T) {
	got := deriveTags(7, "", "", "When does bleeding require a splint?", "After the fracture is immobilized.")
	want := []string{"chapter-7", "trauma", "immobilization"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestDeriveTags_WholeWordsOnly(t *testing.T) {
	// "oxygenation" must not match the "oxygen" keyword.
	got := deriveTags(0, "", "", "Discuss tissue oxygenation.", "")
	want := []string{"emt-basic", "core-knowledge"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestDeriveTags_Dedupe(t *testing.T) {
	// Type "trauma" and topic "trauma" collapse into one tag.
	got := deriveTags(0, "Trauma", "Basic", "How is a trauma patient packaged?", "")
	want := []string{"trauma", "basic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text stays", "plain text stays"},
		{"<b>bold</b>", "bold"},
		{"a <br/> b", "a  b"},
		{"<div class='x'>nested <span>tags</span></div>", "nested tags"},
		{"unclosed < stays", "unclosed < stays"},
	}
	for _, c := range cases {
		if got := StripMarkup(c.in); got != c.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", c.in, got, c.want)
		}
		// A second pass never changes the result.
		if got := StripMarkup(StripMarkup(c.in)); got != c.want {
			t.Errorf("StripMarkup not idempotent for %q", c.in)
		}
	}
}
