// Package normalize implements the corrective batch transform that brings
// every card in the content store into a consistent, tag-complete,
// markup-free state.
//
// The transform is a pure in-memory pass: flatten the nested store into one
// ordered sequence, fix each card independently, then re-partition the
// sequence back into the original groups by size. It is idempotent and safe
// to re-run.
package normalize

import (
	"fmt"
	"log/slog"

	"github.com/halloran/medkit/internal/models"
)

// Report counts what a normalization run changed.
type Report struct {
	Total          int `json:"total"`
	TagsAdded      int `json:"tags_added"`
	MarkupStripped int `json:"markup_stripped"`
	Modified       int `json:"modified"`
}

// Run normalizes every card in doc in place and reports the changes.
// The document's structure and cardinality are never altered, only card
// field contents.
func Run(doc *models.Document, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logMissingSections(&doc.Data, logger)

	flat, sizes := flatten(&doc.Data)

	report := &Report{Total: len(flat)}
	for i := range flat {
		card := &flat[i]
		changed := false

		if backfillTags(card) {
			report.TagsAdded++
			changed = true
		}
		if stripMarkup(card) {
			report.MarkupStripped++
			changed = true
			logger.Info("removed markup from card",
				slog.String("id", card.ID),
				slog.String("question", card.Question))
		}
		if changed {
			report.Modified++
		}
	}

	if err := repartition(&doc.Data, flat, sizes); err != nil {
		return nil, err
	}
	return report, nil
}

// flatten copies all cards into a single sequence: the main list first, then
// each chapter collection in order. The returned sizes describe the exact
// partition so repartition can restore original placement.
func flatten(d *models.Data) ([]models.Card, []int) {
	sizes := make([]int, 0, len(d.ChapterCollections)+1)
	flat := make([]models.Card, 0, d.CardCount())

	flat = append(flat, d.MainFlashcards...)
	sizes = append(sizes, len(d.MainFlashcards))

	for i := range d.ChapterCollections {
		cards := d.ChapterCollections[i].Flashcards
		flat = append(flat, cards...)
		sizes = append(sizes, len(cards))
	}
	return flat, sizes
}

// repartition slices flat back into the groups described by sizes and writes
// each slice over the corresponding group. A size-sum mismatch violates the
// flatten contract and aborts the run.
func repartition(d *models.Data, flat []models.Card, sizes []int) error {
	total := 0
	for _, n := range sizes {
		total += n
	}
	if total != len(flat) {
		return fmt.Errorf("normalize: partition mismatch: %d cards for %d slots", len(flat), total)
	}
	if len(sizes) != len(d.ChapterCollections)+1 {
		return fmt.Errorf("normalize: partition mismatch: %d groups for %d collections",
			len(sizes), len(d.ChapterCollections))
	}

	offset := sizes[0]
	d.MainFlashcards = append(d.MainFlashcards[:0], flat[:offset]...)
	for i := range d.ChapterCollections {
		n := sizes[i+1]
		col := &d.ChapterCollections[i]
		col.Flashcards = append(col.Flashcards[:0], flat[offset:offset+n]...)
		offset += n
	}
	return nil
}

// logMissingSections makes the empty-list substitution for absent store
// sections visible instead of silent; a missing section can also mean
// corruption upstream.
func logMissingSections(d *models.Data, logger *slog.Logger) {
	if !d.HasMain {
		logger.Warn("mainFlashcards section missing, treating as empty")
	}
	if !d.HasCollections {
		logger.Warn("chapterCollections section missing, treating as empty")
	}
}
