package index

import (
	"fmt"
	"log/slog"

	"github.com/halloran/medkit/internal/models"
	"github.com/halloran/medkit/internal/store"
)

// Sync rebuilds the index from the content store when the store file has
// changed since the last sync. The checksum short-circuit makes repeated
// syncs against an unchanged file cheap.
func Sync(db *DB, st store.Store, logger *slog.Logger) error {
	doc, cs, err := st.Load()
	if err != nil {
		return err
	}

	current, err := db.StoreChecksum()
	if err != nil {
		return err
	}
	if current == cs {
		logger.Debug("sync: store unchanged", slog.String("checksum", cs))
		return nil
	}

	rows := Rows(doc)
	if err := db.ReplaceAll(rows, cs); err != nil {
		return err
	}
	logger.Info("sync: index rebuilt",
		slog.Int("cards", len(rows)),
		slog.String("checksum", cs))
	return nil
}

// Rows flattens a document into index rows, recording each card's group and
// position so listings can mirror store ordering.
func Rows(doc *models.Document) []CardRow {
	out := make([]CardRow, 0, doc.Data.CardCount())
	for i := range doc.Data.MainFlashcards {
		out = append(out, toRow(&doc.Data.MainFlashcards[i], GroupMain, i))
	}
	for c := range doc.Data.ChapterCollections {
		grp := fmt.Sprintf("collection-%d", c)
		cards := doc.Data.ChapterCollections[c].Flashcards
		for i := range cards {
			out = append(out, toRow(&cards[i], grp, i))
		}
	}
	return out
}

func toRow(c *models.Card, grp string, pos int) CardRow {
	return CardRow{
		ID:            c.ID,
		Question:      c.Question,
		Answer:        c.Answer,
		Difficulty:    c.Difficulty,
		Type:          c.Type,
		Tags:          c.Tags,
		ChapterNumber: c.ChapterNumber,
		ChapterTitle:  c.ChapterTitle,
		Group:         grp,
		Pos:           pos,
	}
}
