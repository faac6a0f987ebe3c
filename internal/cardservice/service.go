// Package cardservice coordinates content store and index operations for the
// card domain: CRUD, search, study sessions, and review progress.
package cardservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/halloran/medkit/internal/apperr"
	"github.com/halloran/medkit/internal/index"
	"github.com/halloran/medkit/internal/models"
	"github.com/halloran/medkit/internal/store"
)

// CardDetail is the full representation of a card.
type CardDetail struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	Difficulty    string   `json:"difficulty"`
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	ChapterNumber int      `json:"chapterNumber,omitempty"`
	ChapterTitle  string   `json:"chapterTitle,omitempty"`
	Group         string   `json:"group"`
}

// CardInput carries the editable fields for create and update operations.
type CardInput struct {
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	Difficulty    string   `json:"difficulty"`
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	ChapterNumber int      `json:"chapterNumber"`
	ChapterTitle  string   `json:"chapterTitle"`
}

// Validate checks the input fields.
func (in *CardInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Question, validation.Required),
		validation.Field(&in.Answer, validation.Required),
		validation.Field(&in.Difficulty, validation.Required,
			validation.In(models.DifficultyBasic, models.DifficultyIntermediate, models.DifficultyAdvanced)),
		validation.Field(&in.ChapterNumber, validation.Min(0)),
	)
}

// Service coordinates store and index operations.
type Service struct {
	store  store.Store
	db     *index.DB
	policy *bluemonday.Policy
}

// NewService creates a new card service. Question and answer text written
// through the service is stripped to plain text before it reaches the store.
func NewService(st store.Store, db *index.DB) *Service {
	return &Service{
		store:  st,
		db:     db,
		policy: bluemonday.StrictPolicy(),
	}
}

// GetCard returns a card by id.
func (s *Service) GetCard(_ context.Context, id string) (*CardDetail, error) {
	row, err := s.db.GetCard(id)
	if err != nil {
		return nil, err
	}
	return detailFromRow(row), nil
}

// ListCards returns cards matching the filter, in store order.
func (s *Service) ListCards(_ context.Context, f index.Filter, limit, offset int) ([]CardDetail, int, error) {
	rows, total, err := s.db.ListCards(f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]CardDetail, len(rows))
	for i := range rows {
		items[i] = *detailFromRow(&rows[i])
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Chapters delegates to the index.
func (s *Service) Chapters(_ context.Context) ([]index.ChapterInfo, error) {
	return s.db.Chapters()
}

// CreateCard appends a new card to the main list and indexes it. The card id
// is generated here and never changes afterwards.
func (s *Service) CreateCard(_ context.Context, in CardInput) (*CardDetail, error) {
	s.sanitizeInput(&in)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	doc, _, err := s.store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc = &models.Document{}
		} else {
			return nil, err
		}
	}

	card := models.Card{
		ID:            uuid.NewString(),
		Question:      in.Question,
		Answer:        in.Answer,
		Difficulty:    in.Difficulty,
		Type:          in.Type,
		Tags:          in.Tags,
		ChapterNumber: in.ChapterNumber,
		ChapterTitle:  in.ChapterTitle,
	}
	doc.Data.MainFlashcards = append(doc.Data.MainFlashcards, card)
	doc.Data.HasMain = true

	if _, err := s.store.Save(doc); err != nil {
		return nil, err
	}

	row := index.CardRow{
		ID:            card.ID,
		Question:      card.Question,
		Answer:        card.Answer,
		Difficulty:    card.Difficulty,
		Type:          card.Type,
		Tags:          card.Tags,
		ChapterNumber: card.ChapterNumber,
		ChapterTitle:  card.ChapterTitle,
		Group:         index.GroupMain,
		Pos:           len(doc.Data.MainFlashcards) - 1,
	}
	if err := s.db.UpsertCard(row); err != nil {
		return nil, err
	}
	return detailFromRow(&row), nil
}

// UpdateCard overwrites a card's editable fields wherever the card lives in
// the store. ifMatch, when non-empty, must equal the current store checksum
// (optimistic concurrency against a concurrent whole-file rewrite).
func (s *Service) UpdateCard(_ context.Context, id string, in CardInput, ifMatch string) (*CardDetail, error) {
	s.sanitizeInput(&in)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	doc, cs, err := s.store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != cs {
		return nil, apperr.ErrConflict
	}

	card, grp, pos := locateCard(doc, id)
	if card == nil {
		return nil, apperr.ErrNotFound
	}
	card.Question = in.Question
	card.Answer = in.Answer
	card.Difficulty = in.Difficulty
	card.Type = in.Type
	card.Tags = in.Tags
	card.ChapterNumber = in.ChapterNumber
	card.ChapterTitle = in.ChapterTitle

	if _, err := s.store.Save(doc); err != nil {
		return nil, err
	}

	row := index.CardRow{
		ID:            card.ID,
		Question:      card.Question,
		Answer:        card.Answer,
		Difficulty:    card.Difficulty,
		Type:          card.Type,
		Tags:          card.Tags,
		ChapterNumber: card.ChapterNumber,
		ChapterTitle:  card.ChapterTitle,
		Group:         grp,
		Pos:           pos,
	}
	if err := s.db.UpsertCard(row); err != nil {
		return nil, err
	}
	return detailFromRow(&row), nil
}

// DeleteCard removes a card from the store and the index. Positions of the
// cards behind it shift, so the index is rebuilt from the saved document.
func (s *Service) DeleteCard(_ context.Context, id string) error {
	doc, _, err := s.store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if !removeCard(doc, id) {
		return apperr.ErrNotFound
	}
	cs, err := s.store.Save(doc)
	if err != nil {
		return err
	}
	if err := s.db.ReplaceAll(index.Rows(doc), cs); err != nil {
		return err
	}
	// ReplaceAll rebuilt the cards table without the deleted card; only its
	// progress row is left behind.
	return s.db.DeleteProgress(id)
}

// sanitizeInput strips any HTML from the free-text fields before they are
// validated or persisted.
func (s *Service) sanitizeInput(in *CardInput) {
	in.Question = strings.TrimSpace(s.policy.Sanitize(in.Question))
	in.Answer = strings.TrimSpace(s.policy.Sanitize(in.Answer))
	in.Type = strings.TrimSpace(in.Type)
	in.ChapterTitle = strings.TrimSpace(in.ChapterTitle)
}

func detailFromRow(r *index.CardRow) *CardDetail {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &CardDetail{
		ID:            r.ID,
		Question:      r.Question,
		Answer:        r.Answer,
		Difficulty:    r.Difficulty,
		Type:          r.Type,
		Tags:          tags,
		ChapterNumber: r.ChapterNumber,
		ChapterTitle:  r.ChapterTitle,
		Group:         r.Group,
	}
}

// locateCard finds a card by id anywhere in the document and returns a
// pointer into the document plus the card's group and position.
func locateCard(doc *models.Document, id string) (*models.Card, string, int) {
	for i := range doc.Data.MainFlashcards {
		if doc.Data.MainFlashcards[i].ID == id {
			return &doc.Data.MainFlashcards[i], index.GroupMain, i
		}
	}
	for c := range doc.Data.ChapterCollections {
		cards := doc.Data.ChapterCollections[c].Flashcards
		for i := range cards {
			if cards[i].ID == id {
				return &cards[i], fmt.Sprintf("collection-%d", c), i
			}
		}
	}
	return nil, "", 0
}

// removeCard deletes a card by id from whichever group holds it, preserving
// the order of the remaining cards.
func removeCard(doc *models.Document, id string) bool {
	for i := range doc.Data.MainFlashcards {
		if doc.Data.MainFlashcards[i].ID == id {
			doc.Data.MainFlashcards = append(doc.Data.MainFlashcards[:i], doc.Data.MainFlashcards[i+1:]...)
			return true
		}
	}
	for c := range doc.Data.ChapterCollections {
		cards := doc.Data.ChapterCollections[c].Flashcards
		for i := range cards {
			if cards[i].ID == id {
				doc.Data.ChapterCollections[c].Flashcards = append(cards[:i], cards[i+1:]...)
				return true
			}
		}
	}
	return false
}
