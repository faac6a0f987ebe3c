// Package models defines the domain types for the flashcard content store.
package models

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Difficulty levels. The store uses title-case values.
const (
	DifficultyBasic        = "Basic"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Card is one question/answer content unit with metadata.
//
// Group membership (main list vs a chapter collection) is not a field on the
// card; it is the card's position in the Document.
type Card struct {
	ID            string
	Question      string
	Answer        string
	Difficulty    string
	Type          string
	Tags          []string
	ChapterNumber int
	ChapterTitle  string

	// extra holds sibling JSON fields this code does not model, preserved
	// verbatim across read/write.
	extra map[string]json.RawMessage
}

// Validate checks the fields a well-formed card must carry.
func (c *Card) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Question, validation.Required),
		validation.Field(&c.Answer, validation.Required),
		validation.Field(&c.Difficulty, validation.Required,
			validation.In(DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced)),
		validation.Field(&c.ChapterNumber, validation.Min(0)),
	)
}

// UnmarshalJSON decodes the known card fields and stashes everything else.
func (c *Card) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("models: card: %w", err)
	}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("models: card field %q: %w", key, err)
		}
		delete(raw, key)
		return nil
	}
	for key, dst := range map[string]any{
		"id":            &c.ID,
		"question":      &c.Question,
		"answer":        &c.Answer,
		"difficulty":    &c.Difficulty,
		"type":          &c.Type,
		"tags":          &c.Tags,
		"chapterNumber": &c.ChapterNumber,
		"chapterTitle":  &c.ChapterTitle,
	} {
		if err := take(key, dst); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

// MarshalJSON re-emits the card with its preserved unknown fields.
func (c Card) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+8)
	for k, v := range c.extra {
		out[k] = v
	}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("models: card field %q: %w", key, err)
		}
		out[key] = b
		return nil
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	if err := put("id", c.ID); err != nil {
		return nil, err
	}
	if err := put("question", c.Question); err != nil {
		return nil, err
	}
	if err := put("answer", c.Answer); err != nil {
		return nil, err
	}
	if err := put("difficulty", c.Difficulty); err != nil {
		return nil, err
	}
	if err := put("type", c.Type); err != nil {
		return nil, err
	}
	if err := put("tags", tags); err != nil {
		return nil, err
	}
	if c.ChapterNumber > 0 {
		if err := put("chapterNumber", c.ChapterNumber); err != nil {
			return nil, err
		}
	}
	if c.ChapterTitle != "" {
		if err := put("chapterTitle", c.ChapterTitle); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}
