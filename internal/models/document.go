package models

import (
	"encoding/json"
	"fmt"
)

// Document is the top-level persisted shape of the content store:
//
//	{ "data": { "mainFlashcards": [...], "chapterCollections": [...] } }
//
// Unknown sibling fields at every level are carried through unchanged so that
// tooling which only understands part of the schema still round-trips the
// whole file.
type Document struct {
	Data Data

	extra map[string]json.RawMessage
}

// Data holds the primary card list and the named chapter sub-collections.
type Data struct {
	MainFlashcards     []Card
	ChapterCollections []Collection

	// HasMain / HasCollections record whether the keys were present in the
	// source document. A missing section is treated as empty, but callers
	// should log the substitution rather than hide it.
	HasMain        bool
	HasCollections bool

	extra map[string]json.RawMessage
}

// Collection is one ordered chapter sub-collection of cards.
type Collection struct {
	Flashcards []Card

	extra map[string]json.RawMessage
}

// CardCount returns the total number of cards across all groups.
func (d *Data) CardCount() int {
	n := len(d.MainFlashcards)
	for i := range d.ChapterCollections {
		n += len(d.ChapterCollections[i].Flashcards)
	}
	return n
}

// UnmarshalJSON decodes the document, keeping unknown top-level fields.
func (doc *Document) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("models: document: %w", err)
	}
	if v, ok := raw["data"]; ok {
		if err := json.Unmarshal(v, &doc.Data); err != nil {
			return err
		}
		delete(raw, "data")
	}
	if len(raw) > 0 {
		doc.extra = raw
	}
	return nil
}

// MarshalJSON re-emits the document with preserved fields.
func (doc Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(doc.extra)+1)
	for k, v := range doc.extra {
		out[k] = v
	}
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return nil, err
	}
	out["data"] = data
	return json.Marshal(out)
}

// UnmarshalJSON decodes the data container, recording which sections were
// actually present.
func (d *Data) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("models: data: %w", err)
	}
	if v, ok := raw["mainFlashcards"]; ok {
		d.HasMain = true
		if err := json.Unmarshal(v, &d.MainFlashcards); err != nil {
			return fmt.Errorf("models: mainFlashcards: %w", err)
		}
		delete(raw, "mainFlashcards")
	}
	if v, ok := raw["chapterCollections"]; ok {
		d.HasCollections = true
		if err := json.Unmarshal(v, &d.ChapterCollections); err != nil {
			return fmt.Errorf("models: chapterCollections: %w", err)
		}
		delete(raw, "chapterCollections")
	}
	if len(raw) > 0 {
		d.extra = raw
	}
	return nil
}

// MarshalJSON re-emits the data container. Sections absent from the source
// document stay absent unless cards were added to them.
func (d Data) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+2)
	for k, v := range d.extra {
		out[k] = v
	}
	if d.HasMain || len(d.MainFlashcards) > 0 {
		cards := d.MainFlashcards
		if cards == nil {
			cards = []Card{}
		}
		b, err := json.Marshal(cards)
		if err != nil {
			return nil, err
		}
		out["mainFlashcards"] = b
	}
	if d.HasCollections || len(d.ChapterCollections) > 0 {
		cols := d.ChapterCollections
		if cols == nil {
			cols = []Collection{}
		}
		b, err := json.Marshal(cols)
		if err != nil {
			return nil, err
		}
		out["chapterCollections"] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a chapter collection, keeping its sibling fields
// (chapter metadata and anything else) intact.
func (c *Collection) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("models: collection: %w", err)
	}
	if v, ok := raw["flashcards"]; ok {
		if err := json.Unmarshal(v, &c.Flashcards); err != nil {
			return fmt.Errorf("models: flashcards: %w", err)
		}
		delete(raw, "flashcards")
	}
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

// MarshalJSON re-emits the collection with preserved fields.
func (c Collection) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+1)
	for k, v := range c.extra {
		out[k] = v
	}
	cards := c.Flashcards
	if cards == nil {
		cards = []Card{}
	}
	b, err := json.Marshal(cards)
	if err != nil {
		return nil, err
	}
	out["flashcards"] = b
	return json.Marshal(out)
}
