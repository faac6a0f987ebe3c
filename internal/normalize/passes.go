package normalize

import (
	"regexp"

	"github.com/halloran/medkit/internal/models"
)

var markupRe = regexp.MustCompile(`<[^>]*>`)

// backfillTags fills an empty tag set from the card's own fields. Cards that
// already carry tags are left strictly untouched: curated tag sets are never
// appended to, even when they look incomplete.
func backfillTags(c *models.Card) bool {
	if len(c.Tags) > 0 {
		return false
	}
	c.Tags = deriveTags(c.ChapterNumber, c.Type, c.Difficulty, c.Question, c.Answer)
	return true
}

// stripMarkup removes every <...> tag sequence from the card's question and
// answer. A second pass over already-clean text is a no-op.
func stripMarkup(c *models.Card) bool {
	q := StripMarkup(c.Question)
	a := StripMarkup(c.Answer)
	changed := q != c.Question || a != c.Answer
	c.Question = q
	c.Answer = a
	return changed
}

// StripMarkup removes markup tag sequences from s, leaving surrounding text
// and whitespace untouched.
func StripMarkup(s string) string {
	if !markupRe.MatchString(s) {
		return s
	}
	return markupRe.ReplaceAllString(s, "")
}
