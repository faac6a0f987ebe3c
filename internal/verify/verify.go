// Package verify implements the read-only content health report: chapter
// completeness, chapter title consistency, and card-level validation.
// It reports findings; it never mutates the store.
package verify

import (
	"fmt"
	"strings"

	"github.com/halloran/medkit/internal/index"
	"github.com/halloran/medkit/internal/normalize"
)

// Finding kinds.
const (
	KindTitleConflict = "title-conflict"
	KindChapterGap    = "chapter-gap"
	KindInvalidCard   = "invalid-card"
	KindUntaggedCard  = "untagged-card"
	KindMarkup        = "markup"
)

// Finding is one defect discovered in the indexed content.
type Finding struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Report summarises a verification run.
type Report struct {
	Cards    int       `json:"cards"`
	Chapters int       `json:"chapters"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether the run found nothing wrong.
func (r *Report) Clean() bool { return len(r.Findings) == 0 }

// Run inspects the card index and returns a report of content defects.
func Run(db *index.DB) (*Report, error) {
	report := &Report{}

	chapters, err := db.Chapters()
	if err != nil {
		return nil, err
	}
	report.Chapters = len(chapters)

	for _, ch := range chapters {
		if len(ch.Titles) > 1 {
			report.Findings = append(report.Findings, Finding{
				Kind: KindTitleConflict,
				Detail: fmt.Sprintf("chapter %d has %d titles: %s",
					ch.Number, len(ch.Titles), strings.Join(ch.Titles, "; ")),
			})
		}
	}

	// Gaps in chapter numbering between the lowest and highest chapter seen.
	if len(chapters) > 1 {
		seen := make(map[int]struct{}, len(chapters))
		for _, ch := range chapters {
			seen[ch.Number] = struct{}{}
		}
		for n := chapters[0].Number; n < chapters[len(chapters)-1].Number; n++ {
			if _, ok := seen[n]; !ok {
				report.Findings = append(report.Findings, Finding{
					Kind:   KindChapterGap,
					Detail: fmt.Sprintf("no cards for chapter %d", n),
				})
			}
		}
	}

	rows, total, err := db.ListCards(index.Filter{}, 1<<30, 0)
	if err != nil {
		return nil, err
	}
	report.Cards = total

	for i := range rows {
		r := &rows[i]
		if r.Question == "" || r.Answer == "" {
			report.Findings = append(report.Findings, Finding{
				Kind:   KindInvalidCard,
				Detail: fmt.Sprintf("card %s has empty question or answer", r.ID),
			})
		}
		if len(r.Tags) == 0 {
			report.Findings = append(report.Findings, Finding{
				Kind:   KindUntaggedCard,
				Detail: fmt.Sprintf("card %s has no tags", r.ID),
			})
		}
		if normalize.StripMarkup(r.Question) != r.Question || normalize.StripMarkup(r.Answer) != r.Answer {
			report.Findings = append(report.Findings, Finding{
				Kind:   KindMarkup,
				Detail: fmt.Sprintf("card %s contains markup", r.ID),
			})
		}
	}

	return report, nil
}
