package cardservice

import (
	"context"
	"fmt"
	"time"

	"github.com/halloran/medkit/internal/apperr"
)

// Review grades, from a failed recall to an effortless one.
const (
	GradeAgain = 1
	GradeHard  = 2
	GradeGood  = 3
	GradeEasy  = 4
)

// ReviewResult reports the card's progress after a graded review.
type ReviewResult struct {
	CardID  string `json:"card_id"`
	Status  int    `json:"status"`
	Due     int64  `json:"due"`
	Reviews int    `json:"reviews"`
	Lapses  int    `json:"lapses"`
}

// DueCard pairs a due progress row with its card.
type DueCard struct {
	Card   CardDetail `json:"card"`
	Status int        `json:"status"`
	Due    int64      `json:"due"`
}

// RecordReview applies a graded review to a card's progress and returns the
// updated state.
func (s *Service) RecordReview(_ context.Context, cardID string, grade int) (*ReviewResult, error) {
	if grade < GradeAgain || grade > GradeEasy {
		return nil, fmt.Errorf("%w: grade must be 1-4, got %d", apperr.ErrInvalid, grade)
	}
	if _, err := s.db.GetCard(cardID); err != nil {
		return nil, err
	}

	p, err := s.db.GetProgress(cardID)
	if err != nil {
		return nil, err
	}

	next, interval := nextReview(p.Status, grade)
	if p.Status >= 4 && next < 4 {
		p.Lapses++
	}
	p.Status = next
	p.Due = time.Now().Unix() + interval
	p.Reviews++

	if err := s.db.PutProgress(*p); err != nil {
		return nil, err
	}
	return &ReviewResult{
		CardID:  p.CardID,
		Status:  p.Status,
		Due:     p.Due,
		Reviews: p.Reviews,
		Lapses:  p.Lapses,
	}, nil
}

// DueCards returns cards whose progress marks them due for review, soonest
// first. Progress rows whose card has since been removed from the store are
// skipped.
func (s *Service) DueCards(_ context.Context, limit int) ([]DueCard, error) {
	progress, err := s.db.DueCards(time.Now().Unix(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]DueCard, 0, len(progress))
	for _, p := range progress {
		row, err := s.db.GetCard(p.CardID)
		if err != nil {
			continue
		}
		out = append(out, DueCard{
			Card:   *detailFromRow(row),
			Status: p.Status,
			Due:    p.Due,
		})
	}
	return out, nil
}

// nextReview maps the current status and grade to the next status and the
// interval until the card is due again. Status 0 is new, 1-3 learning,
// 4-6 spaced review.
func nextReview(status, grade int) (int, int64) {
	const (
		minute = int64(60)
		hour   = 60 * minute
		day    = 24 * hour
	)

	switch grade {
	case GradeAgain:
		return 1, 2 * minute

	case GradeHard:
		if status >= 4 {
			return 3, 10 * minute
		}
		if status < 1 {
			return 1, 5 * minute
		}
		return status, 5 * minute

	case GradeGood:
		switch status {
		case 0, 1, 2:
			return status + 1, 10 * minute
		case 3:
			return 4, 20 * hour
		case 4:
			return 5, 2 * day
		case 5:
			return 6, 5 * day
		default:
			return 6, 14 * day
		}

	default: // GradeEasy
		switch {
		case status < 4:
			return 4, 20 * hour
		case status == 4:
			return 5, 3 * day
		case status == 5:
			return 6, 14 * day
		default:
			return 6, 31 * day
		}
	}
}
