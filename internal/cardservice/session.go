package cardservice

import (
	"context"
	"math/rand"

	"github.com/halloran/medkit/internal/index"
)

// DefaultSessionSize is used when a session request does not set a count.
const DefaultSessionSize = 20

// SessionOptions configures a study session draw.
type SessionOptions struct {
	Count        int      `json:"count"`
	Shuffle      bool     `json:"shuffle"`
	Chapters     []int    `json:"chapters"`
	Difficulties []string `json:"difficulties"`
	Tag          string   `json:"tag"`
}

// BuildSession selects cards for one study session. Chapter and difficulty
// filters accept multiple values; with Shuffle off the draw follows store
// order, which keeps sessions reproducible.
func (s *Service) BuildSession(_ context.Context, opts SessionOptions) ([]CardDetail, error) {
	if opts.Count <= 0 {
		opts.Count = DefaultSessionSize
	}

	// Single-value filters are pushed into SQL; multi-value filters are
	// applied on the result set.
	f := index.Filter{Tag: opts.Tag}
	if len(opts.Chapters) == 1 {
		f.Chapter = opts.Chapters[0]
	}
	if len(opts.Difficulties) == 1 {
		f.Difficulty = opts.Difficulties[0]
	}

	rows, _, err := s.db.ListCards(f, 10000, 0)
	if err != nil {
		return nil, err
	}

	chapters := intSet(opts.Chapters)
	difficulties := stringSet(opts.Difficulties)

	pool := make([]CardDetail, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if len(chapters) > 0 {
			if _, ok := chapters[r.ChapterNumber]; !ok {
				continue
			}
		}
		if len(difficulties) > 0 {
			if _, ok := difficulties[r.Difficulty]; !ok {
				continue
			}
		}
		pool = append(pool, *detailFromRow(r))
	}

	if opts.Shuffle {
		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}
	if len(pool) > opts.Count {
		pool = pool[:opts.Count]
	}
	return pool, nil
}

func intSet(vals []int) map[int]struct{} {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[int]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

func stringSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}
