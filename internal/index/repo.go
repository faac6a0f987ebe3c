package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/halloran/medkit/internal/apperr"
)

// GroupMain is the grp value for cards in the primary list. Cards in a
// chapter collection carry "collection-<i>" instead.
const GroupMain = "main"

// groupOrderExpr sorts groups in store order: the main list first, then the
// collections by numeric index. Plain ORDER BY grp would be lexicographic
// ("collection-10" before "collection-2", everything before "main").
const groupOrderExpr = `CASE WHEN grp = 'main' THEN -1 ELSE CAST(substr(grp, 12) AS INTEGER) END`

// CardRow represents a row in the cards table.
type CardRow struct {
	ID            string
	Question      string
	Answer        string
	Difficulty    string
	Type          string
	Tags          []string
	ChapterNumber int
	ChapterTitle  string
	Group         string
	Pos           int
}

// Filter narrows ListCards results. Zero values match everything.
type Filter struct {
	Chapter    int
	Difficulty string
	Type       string
	Tag        string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID       string
	Question string
	Snippet  string
}

// ChapterInfo aggregates per-chapter card counts and the distinct titles
// observed for the chapter number. More than one title is a data defect.
type ChapterInfo struct {
	Number int
	Titles []string
	Cards  int
}

// ReplaceAll swaps the entire card set in one transaction and records the
// checksum of the content store snapshot it came from.
func (db *DB) ReplaceAll(rows []CardRow, storeChecksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM cards`); err != nil {
		return fmt.Errorf("index: clear cards: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`
		INSERT INTO cards (id, question, answer, difficulty, type, tags, chapter_number, chapter_title, grp, pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		tagsJSON, _ := json.Marshal(r.Tags)
		if _, err := stmt.Exec(r.ID, r.Question, r.Answer, r.Difficulty, r.Type,
			string(tagsJSON), r.ChapterNumber, r.ChapterTitle, r.Group, r.Pos); err != nil {
			return fmt.Errorf("index: insert card %s: %w", r.ID, err)
		}
		if err := ftsUpsert(tx, r.ID, r.Question, r.Answer, r.Tags); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('store_checksum', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, storeChecksum); err != nil {
		return fmt.Errorf("index: set checksum: %w", err)
	}

	return tx.Commit()
}

// UpsertCard inserts or replaces a single card and its FTS entry.
func (db *DB) UpsertCard(r CardRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	tagsJSON, _ := json.Marshal(r.Tags)
	_, err = tx.Exec(`
		INSERT INTO cards (id, question, answer, difficulty, type, tags, chapter_number, chapter_title, grp, pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question       = excluded.question,
			answer         = excluded.answer,
			difficulty     = excluded.difficulty,
			type           = excluded.type,
			tags           = excluded.tags,
			chapter_number = excluded.chapter_number,
			chapter_title  = excluded.chapter_title,
			grp            = excluded.grp,
			pos            = excluded.pos
	`, r.ID, r.Question, r.Answer, r.Difficulty, r.Type,
		string(tagsJSON), r.ChapterNumber, r.ChapterTitle, r.Group, r.Pos)
	if err != nil {
		return fmt.Errorf("index: upsert card: %w", err)
	}

	if err := ftsUpsert(tx, r.ID, r.Question, r.Answer, r.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCard removes a card, its FTS entry, and its progress row.
func (db *DB) DeleteCard(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM progress WHERE card_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM cards WHERE id = ?`, id)

	return tx.Commit()
}

// GetCard returns a single card by id.
func (db *DB) GetCard(id string) (*CardRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, question, answer, difficulty, type, tags, chapter_number, chapter_title, grp, pos
		FROM cards WHERE id = ?
	`, id)
	r, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get card: %w", err)
	}
	return r, nil
}

// ListCards returns cards matching f in store order (main cards first, then
// each collection by index), plus the total match count for pagination.
func (db *DB) ListCards(f Filter, limit, offset int) ([]CardRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where, args := filterClause(f)

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count cards: %w", err)
	}

	query := `
		SELECT id, question, answer, difficulty, type, tags, chapter_number, chapter_title, grp, pos
		FROM cards` + where + `
		ORDER BY ` + groupOrderExpr + `, pos
		LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list cards: %w", err)
	}
	defer rows.Close()

	var out []CardRow
	for rows.Next() {
		r, err := scanCard(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// Chapters aggregates cards by chapter number. Cards without a chapter are
// excluded.
func (db *DB) Chapters() ([]ChapterInfo, error) {
	rows, err := db.conn.Query(`
		SELECT chapter_number, chapter_title, count(*)
		FROM cards
		WHERE chapter_number > 0
		GROUP BY chapter_number, chapter_title
		ORDER BY chapter_number
	`)
	if err != nil {
		return nil, fmt.Errorf("index: chapters: %w", err)
	}
	defer rows.Close()

	var out []ChapterInfo
	for rows.Next() {
		var num, count int
		var title string
		if err := rows.Scan(&num, &title, &count); err != nil {
			return nil, err
		}
		if len(out) > 0 && out[len(out)-1].Number == num {
			last := &out[len(out)-1]
			last.Cards += count
			if title != "" {
				last.Titles = append(last.Titles, title)
			}
			continue
		}
		info := ChapterInfo{Number: num, Cards: count}
		if title != "" {
			info.Titles = []string{title}
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// StoreChecksum returns the checksum of the content store snapshot the index
// was last built from, or empty string before the first sync.
func (db *DB) StoreChecksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = 'store_checksum'`).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: store checksum: %w", err)
	}
	return cs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(s rowScanner) (*CardRow, error) {
	var r CardRow
	var tagsJSON string
	if err := s.Scan(&r.ID, &r.Question, &r.Answer, &r.Difficulty, &r.Type,
		&tagsJSON, &r.ChapterNumber, &r.ChapterTitle, &r.Group, &r.Pos); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		r.Tags = nil
	}
	return &r, nil
}

func filterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Chapter > 0 {
		conds = append(conds, "chapter_number = ?")
		args = append(args, f.Chapter)
	}
	if f.Difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, f.Difficulty)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Tag != "" {
		// Tags are stored as a JSON array of strings.
		conds = append(conds, "tags LIKE ?")
		args = append(args, `%"`+f.Tag+`"%`)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
