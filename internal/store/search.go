package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/mind-note/internal/model"
)

// SearchParams holds parameters for searching memos.
type SearchParams struct {
	Query    string
	Context  string
	Language string
	Limit    int
}

// SearchResult wraps a memo with the matched excerpt, when the full-text
// index produced one.
type SearchResult struct {
	model.Memo
	Snippet string `json:"snippet,omitempty"`
}

// Search ranks memos through the full-text index and falls back to a
// substring scan when the index finds nothing. The unicode61 tokenizer keeps
// runs of Hangul or Kana as single tokens, so partial words in those scripts
// only match the substring scan.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalid)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	where, args := []string{"m.deleted_at IS NULL"}, []any{}
	if c := strings.TrimSpace(p.Context); c != "" {
		where = append(where, "m.context = ?")
		args = append(args, c)
	}
	if l := strings.TrimSpace(p.Language); l != "" {
		where = append(where, "m.language = ?")
		args = append(args, l)
	}
	clause := strings.Join(where, " AND ")

	results, err := s.searchIndex(ctx, q, clause, args, limit)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}
	return s.searchLike(ctx, q, clause, args, limit)
}

func (s *SQLiteStore) searchIndex(ctx context.Context, q, clause string, args []any, limit int) ([]SearchResult, error) {
	query := fmt.Sprintf(`
		SELECT %s, snippet(memos_fts, -1, '[', ']', '...', 12)
		FROM memos_fts
		JOIN memos m ON m.rowid = memos_fts.rowid
		WHERE memos_fts MATCH ? AND %s
		ORDER BY bm25(memos_fts), m.created_at DESC
		LIMIT ?`, memoColumns, clause)
	all := append([]any{ftsQuery(q)}, args...)
	rows, err := s.db.QueryContext(ctx, query, append(all, limit)...)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		m, err := scanMemo(scanWithSnippet{rows, &r.Snippet})
		if err != nil {
			return nil, err
		}
		r.Memo = m
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) searchLike(ctx context.Context, q, clause string, args []any, limit int) ([]SearchResult, error) {
	like := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM memos m
		WHERE %s AND (m.refined LIKE ? OR m.original_text LIKE ? OR m.insight LIKE ? OR m.tags LIKE ?)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?`, memoColumns, clause)
	all := append(append([]any{}, args...), like, like, like, like, limit)
	rows, err := s.db.QueryContext(ctx, query, all...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Memo: m})
	}
	return results, rows.Err()
}

// scanWithSnippet appends the snippet column to a memo scan.
type scanWithSnippet struct {
	row     scanner
	snippet *string
}

func (s scanWithSnippet) Scan(dest ...any) error {
	return s.row.Scan(append(dest, s.snippet)...)
}

// ftsQuery turns free text into an FTS5 query that ANDs each word as a
// quoted phrase, so user input cannot trip the query syntax.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
