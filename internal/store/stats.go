package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string  `json:"db_path"`
	DBSizeBytes   int64   `json:"db_size_bytes"`
	TotalMemos    int     `json:"total_memos"`
	ActiveMemos   int     `json:"active_memos"`
	FallbackMemos int     `json:"fallback_memos"`
	Contexts      []Count `json:"contexts"`
	Languages     []Count `json:"languages"`
}

// Count is a grouped row count.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats returns database statistics over active memos.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path, Contexts: []Count{}, Languages: []Count{}}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memos`).Scan(&st.TotalMemos); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_fallback), 0) FROM memos WHERE deleted_at IS NULL`,
	).Scan(&st.ActiveMemos, &st.FallbackMemos); err != nil {
		return nil, err
	}

	var err error
	if st.Contexts, err = s.countBy(ctx, "context"); err != nil {
		return nil, err
	}
	if st.Languages, err = s.countBy(ctx, "language"); err != nil {
		return nil, err
	}
	return st, nil
}

// countBy groups active memos by a fixed column name.
func (s *SQLiteStore) countBy(ctx context.Context, column string) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS cnt
		FROM memos WHERE deleted_at IS NULL
		GROUP BY `+column+` ORDER BY cnt DESC, `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
