package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/mind-note/internal/model"
)

// ExportAll returns all active memos, oldest first, optionally limited to
// one context category.
func (s *SQLiteStore) ExportAll(ctx context.Context, contextFilter string) ([]model.Memo, error) {
	where := []string{"m.deleted_at IS NULL"}
	var args []any
	if c := strings.TrimSpace(contextFilter); c != "" {
		where = append(where, "m.context = ?")
		args = append(args, c)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoColumns+` FROM memos m WHERE `+strings.Join(where, " AND ")+` ORDER BY m.created_at, m.id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memos := []model.Memo{}
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, m)
	}
	return memos, rows.Err()
}

// Import stores memos from an export, keeping their IDs and timestamps.
// Memos whose ID already exists are skipped. It returns how many were added.
func (s *SQLiteStore) Import(ctx context.Context, memos []model.Memo) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for i, m := range memos {
		p := CreateParams{
			Refined:      m.Refined,
			Tags:         m.Tags,
			Context:      m.Context,
			Insight:      m.Insight,
			OriginalText: m.OriginalText,
			AudioURL:     m.AudioURL,
			Language:     m.Language,
			IsFallback:   m.IsFallback,
		}
		p.normalize()
		if err := p.validate(); err != nil {
			return 0, fmt.Errorf("memo %d (%s): %w", i, m.ID, err)
		}

		now := time.Now().UTC().Truncate(time.Second)
		rec := m
		rec.Refined, rec.Tags, rec.Context, rec.Insight = p.Refined, p.Tags, p.Context, p.Insight
		rec.AudioURL, rec.Language = p.AudioURL, p.Language
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = rec.CreatedAt
		}
		if rec.Version < 1 {
			rec.Version = 1
		}
		if rec.ID == "" {
			rec.ID = s.newID(rec.CreatedAt)
		} else {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM memos WHERE id = ?`, rec.ID).Scan(&exists); err != nil {
				return 0, err
			}
			if exists > 0 {
				continue
			}
		}
		if err := s.insert(ctx, tx, &rec); err != nil {
			return 0, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
