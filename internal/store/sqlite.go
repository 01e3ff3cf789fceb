package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/mind-note/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	entropy io.Reader
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memos (
		id            TEXT PRIMARY KEY,
		refined       TEXT NOT NULL,
		tags          TEXT NOT NULL,
		context       TEXT NOT NULL,
		insight       TEXT,
		original_text TEXT NOT NULL,
		audio_url     TEXT,
		language      TEXT NOT NULL DEFAULT 'en',
		is_fallback   INTEGER NOT NULL DEFAULT 0,
		version       INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		deleted_at    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memos_created ON memos(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memos_context ON memos(context);
	CREATE INDEX IF NOT EXISTS idx_memos_language ON memos(language);
	CREATE INDEX IF NOT EXISTS idx_memos_deleted ON memos(deleted_at);

	CREATE VIRTUAL TABLE IF NOT EXISTS memos_fts USING fts5(
		refined,
		original_text,
		insight,
		content=memos,
		content_rowid=rowid
	);

	CREATE TRIGGER IF NOT EXISTS memos_ai AFTER INSERT ON memos BEGIN
		INSERT INTO memos_fts(rowid, refined, original_text, insight)
		VALUES (new.rowid, new.refined, new.original_text, coalesce(new.insight, ''));
	END;
	CREATE TRIGGER IF NOT EXISTS memos_ad AFTER DELETE ON memos BEGIN
		INSERT INTO memos_fts(memos_fts, rowid, refined, original_text, insight)
		VALUES ('delete', old.rowid, old.refined, old.original_text, coalesce(old.insight, ''));
	END;
	CREATE TRIGGER IF NOT EXISTS memos_au AFTER UPDATE OF refined, original_text, insight ON memos BEGIN
		INSERT INTO memos_fts(memos_fts, rowid, refined, original_text, insight)
		VALUES ('delete', old.rowid, old.refined, old.original_text, coalesce(old.insight, ''));
		INSERT INTO memos_fts(rowid, refined, original_text, insight)
		VALUES (new.rowid, new.refined, new.original_text, coalesce(new.insight, ''));
	END;
	`
	_, err := s.db.Exec(schema)
	return err
}

const memoColumns = `m.id, m.refined, m.tags, m.context, m.insight, m.original_text, m.audio_url,
	m.language, m.is_fallback, m.version, m.created_at, m.updated_at, m.deleted_at`

// Create validates p and stores a new memo.
func (s *SQLiteStore) Create(ctx context.Context, p CreateParams) (*model.Memo, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	m := &model.Memo{
		ID:           s.newID(now),
		Refined:      p.Refined,
		Tags:         p.Tags,
		Context:      p.Context,
		Insight:      p.Insight,
		OriginalText: p.OriginalText,
		AudioURL:     p.AudioURL,
		Language:     p.Language,
		IsFallback:   p.IsFallback,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insert(ctx, s.db, m); err != nil {
		return nil, err
	}
	return m, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, db execer, m *model.Memo) error {
	tagsJSON, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	var deletedAt *string
	if m.DeletedAt != nil {
		v := m.DeletedAt.UTC().Format(time.RFC3339)
		deletedAt = &v
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO memos (id, refined, tags, context, insight, original_text, audio_url,
		                    language, is_fallback, version, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Refined, string(tagsJSON), m.Context, nullable(m.Insight), m.OriginalText,
		nullable(m.AudioURL), m.Language, m.IsFallback, m.Version,
		m.CreatedAt.UTC().Format(time.RFC3339), m.UpdatedAt.UTC().Format(time.RFC3339), deletedAt)
	if err != nil {
		return fmt.Errorf("insert memo: %w", err)
	}
	return nil
}

// Get returns the active memo with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Memo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoColumns+` FROM memos m WHERE m.id = ? AND m.deleted_at IS NULL`, id)
	m, err := scanMemo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns active memos matching p, newest first.
func (s *SQLiteStore) List(ctx context.Context, p ListParams) (*ListResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"m.deleted_at IS NULL"}
	var args []any

	if tags := trimTags(p.Tags); len(tags) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(m.tags) t WHERE t.value IN (`+placeholders(len(tags))+`))`)
		for _, t := range tags {
			args = append(args, t)
		}
	}
	if c := strings.TrimSpace(p.Context); c != "" {
		where = append(where, "m.context = ?")
		args = append(args, c)
	}
	if l := strings.TrimSpace(p.Language); l != "" {
		where = append(where, "m.language = ?")
		args = append(args, l)
	}
	if q := strings.TrimSpace(p.Search); q != "" {
		where = append(where, `(m.rowid IN (SELECT rowid FROM memos_fts WHERE memos_fts MATCH ?)
			OR m.refined LIKE ? OR m.original_text LIKE ?)`)
		like := "%" + q + "%"
		args = append(args, ftsQuery(q), like, like)
	}
	clause := strings.Join(where, " AND ")

	res := &ListResult{Memos: []model.Memo{}, Limit: limit, Offset: offset}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memos m WHERE `+clause, args...).Scan(&res.Total); err != nil {
		return nil, fmt.Errorf("count memos: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM memos m WHERE %s
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ? OFFSET ?`, memoColumns, clause)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		res.Memos = append(res.Memos, m)
	}
	return res, rows.Err()
}

// Update applies a partial update, bumping the version.
func (s *SQLiteStore) Update(ctx context.Context, p UpdateParams) (*model.Memo, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	sets := []string{"version = version + 1", "updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if p.Refined != nil {
		sets = append(sets, "refined = ?")
		args = append(args, *p.Refined)
	}
	if p.Tags != nil {
		b, _ := json.Marshal(p.Tags)
		sets = append(sets, "tags = ?")
		args = append(args, string(b))
	}
	if p.Context != nil {
		sets = append(sets, "context = ?")
		args = append(args, *p.Context)
	}
	if p.Insight != nil {
		sets = append(sets, "insight = ?")
		args = append(args, nullable(strings.TrimSpace(*p.Insight)))
	}
	args = append(args, p.ID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE memos SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		return nil, fmt.Errorf("update memo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return s.Get(ctx, p.ID)
}

// Delete soft-deletes a memo, or removes it entirely when p.Hard is set.
func (s *SQLiteStore) Delete(ctx context.Context, p DeleteParams) error {
	var (
		res sql.Result
		err error
	)
	if p.Hard {
		res, err = s.db.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, p.ID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE memos SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
			time.Now().UTC().Format(time.RFC3339), p.ID)
	}
	if err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemo(row scanner) (model.Memo, error) {
	var m model.Memo
	var tagsJSON string
	var insight, audioURL, deletedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&m.ID, &m.Refined, &tagsJSON, &m.Context, &insight, &m.OriginalText, &audioURL,
		&m.Language, &m.IsFallback, &m.Version, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return m, err
	}

	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	m.Insight = insight.String
	m.AudioURL = audioURL.String
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		m.DeletedAt = &t
	}
	if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return m, fmt.Errorf("decode tags for %s: %w", m.ID, err)
	}
	return m, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
