// Package postgres persists search history in Postgres.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for history rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// Store implements portal.HistoryStore.
type Store struct {
	pool  pool
	table string
}

// New connects a pgx pool using cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := NewWithPool(p, cfg.Table)
	if err != nil {
		p.Close()
		return nil, err
	}
	return store, nil
}

// NewWithPool constructs a store from an existing pool.
func NewWithPool(p pool, table string) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "search_history"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: p, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// EnsureSchema creates the history table and its listing index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id           UUID PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	keyword      TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	fallback     BOOLEAN NOT NULL,
	duration_ms  BIGINT NOT NULL,
	status       TEXT NOT NULL,
	error_text   TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_subject_created_idx ON %[1]s (subject_id, created_at DESC)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// Record inserts one history row.
func (s *Store) Record(ctx context.Context, entry portal.SearchHistoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("history id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	subject_id,
	keyword,
	result_count,
	fallback,
	duration_ms,
	status,
	error_text,
	created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`, s.table)

	args := []any{
		entry.ID,
		entry.SubjectID,
		entry.Keyword,
		entry.ResultCount,
		entry.Fallback,
		entry.DurationMs,
		string(entry.Status),
		entry.ErrorText,
		entry.CreatedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// List returns subjectID's entries newest first along with the total count.
func (s *Store) List(ctx context.Context, subjectID string, limit, offset int) (portal.HistoryPage, error) {
	var page portal.HistoryPage
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE subject_id = $1`, s.table)
	if err := s.pool.QueryRow(ctx, countQuery, subjectID).Scan(&page.Total); err != nil {
		return portal.HistoryPage{}, fmt.Errorf("count history: %w", err)
	}
	if page.Total == 0 || limit <= 0 {
		return page, nil
	}

	query := fmt.Sprintf(`
SELECT id, subject_id, keyword, result_count, fallback, duration_ms, status, error_text, created_at
FROM %s
WHERE subject_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`, s.table)
	rows, err := s.pool.Query(ctx, query, subjectID, limit, offset)
	if err != nil {
		return portal.HistoryPage{}, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry  portal.SearchHistoryEntry
			status string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.SubjectID,
			&entry.Keyword,
			&entry.ResultCount,
			&entry.Fallback,
			&entry.DurationMs,
			&status,
			&entry.ErrorText,
			&entry.CreatedAt,
		); err != nil {
			return portal.HistoryPage{}, fmt.Errorf("scan history: %w", err)
		}
		entry.Status = portal.HistoryStatus(status)
		page.Entries = append(page.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return portal.HistoryPage{}, fmt.Errorf("iterate history: %w", err)
	}
	return page, nil
}
