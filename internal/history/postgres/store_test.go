package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewWithPool(mock, "search_history")
	require.NoError(t, err)
	return store, mock
}

func TestNewWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(mock, "history; DROP TABLE users")
	require.ErrorContains(t, err, "invalid table name")

	store, err := NewWithPool(mock, "")
	require.NoError(t, err)
	require.Equal(t, "search_history", store.table)

	_, err = NewWithPool(nil, "x")
	require.Error(t, err)
}

func TestRecordInsertsRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	now := time.Unix(1700000000, 0).UTC()
	entry := portal.SearchHistoryEntry{
		ID:          "0190f5a2-0000-7000-8000-000000000001",
		SubjectID:   "2024001",
		Keyword:     "6G",
		ResultCount: 3,
		Fallback:    true,
		DurationMs:  420,
		Status:      portal.HistoryStatusCompleted,
		CreatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO search_history").
		WithArgs(entry.ID, entry.SubjectID, entry.Keyword, entry.ResultCount, entry.Fallback,
			entry.DurationMs, "completed", "", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Record(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRequiresID(t *testing.T) {
	t.Parallel()

	store, _ := newMockStore(t)
	require.Error(t, store.Record(context.Background(), portal.SearchHistoryEntry{}))
}

func TestRecordWrapsExecError(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO search_history").WillReturnError(errors.New("connection reset"))

	err := store.Record(context.Background(), portal.SearchHistoryEntry{ID: "x", CreatedAt: time.Now()})
	require.ErrorContains(t, err, "insert history")
}

func TestListReturnsNewestFirstPage(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	newer := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM search_history WHERE subject_id = \$1`).
		WithArgs("2024001").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT id, subject_id, keyword").
		WithArgs("2024001", 2, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "subject_id", "keyword", "result_count", "fallback", "duration_ms", "status", "error_text", "created_at",
		}).
			AddRow("b", "2024001", "AI", 10, false, int64(900), "completed", "", newer).
			AddRow("a", "2024001", "5G", 0, false, int64(60000), "failed", "timeout", older))

	page, err := store.List(context.Background(), "2024001", 2, 0)
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Entries, 2)
	require.Equal(t, "b", page.Entries[0].ID)
	require.Equal(t, portal.HistoryStatusFailed, page.Entries[1].Status)
	require.Equal(t, "timeout", page.Entries[1].ErrorText)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptySkipsRowQuery(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\)`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	page, err := store.List(context.Background(), "nobody", 20, 0)
	require.NoError(t, err)
	require.Zero(t, page.Total)
	require.Empty(t, page.Entries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS search_history").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store, err := NewWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.ErrorContains(t, store.Ping(context.Background()), "ping postgres")
}
