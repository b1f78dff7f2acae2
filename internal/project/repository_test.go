// AngelaMos | 2026
// repository_test.go

package project

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var projectRowColumns = []string{
	"id", "name", "description", "client", "status", "priority", "progress",
	"start_date", "end_date", "budget", "manager_id", "created_at", "updated_at",
}

func TestRepository_CreateUnknownManager(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), &Project{ID: "p1", ManagerID: "ghost"})
	assert.ErrorIs(t, err, core.ErrForeignKey)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(projectRowColumns))

	_, err := repo.GetByID(context.Background(), "p1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_ListByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects")).
		WithArgs(StatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(StatusInProgress, 20, 0).
		WillReturnRows(sqlmock.NewRows(projectRowColumns).AddRow(
			"p1", "Bridge", "", "ACME", StatusInProgress, PriorityHigh, 40,
			day, day.AddDate(0, 2, 0), 1500.5, "m1", day, day,
		))

	projects, total, err := repo.List(context.Background(), ListParams{
		Status: StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].Budget)
	assert.InDelta(t, 1500.5, *projects[0].Budget, 0.001)
}

func TestRepository_Exists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}
