package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votelane/reco-service/internal/domain"
)

func electionColumns() []string {
	return []string{
		"id", "title", "description", "category", "country_code", "status",
		"lottery_enabled", "prize_amount", "view_count", "vote_count",
		"conversion_rate", "start_date", "end_date", "created_at", "updated_at",
	}
}

func electionRow(rows *sqlmock.Rows, id, status string) *sqlmock.Rows {
	return rows.AddRow(id, "Title", "Desc", "civic", "US", status,
		true, 100.0, 500, 50, nil, nil, nil, repoNow, repoNow)
}

func TestElectionRepoListForSyncFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := repoNow.Add(-time.Hour)
	mock.ExpectQuery("AND updated_at >= \\$1 AND status = \\$2").
		WithArgs(since, "active", 100, 0).
		WillReturnRows(electionRow(sqlmock.NewRows(electionColumns()), "e1", "active"))

	repo := NewElectionRepo(db)
	got, err := repo.ListForSync(context.Background(), &since, "active", 100, 0)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusActive, got[0].Status)
	assert.Equal(t, "US", got[0].CountryCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElectionRepoGetForSyncNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(electionColumns()))

	repo := NewElectionRepo(db)
	_, err = repo.GetForSync(context.Background(), "ghost")

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.CodeNotFound, appErr.Code)
}

func TestElectionRepoListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM elections").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	rows := sqlmock.NewRows(electionColumns())
	electionRow(rows, "e1", "active")
	electionRow(rows, "e2", "published")
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(2, 0).
		WillReturnRows(rows)

	repo := NewElectionRepo(db)
	got, total, err := repo.ListActive(context.Background(), 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 7, total, "total counts all matches, not just this page")
	require.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElectionRepoListLottery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("lottery_enabled = TRUE AND prize_amount >= \\$1").
		WithArgs(100.0, 10).
		WillReturnRows(electionRow(sqlmock.NewRows(electionColumns()), "e1", "active"))

	repo := NewElectionRepo(db)
	got, err := repo.ListLottery(context.Background(), 100.0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].LotteryEnabled)
}

func TestElectionRepoListSimilarExcludesSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE id != \\$1").
		WithArgs("self", 10).
		WillReturnRows(electionRow(sqlmock.NewRows(electionColumns()), "sib", "active"))

	repo := NewElectionRepo(db)
	got, err := repo.ListSimilar(context.Background(), "self", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sib", got[0].ID)
}
