package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/models"
)

func newTrainingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func trainingRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "code", "duration", "provider", "content", "classification", "objective", "created_at", "updated_at"}).
		AddRow(id, "NR-35 Work at Height", "NR35", "08:00", nil, nil, nil, nil, now, now)
}

func TestTrainingRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newTrainingRepoMock(t)
	defer cleanup()

	repo := NewTrainingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trainings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	training := &models.Training{Name: "NR-35 Work at Height", Code: "NR35"}
	require.NoError(t, repo.Create(context.Background(), training))
	require.NotEmpty(t, training.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code")).
		WithArgs(training.ID).
		WillReturnRows(trainingRow(training.ID))

	found, err := repo.FindByID(context.Background(), training.ID)
	require.NoError(t, err)
	require.Equal(t, "NR35", found.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainingRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newTrainingRepoMock(t)
	defer cleanup()

	repo := NewTrainingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM trainings WHERE 1=1")).
		WithArgs("%nr-35%").
		WillReturnRows(trainingRow("training-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%nr-35%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TrainingFilter{Search: "NR-35"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newTrainingRepoMock(t)
	defer cleanup()

	repo := NewTrainingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trainings")).
		WithArgs("training-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "training-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
