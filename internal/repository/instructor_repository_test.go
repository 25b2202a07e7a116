package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/models"
)

func newInstructorRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func instructorRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "registration", "unit", "position", "active", "created_at", "updated_at"}).
		AddRow(id, "Carlos Silva", "90012", "Plant A", nil, true, now, now)
}

func TestInstructorRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructors")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	instructor := &models.Instructor{Name: "Carlos Silva", Registration: "90012", Unit: "Plant A", Active: true}
	require.NoError(t, repo.Create(context.Background(), instructor))
	require.NotEmpty(t, instructor.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, registration")).
		WithArgs(instructor.ID).
		WillReturnRows(instructorRow(instructor.ID))

	found, err := repo.FindByID(context.Background(), instructor.ID)
	require.NoError(t, err)
	require.Equal(t, "90012", found.Registration)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE 1=1")).
		WithArgs("%carlos%", "Plant A", true).
		WillReturnRows(instructorRow("instructor-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%carlos%", "Plant A", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	list, total, err := repo.List(context.Background(), models.InstructorFilter{
		Search: "Carlos",
		Unit:   "Plant A",
		Active: &active,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryExistsByRegistration(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM instructors")).
		WithArgs("90012").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByRegistration(context.Background(), "90012", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM instructors")).
		WithArgs("90013", "instructor-1").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByRegistration(context.Background(), "90013", "instructor-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	repo := NewInstructorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE instructors SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "instructor-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
