package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

func TestVersionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVersionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version_number), 0) + 1 FROM script_versions")).
		WithArgs("script-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE script_versions SET is_current = FALSE")).
		WithArgs("script-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO script_versions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	version := &models.ScriptVersion{ScriptID: "script-1", Title: "Heat Wave", Content: "INT. BAR - NIGHT"}
	require.NoError(t, repo.Create(context.Background(), version))
	assert.Equal(t, 3, version.VersionNumber)
	assert.True(t, version.IsCurrent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepositorySetCurrentMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVersionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE script_versions SET is_current = FALSE")).
		WithArgs("script-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE script_versions SET is_current = TRUE")).
		WithArgs("script-1", 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetCurrent(context.Background(), "script-1", 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestVersionRepositoryGetByNumberMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVersionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("script-1", 4).
		WillReturnError(sql.ErrNoRows)

	version, err := repo.GetByNumber(context.Background(), "script-1", 4)
	require.NoError(t, err)
	assert.Nil(t, version)
}

func TestVersionRepositoryDeleteCurrentRefused(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM script_versions")).
		WithArgs("script-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "script-1", 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
