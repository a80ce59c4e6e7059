package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

func TestJobRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rating_jobs")).
		WithArgs(sqlmock.AnyArg(), "script-1", models.JobPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job, err := repo.Create(context.Background(), "script-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.State)
	assert.NotEmpty(t, job.ID)
}

func TestJobRepositoryMarkRunningAlreadyTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rating_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRunning(context.Background(), "job-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestJobRepositoryFindActiveByScript(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	rows := sqlmock.NewRows([]string{"id", "script_id", "state", "result_rating", "result_scores", "error_code", "error_message", "created_at", "started_at", "finished_at"}).
		AddRow("job-1", "script-1", models.JobRunning, nil, nil, nil, nil, time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rating_jobs WHERE script_id = $1 AND state IN ($2, $3)")).
		WithArgs("script-1", models.JobPending, models.JobRunning).
		WillReturnRows(rows)

	job, err := repo.FindActiveByScript(context.Background(), "script-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, models.JobRunning, job.State)
}

func TestJobRepositoryFindActiveByScriptNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rating_jobs")).
		WithArgs("script-2", models.JobPending, models.JobRunning).
		WillReturnError(sql.ErrNoRows)

	job, err := repo.FindActiveByScript(context.Background(), "script-2")
	require.NoError(t, err)
	assert.Nil(t, job)
}
