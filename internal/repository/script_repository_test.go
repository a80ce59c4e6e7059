package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestScriptRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScriptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scripts")).
		WithArgs(sqlmock.AnyArg(), "Heat Wave", "INT. BAR - NIGHT\nA quiet drink.", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	script, err := repo.Create(context.Background(), "Heat Wave", "INT. BAR - NIGHT\nA quiet drink.")
	require.NoError(t, err)
	assert.NotEmpty(t, script.ID)
	assert.Equal(t, 1, script.CurrentVersion)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScriptRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScriptRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("script-missing").
		WillReturnError(sql.ErrNoRows)

	script, err := repo.GetByID(context.Background(), "script-missing")
	require.NoError(t, err)
	assert.Nil(t, script)
}

func TestScriptRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScriptRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scripts")).
		WithArgs("16+").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "title", "content", "predicted_rating", "agg_scores", "model_version", "total_scenes", "current_version", "created_at", "updated_at"}).
		AddRow("script-1", "Heat Wave", "INT. BAR - NIGHT", "16+", []byte(`{"violence":0.5,"gore":0,"sex_act":0,"nudity":0,"profanity":0,"drugs":0,"child_risk":0}`), "lexicon-v1", 12, 1, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scripts WHERE 1=1 AND predicted_rating = $1 ORDER BY created_at DESC")).
		WithArgs("16+", 20, 0).
		WillReturnRows(rows)

	scripts, total, err := repo.List(context.Background(), ScriptFilter{Rating: "16+"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, scripts, 1)
	require.NotNil(t, scripts[0].PredictedRating)
	assert.Equal(t, models.Rating16, *scripts[0].PredictedRating)
	assert.InDelta(t, 0.5, scripts[0].AggScores[models.DimViolence], 1e-9)
}

func TestScriptRepositoryUpdateRatingMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScriptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scripts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRating(context.Background(), "script-missing", RatingUpdateParams{
		Rating: models.Rating12, Scores: models.ZeroVector(), ModelVersion: "lexicon-v1", TotalScenes: 3,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScriptRepositoryInsertRatingLog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScriptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rating_logs")).
		WithArgs(sqlmock.AnyArg(), "script-1", "12+", []byte(`["violence"]`), "lexicon-v1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.RatingLog{
		ScriptID:        "script-1",
		PredictedRating: models.Rating12,
		Reasons:         []byte(`["violence"]`),
		ModelVersion:    "lexicon-v1",
	}
	require.NoError(t, repo.InsertRatingLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
}
