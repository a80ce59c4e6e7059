package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/rating"
	"github.com/cinerate/cinerate-api/internal/repository"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/locks"
)

const violentScript = `INT. WAREHOUSE - NIGHT
Decker pulls a gun and shoots. Blood sprays across the wall.

EXT. PARK - DAY
Children play on the swings under a bright sky.`

type stubScriptStore struct {
	scripts map[string]*models.Script
	logs    []models.RatingLog
	updated map[string]repository.RatingUpdateParams
}

func newStubScriptStore() *stubScriptStore {
	return &stubScriptStore{
		scripts: map[string]*models.Script{},
		updated: map[string]repository.RatingUpdateParams{},
	}
}

func (s *stubScriptStore) Create(_ context.Context, title, content string) (*models.Script, error) {
	script := &models.Script{ID: "script-1", Title: title, Content: content, CurrentVersion: 1}
	s.scripts[script.ID] = script
	return script, nil
}

func (s *stubScriptStore) GetByID(_ context.Context, id string) (*models.Script, error) {
	return s.scripts[id], nil
}

func (s *stubScriptStore) List(_ context.Context, _ repository.ScriptFilter) ([]models.Script, int, error) {
	out := make([]models.Script, 0, len(s.scripts))
	for _, script := range s.scripts {
		out = append(out, *script)
	}
	return out, len(out), nil
}

func (s *stubScriptStore) UpdateRating(_ context.Context, id string, params repository.RatingUpdateParams) error {
	s.updated[id] = params
	return nil
}

func (s *stubScriptStore) UpdateContent(_ context.Context, id, content string, currentVersion int) error {
	if script, ok := s.scripts[id]; ok {
		script.Content = content
		script.CurrentVersion = currentVersion
	}
	return nil
}

func (s *stubScriptStore) Delete(_ context.Context, id string) error {
	delete(s.scripts, id)
	return nil
}

func (s *stubScriptStore) InsertRatingLog(_ context.Context, log *models.RatingLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

func (s *stubScriptStore) ListRatingLogs(_ context.Context, scriptID string, _ int) ([]models.RatingLog, error) {
	out := []models.RatingLog{}
	for _, log := range s.logs {
		if log.ScriptID == scriptID {
			out = append(out, log)
		}
	}
	return out, nil
}

type stubVersionWriter struct {
	created []models.ScriptVersion
}

func (s *stubVersionWriter) Create(_ context.Context, version *models.ScriptVersion) error {
	version.VersionNumber = len(s.created) + 1
	version.IsCurrent = true
	s.created = append(s.created, *version)
	return nil
}

func testPipeline() *rating.Pipeline {
	scorer := rating.NewLexiconScorer("lexicon-v1")
	aggregator := rating.NewAggregator(rating.DefaultPolicy(), 5)
	return rating.NewPipeline(scorer, aggregator, 1000)
}

func newRatingService(store *stubScriptStore) (*RatingService, *stubVersionWriter) {
	versions := &stubVersionWriter{}
	svc := NewRatingService(store, versions, testPipeline(), locks.NewKeyedLocker(), nil, nil, RatingServiceConfig{CacheTTL: time.Minute})
	return svc, versions
}

func TestCreateScriptValidation(t *testing.T) {
	svc, _ := newRatingService(newStubScriptStore())

	_, err := svc.CreateScript(context.Background(), "", violentScript)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.CreateScript(context.Background(), "Heat Wave", "   ")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrParsing))
}

func TestCreateScriptSnapshotsInitialVersion(t *testing.T) {
	svc, versions := newRatingService(newStubScriptStore())

	script, err := svc.CreateScript(context.Background(), "Heat Wave", violentScript)
	require.NoError(t, err)
	assert.Equal(t, "script-1", script.ID)
	require.Len(t, versions.created, 1)
	assert.Equal(t, violentScript, versions.created[0].Content)
}

func TestRateScriptPersistsOutcome(t *testing.T) {
	store := newStubScriptStore()
	svc, _ := newRatingService(store)
	_, err := svc.CreateScript(context.Background(), "Heat Wave", violentScript)
	require.NoError(t, err)

	result, err := svc.RateScript(context.Background(), "script-1")
	require.NoError(t, err)
	assert.True(t, result.Rating.StricterThan(models.Rating0))

	persisted, ok := store.updated["script-1"]
	require.True(t, ok)
	assert.Equal(t, result.Rating, persisted.Rating)
	assert.Equal(t, "lexicon-v1", persisted.ModelVersion)
	require.Len(t, store.logs, 1)
	assert.Equal(t, result.Rating, store.logs[0].PredictedRating)
}

func TestRateScriptNotFound(t *testing.T) {
	svc, _ := newRatingService(newStubScriptStore())
	_, err := svc.RateScript(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestRateScriptSingleWriter(t *testing.T) {
	store := newStubScriptStore()
	locker := locks.NewKeyedLocker()
	svc := NewRatingService(store, nil, testPipeline(), locker, nil, nil, RatingServiceConfig{})
	_, err := svc.CreateScript(context.Background(), "Heat Wave", violentScript)
	require.NoError(t, err)

	require.True(t, locker.TryAcquire("script:script-1"))
	defer locker.Release("script:script-1")

	_, err = svc.RateScript(context.Background(), "script-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict))
}

func TestRateScriptDeterministic(t *testing.T) {
	store := newStubScriptStore()
	svc, _ := newRatingService(store)
	_, err := svc.CreateScript(context.Background(), "Heat Wave", violentScript)
	require.NoError(t, err)

	first, err := svc.RateScript(context.Background(), "script-1")
	require.NoError(t, err)
	second, err := svc.RateScript(context.Background(), "script-1")
	require.NoError(t, err)
	assert.Equal(t, first.Rating, second.Rating)
	assert.Equal(t, first.Scores, second.Scores)
}
