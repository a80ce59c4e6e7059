package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/strategy"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

type stubScriptReader struct {
	script *models.Script
}

func (s *stubScriptReader) GetScript(_ context.Context, id string) (*models.Script, error) {
	if s.script == nil || s.script.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return s.script, nil
}

func newWhatIfService(script *models.Script) *WhatIfService {
	return NewWhatIfService(
		&stubScriptReader{script: script},
		testPipeline(),
		strategy.NewRegistry(nil),
		capability.NewHeuristicExtractor(),
		capability.NewKeywordClassifier(),
		nil,
	)
}

func whatIfMod(modType, params string) models.Modification {
	return models.Modification{Type: modType, Params: json.RawMessage(params)}
}

func TestSimulateEmptyBatchIsIdentity(t *testing.T) {
	svc := newWhatIfService(nil)

	result, err := svc.SimulateText(context.Background(), violentScript, nil)
	require.NoError(t, err)
	assert.Equal(t, result.OriginalRating, result.ModifiedRating)
	assert.Equal(t, result.OriginalScores, result.ModifiedScores)
	assert.False(t, result.RatingChanged)
	assert.Empty(t, result.Results)
}

func TestSimulateRemovingViolentSceneLowersRating(t *testing.T) {
	svc := newWhatIfService(nil)

	result, err := svc.SimulateText(context.Background(), violentScript,
		[]models.Modification{whatIfMod(models.ModRemoveScenes, `{"scene_ids":[0]}`)})
	require.NoError(t, err)
	assert.True(t, result.OriginalRating.StricterThan(result.ModifiedRating))
	assert.True(t, result.RatingChanged)
	assert.NotContains(t, result.ModifiedScript, "WAREHOUSE")
	assert.Contains(t, result.Explanation, "improved")
}

func TestSimulateRemovingAllScenesYieldsFloor(t *testing.T) {
	svc := newWhatIfService(nil)

	result, err := svc.SimulateText(context.Background(), violentScript,
		[]models.Modification{whatIfMod(models.ModRemoveScenes, `{"scene_ids":[0,1]}`)})
	require.NoError(t, err)
	assert.Equal(t, models.Rating0, result.ModifiedRating)
	assert.Equal(t, models.ZeroVector(), result.ModifiedScores)
	assert.Empty(t, result.ModifiedScript)
}

func TestSimulateUnknownTypeRejectsBatch(t *testing.T) {
	svc := newWhatIfService(nil)

	_, err := svc.SimulateText(context.Background(), violentScript,
		[]models.Modification{whatIfMod("teleport", `{}`)})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestSimulateInvalidParamsFailOnlyThatModification(t *testing.T) {
	svc := newWhatIfService(nil)

	result, err := svc.SimulateText(context.Background(), violentScript,
		[]models.Modification{
			whatIfMod(models.ModRemoveScenes, `{"scene_ids":[0]}`),
			whatIfMod(models.ModRemoveScenes, `{"scene_ids":[]}`),
		})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Empty(t, result.Results[0].Error)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.True(t, result.OriginalRating.StricterThan(result.ModifiedRating))
	assert.Contains(t, result.Explanation, "1 of 2 modifications failed")
}

func TestSimulateFailedModificationKeepsBaseline(t *testing.T) {
	svc := newWhatIfService(nil)

	result, err := svc.SimulateText(context.Background(), violentScript,
		[]models.Modification{whatIfMod(models.ModRemoveCharacter, `{"character":"NOBODY"}`)})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.NotEmpty(t, result.Results[0].Error)
	assert.Equal(t, result.OriginalRating, result.ModifiedRating)
	assert.Contains(t, result.Explanation, "failed")
}

func TestSimulateScriptLoadsStoredContent(t *testing.T) {
	script := &models.Script{ID: "script-1", Title: "Heat Wave", Content: violentScript}
	svc := newWhatIfService(script)

	result, err := svc.SimulateScript(context.Background(), "script-1",
		[]models.Modification{whatIfMod(models.ModReduceViolence, `{"intensity":"aggressive"}`)})
	require.NoError(t, err)
	assert.NotContains(t, result.ModifiedScript, "shoots")

	_, err = svc.SimulateScript(context.Background(), "missing", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
