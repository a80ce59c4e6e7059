package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

type stubExportRater struct {
	script *models.Script
	result *models.RatingResult
}

func (s *stubExportRater) GetScript(_ context.Context, id string) (*models.Script, error) {
	if s.script == nil || s.script.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return s.script, nil
}

func (s *stubExportRater) RateScript(_ context.Context, _ string) (*models.RatingResult, error) {
	return s.result, nil
}

func exportFixture() *stubExportRater {
	scores := models.ZeroVector()
	scores[models.DimViolence] = 0.48
	return &stubExportRater{
		script: &models.Script{ID: "script-1", Title: "Heat Wave"},
		result: &models.RatingResult{
			Rating:       models.Rating16,
			Scores:       scores,
			Reasons:      []string{"violence score 0.48 requires 16+"},
			ModelVersion: "lexicon-v1",
			TotalScenes:  2,
			Scenes: []models.Scene{
				{Index: 0, Heading: "INT. WAREHOUSE - NIGHT", Scores: scores, Weight: 0.61},
				{Index: 1, Heading: "EXT. PARK - DAY", Scores: models.ZeroVector(), Weight: 0.25},
			},
			Evidence: []models.ExcerptInfo{
				{SceneIndex: 0, Heading: "INT. WAREHOUSE - NIGHT", Snippet: "Decker pulls a gun", Weight: 0.61},
			},
		},
	}
}

func TestRatingReportPDF(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)

	payload, filename, err := svc.RatingReportPDF(context.Background(), "script-1")
	require.NoError(t, err)
	assert.Equal(t, "rating-report-script-1.pdf", filename)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestSceneScoresCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)

	payload, filename, err := svc.SceneScoresCSV(context.Background(), "script-1")
	require.NoError(t, err)
	assert.Equal(t, "scene-scores-script-1.csv", filename)
	out := string(payload)
	assert.Contains(t, out, "scene_id,heading,weight,violence")
	assert.Contains(t, out, "0,INT. WAREHOUSE - NIGHT,0.610,0.480")
}

func TestExportUnknownScript(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)
	_, _, err := svc.RatingReportPDF(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
