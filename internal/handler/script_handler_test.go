package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/dto"
	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/repository"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

type ratingServiceMock struct {
	script  *models.Script
	result  *models.RatingResult
	logs    []models.RatingLog
	err     error
	deleted []string
}

func (m *ratingServiceMock) CreateScript(_ context.Context, title, content string) (*models.Script, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Script{ID: "script-1", Title: title, Content: content}, nil
}

func (m *ratingServiceMock) GetScript(_ context.Context, id string) (*models.Script, error) {
	if m.script == nil || m.script.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return m.script, nil
}

func (m *ratingServiceMock) ListScripts(_ context.Context, _ repository.ScriptFilter) ([]models.Script, int, error) {
	if m.script == nil {
		return []models.Script{}, 0, nil
	}
	return []models.Script{*m.script}, 1, nil
}

func (m *ratingServiceMock) DeleteScript(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *ratingServiceMock) RateText(_ context.Context, _ string) (*models.RatingResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *ratingServiceMock) RateScript(_ context.Context, _ string) (*models.RatingResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *ratingServiceMock) RatingHistory(_ context.Context, _ string, _ int) ([]models.RatingLog, error) {
	return m.logs, nil
}

func (m *ratingServiceMock) ModelVersion() string { return "lexicon-v1" }

func testContext(t *testing.T, method, path string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestScriptHandlerCreate(t *testing.T) {
	handler := NewScriptHandler(&ratingServiceMock{})
	c, w := testContext(t, http.MethodPost, "/scripts", dto.CreateScriptRequest{
		Title:   "Heat Wave",
		Content: "INT. WAREHOUSE - NIGHT\nDecker waits.",
	})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Heat Wave")
}

func TestScriptHandlerCreateInvalidBody(t *testing.T) {
	handler := NewScriptHandler(&ratingServiceMock{})
	c, w := testContext(t, http.MethodPost, "/scripts", nil)
	c.Request.Body = http.NoBody

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScriptHandlerGetNotFound(t *testing.T) {
	handler := NewScriptHandler(&ratingServiceMock{})
	c, w := testContext(t, http.MethodGet, "/scripts/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScriptHandlerRate(t *testing.T) {
	mock := &ratingServiceMock{
		script: &models.Script{ID: "script-1"},
		result: &models.RatingResult{Rating: models.Rating16, Scores: models.ZeroVector(), ModelVersion: "lexicon-v1"},
	}
	handler := NewScriptHandler(mock)
	c, w := testContext(t, http.MethodPost, "/scripts/script-1/rate", nil)
	c.Params = gin.Params{{Key: "id", Value: "script-1"}}

	handler.Rate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(models.Rating16))
	assert.Contains(t, w.Body.String(), "model_version")
}

func TestScriptHandlerRateTextMissingContent(t *testing.T) {
	handler := NewScriptHandler(&ratingServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "content is empty")})
	c, w := testContext(t, http.MethodPost, "/rate", dto.RateTextRequest{Content: ""})

	handler.RateText(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
