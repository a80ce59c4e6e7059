package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

type versionServiceMock struct {
	version    *models.ScriptVersion
	comparison *models.VersionComparison
	err        error
}

func (m *versionServiceMock) Snapshot(_ context.Context, scriptID, _ string) (*models.ScriptVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ScriptVersion{ScriptID: scriptID, VersionNumber: 1, IsCurrent: true}, nil
}

func (m *versionServiceMock) List(_ context.Context, _ string) ([]models.ScriptVersion, error) {
	if m.version == nil {
		return []models.ScriptVersion{}, nil
	}
	return []models.ScriptVersion{*m.version}, nil
}

func (m *versionServiceMock) Get(_ context.Context, _ string, _ int) (*models.ScriptVersion, error) {
	return m.version, m.err
}

func (m *versionServiceMock) Restore(_ context.Context, _ string, _ int) (*models.ScriptVersion, error) {
	return m.version, m.err
}

func (m *versionServiceMock) Delete(_ context.Context, _ string, _ int) error {
	return m.err
}

func (m *versionServiceMock) Compare(_ context.Context, _ string, _, _ int) (*models.VersionComparison, error) {
	return m.comparison, m.err
}

func TestVersionHandlerSnapshotEmptyBody(t *testing.T) {
	handler := NewVersionHandler(&versionServiceMock{})
	c, w := testContext(t, http.MethodPost, "/scripts/script-1/versions", nil)
	c.Request.Body = http.NoBody
	c.Request.ContentLength = 0
	c.Params = gin.Params{{Key: "id", Value: "script-1"}}

	handler.Snapshot(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "version_number")
}

func TestVersionHandlerRejectsBadNumber(t *testing.T) {
	handler := NewVersionHandler(&versionServiceMock{})
	c, w := testContext(t, http.MethodGet, "/scripts/script-1/versions/zero", nil)
	c.Params = gin.Params{{Key: "id", Value: "script-1"}, {Key: "number", Value: "zero"}}

	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVersionHandlerCompareRequiresIntegers(t *testing.T) {
	handler := NewVersionHandler(&versionServiceMock{})
	c, w := testContext(t, http.MethodGet, "/scripts/script-1/versions/compare", nil)
	c.Params = gin.Params{{Key: "id", Value: "script-1"}}
	c.Request.URL = &url.URL{RawQuery: "from=one&to=2"}

	handler.Compare(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVersionHandlerCompare(t *testing.T) {
	handler := NewVersionHandler(&versionServiceMock{comparison: &models.VersionComparison{
		From: 1, To: 2, RatingChanged: true,
	}})
	c, w := testContext(t, http.MethodGet, "/scripts/script-1/versions/compare", nil)
	c.Params = gin.Params{{Key: "id", Value: "script-1"}}
	c.Request.URL = &url.URL{RawQuery: "from=1&to=2"}

	handler.Compare(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rating_changed")
}
