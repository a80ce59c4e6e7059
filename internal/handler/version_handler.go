package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinerate/cinerate-api/internal/dto"
	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/response"
)

type versionService interface {
	Snapshot(ctx context.Context, scriptID string, changeDescription string) (*models.ScriptVersion, error)
	List(ctx context.Context, scriptID string) ([]models.ScriptVersion, error)
	Get(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error)
	Restore(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error)
	Delete(ctx context.Context, scriptID string, number int) error
	Compare(ctx context.Context, scriptID string, from, to int) (*models.VersionComparison, error)
}

// VersionHandler exposes the script version history endpoints.
type VersionHandler struct {
	service versionService
}

// NewVersionHandler builds a new handler.
func NewVersionHandler(service versionService) *VersionHandler {
	return &VersionHandler{service: service}
}

// Snapshot godoc
// @Summary Snapshot the current script content as a new version
// @Tags Versions
// @Accept json
// @Produce json
// @Param id path string true "Script ID"
// @Param payload body dto.SnapshotVersionRequest false "Change description"
// @Success 201 {object} response.Envelope
// @Router /scripts/{id}/versions [post]
func (h *VersionHandler) Snapshot(c *gin.Context) {
	var req dto.SnapshotVersionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid snapshot payload"))
			return
		}
	}
	version, err := h.service.Snapshot(c.Request.Context(), c.Param("id"), req.ChangeDescription)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, version)
}

// List godoc
// @Summary List versions of a script, newest first
// @Tags Versions
// @Produce json
// @Param id path string true "Script ID"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/versions [get]
func (h *VersionHandler) List(c *gin.Context) {
	versions, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// Get godoc
// @Summary Get one version of a script
// @Tags Versions
// @Produce json
// @Param id path string true "Script ID"
// @Param number path int true "Version number"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/versions/{number} [get]
func (h *VersionHandler) Get(c *gin.Context) {
	number, ok := h.versionNumber(c)
	if !ok {
		return
	}
	version, err := h.service.Get(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Restore godoc
// @Summary Restore a script to an older version
// @Tags Versions
// @Produce json
// @Param id path string true "Script ID"
// @Param number path int true "Version number"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/versions/{number}/restore [post]
func (h *VersionHandler) Restore(c *gin.Context) {
	number, ok := h.versionNumber(c)
	if !ok {
		return
	}
	version, err := h.service.Restore(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// Delete godoc
// @Summary Delete a non-current version
// @Tags Versions
// @Param id path string true "Script ID"
// @Param number path int true "Version number"
// @Success 204
// @Router /scripts/{id}/versions/{number} [delete]
func (h *VersionHandler) Delete(c *gin.Context) {
	number, ok := h.versionNumber(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), number); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Compare godoc
// @Summary Compare two versions of a script
// @Tags Versions
// @Produce json
// @Param id path string true "Script ID"
// @Param from query int true "Older version number"
// @Param to query int true "Newer version number"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/versions/compare [get]
func (h *VersionHandler) Compare(c *gin.Context) {
	from, err := strconv.Atoi(c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be an integer"))
		return
	}
	to, err := strconv.Atoi(c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be an integer"))
		return
	}
	comparison, err := h.service.Compare(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comparison, nil)
}

func (h *VersionHandler) versionNumber(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version number must be a positive integer"))
		return 0, false
	}
	return number, true
}
