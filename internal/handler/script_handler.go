package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinerate/cinerate-api/internal/dto"
	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/repository"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/response"
)

type ratingService interface {
	CreateScript(ctx context.Context, title, content string) (*models.Script, error)
	GetScript(ctx context.Context, id string) (*models.Script, error)
	ListScripts(ctx context.Context, filter repository.ScriptFilter) ([]models.Script, int, error)
	DeleteScript(ctx context.Context, id string) error
	RateText(ctx context.Context, text string) (*models.RatingResult, error)
	RateScript(ctx context.Context, id string) (*models.RatingResult, error)
	RatingHistory(ctx context.Context, scriptID string, limit int) ([]models.RatingLog, error)
	ModelVersion() string
}

// ScriptHandler exposes script CRUD and synchronous rating endpoints.
type ScriptHandler struct {
	service ratingService
}

// NewScriptHandler builds a new handler.
func NewScriptHandler(service ratingService) *ScriptHandler {
	return &ScriptHandler{service: service}
}

// Create godoc
// @Summary Register a new script
// @Tags Scripts
// @Accept json
// @Produce json
// @Param payload body dto.CreateScriptRequest true "Script payload"
// @Success 201 {object} response.Envelope
// @Router /scripts [post]
func (h *ScriptHandler) Create(c *gin.Context) {
	var req dto.CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid script payload"))
		return
	}
	script, err := h.service.CreateScript(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, script)
}

// List godoc
// @Summary List scripts
// @Tags Scripts
// @Produce json
// @Param search query string false "Title search"
// @Param rating query string false "Filter by predicted rating"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /scripts [get]
func (h *ScriptHandler) List(c *gin.Context) {
	var query dto.ScriptListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid list query"))
		return
	}

	scripts, total, err := h.service.ListScripts(c.Request.Context(), repository.ScriptFilter{
		Search:   query.Search,
		Rating:   query.Rating,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scripts, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get script by ID
// @Tags Scripts
// @Produce json
// @Param id path string true "Script ID"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id} [get]
func (h *ScriptHandler) Get(c *gin.Context) {
	script, err := h.service.GetScript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, script, nil)
}

// Delete godoc
// @Summary Delete script
// @Tags Scripts
// @Param id path string true "Script ID"
// @Success 204
// @Router /scripts/{id} [delete]
func (h *ScriptHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteScript(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Rate godoc
// @Summary Rate a stored script
// @Tags Rating
// @Produce json
// @Param id path string true "Script ID"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/rate [post]
func (h *ScriptHandler) Rate(c *gin.Context) {
	result, err := h.service.RateScript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{
		"model_version": result.ModelVersion,
	})
}

// RateText godoc
// @Summary Rate raw script text without storing it
// @Tags Rating
// @Accept json
// @Produce json
// @Param payload body dto.RateTextRequest true "Script text"
// @Success 200 {object} response.Envelope
// @Router /rate [post]
func (h *ScriptHandler) RateText(c *gin.Context) {
	var req dto.RateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}
	result, err := h.service.RateText(c.Request.Context(), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List a script's rating history
// @Tags Rating
// @Produce json
// @Param id path string true "Script ID"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/history [get]
func (h *ScriptHandler) History(c *gin.Context) {
	logs, err := h.service.RatingHistory(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.RatingLogItem, 0, len(logs))
	for _, log := range logs {
		items = append(items, dto.NewRatingLogItem(log))
	}
	response.JSON(c, http.StatusOK, items, nil)
}
