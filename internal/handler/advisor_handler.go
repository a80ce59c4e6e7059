package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinerate/cinerate-api/internal/dto"
	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/response"
)

type advisorService interface {
	AdviseScript(ctx context.Context, scriptID string, target models.Rating) (*models.AdvisorReport, error)
	AdviseText(ctx context.Context, content string, target models.Rating) (*models.AdvisorReport, error)
}

// AdvisorHandler answers "what would it take to reach rating X".
type AdvisorHandler struct {
	service advisorService
}

// NewAdvisorHandler builds a new handler.
func NewAdvisorHandler(service advisorService) *AdvisorHandler {
	return &AdvisorHandler{service: service}
}

// AdviseScript godoc
// @Summary Advise how to bring a stored script down to a target rating
// @Tags Advisor
// @Accept json
// @Produce json
// @Param id path string true "Script ID"
// @Param payload body dto.AdviseRequest true "Target rating"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/advise [post]
func (h *AdvisorHandler) AdviseScript(c *gin.Context) {
	_, target, ok := h.bind(c)
	if !ok {
		return
	}
	report, err := h.service.AdviseScript(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// AdviseText godoc
// @Summary Advise on raw script text
// @Tags Advisor
// @Accept json
// @Produce json
// @Param payload body dto.AdviseRequest true "Script text and target rating"
// @Success 200 {object} response.Envelope
// @Router /advise [post]
func (h *AdvisorHandler) AdviseText(c *gin.Context) {
	req, target, ok := h.bind(c)
	if !ok {
		return
	}
	if req.Content == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "content is required"))
		return
	}
	report, err := h.service.AdviseText(c.Request.Context(), req.Content, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func (h *AdvisorHandler) bind(c *gin.Context) (dto.AdviseRequest, models.Rating, bool) {
	var req dto.AdviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid advisor payload"))
		return req, "", false
	}
	target := models.Rating(req.TargetRating)
	if !target.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown target rating "+req.TargetRating))
		return req, "", false
	}
	return req, target, true
}
