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

type whatIfService interface {
	SimulateScript(ctx context.Context, scriptID string, mods []models.Modification) (*models.WhatIfResult, error)
	SimulateText(ctx context.Context, content string, mods []models.Modification) (*models.WhatIfResult, error)
}

// WhatIfHandler exposes the what-if simulation endpoints.
type WhatIfHandler struct {
	service whatIfService
}

// NewWhatIfHandler builds a new handler.
func NewWhatIfHandler(service whatIfService) *WhatIfHandler {
	return &WhatIfHandler{service: service}
}

// SimulateScript godoc
// @Summary Simulate modifications against a stored script
// @Tags WhatIf
// @Accept json
// @Produce json
// @Param id path string true "Script ID"
// @Param payload body dto.WhatIfRequest true "Modification batch"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/whatif [post]
func (h *WhatIfHandler) SimulateScript(c *gin.Context) {
	var req dto.WhatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid simulation payload"))
		return
	}
	result, err := h.service.SimulateScript(c.Request.Context(), c.Param("id"), req.Modifications)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SimulateText godoc
// @Summary Simulate modifications against raw script text
// @Tags WhatIf
// @Accept json
// @Produce json
// @Param payload body dto.WhatIfRequest true "Script text and modification batch"
// @Success 200 {object} response.Envelope
// @Router /whatif [post]
func (h *WhatIfHandler) SimulateText(c *gin.Context) {
	var req dto.WhatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid simulation payload"))
		return
	}
	if req.Content == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "content is required"))
		return
	}
	result, err := h.service.SimulateText(c.Request.Context(), req.Content, req.Modifications)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
