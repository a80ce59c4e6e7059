package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinerate/cinerate-api/internal/dto"
	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/pkg/response"
)

type jobService interface {
	Enqueue(ctx context.Context, scriptID string) (*models.RatingJob, error)
	Get(ctx context.Context, id string) (*models.RatingJob, error)
	ListByScript(ctx context.Context, scriptID string, limit int) ([]models.RatingJob, error)
}

// JobHandler exposes async rating job endpoints.
type JobHandler struct {
	service jobService
}

// NewJobHandler builds a new handler.
func NewJobHandler(service jobService) *JobHandler {
	return &JobHandler{service: service}
}

// Enqueue godoc
// @Summary Submit an async rating job for a script
// @Tags Jobs
// @Produce json
// @Param id path string true "Script ID"
// @Success 202 {object} response.Envelope
// @Router /scripts/{id}/jobs [post]
func (h *JobHandler) Enqueue(c *gin.Context) {
	job, err := h.service.Enqueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.JobHandle{JobID: job.ID, ScriptID: job.ScriptID, State: job.State})
}

// Get godoc
// @Summary Get job status and result
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// ListByScript godoc
// @Summary List rating jobs for a script, newest first
// @Tags Jobs
// @Produce json
// @Param id path string true "Script ID"
// @Success 200 {object} response.Envelope
// @Router /scripts/{id}/jobs [get]
func (h *JobHandler) ListByScript(c *gin.Context) {
	jobs, err := h.service.ListByScript(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}
