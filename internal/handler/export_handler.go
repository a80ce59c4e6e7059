package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinerate/cinerate-api/pkg/response"
)

type exportService interface {
	RatingReportPDF(ctx context.Context, scriptID string) ([]byte, string, error)
	SceneScoresCSV(ctx context.Context, scriptID string) ([]byte, string, error)
}

// ExportHandler serves downloadable rating artifacts.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ReportPDF godoc
// @Summary Download a PDF rating report
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Script ID"
// @Success 200 {file} binary
// @Router /scripts/{id}/export/report.pdf [get]
func (h *ExportHandler) ReportPDF(c *gin.Context) {
	payload, filename, err := h.service.RatingReportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachment(c, payload, filename, "application/pdf")
}

// SceneScoresCSV godoc
// @Summary Download per-scene scores as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Script ID"
// @Success 200 {file} binary
// @Router /scripts/{id}/export/scenes.csv [get]
func (h *ExportHandler) SceneScoresCSV(c *gin.Context) {
	payload, filename, err := h.service.SceneScoresCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachment(c, payload, filename, "text/csv; charset=utf-8")
}

func (h *ExportHandler) attachment(c *gin.Context, payload []byte, filename, mimeType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mimeType, payload)
}
