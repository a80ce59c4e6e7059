package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/export"
)

type ratingReader interface {
	GetScript(ctx context.Context, id string) (*models.Script, error)
	RateScript(ctx context.Context, id string) (*models.RatingResult, error)
}

// ExportService renders rating reports for download. The PDF report
// re-runs the pipeline so the document always reflects the script's
// present content, not a stale stored rating.
type ExportService struct {
	rater  ratingReader
	pdf    *export.PDFExporter
	csv    *export.CSVExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(rater ratingReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		rater:  rater,
		pdf:    export.NewPDFExporter(),
		csv:    export.NewCSVExporter(),
		logger: logger,
	}
}

// RatingReportPDF renders a script's full rating report.
func (s *ExportService) RatingReportPDF(ctx context.Context, scriptID string) ([]byte, string, error) {
	script, err := s.rater.GetScript(ctx, scriptID)
	if err != nil {
		return nil, "", err
	}
	result, err := s.rater.RateScript(ctx, scriptID)
	if err != nil {
		return nil, "", err
	}

	report := export.Report{
		Title: fmt.Sprintf("Age Rating Report: %s", script.Title),
		Summary: []export.SummaryLine{
			{Label: "Predicted rating", Value: string(result.Rating)},
			{Label: "Model version", Value: result.ModelVersion},
			{Label: "Total scenes", Value: fmt.Sprintf("%d", result.TotalScenes)},
			{Label: "Reasons", Value: strings.Join(result.Reasons, "; ")},
		},
		Tables: []export.ReportTable{
			{Title: "Dimension scores", Data: scoresDataset(result.Scores)},
			{Title: "Evidence", Data: evidenceDataset(result.Evidence)},
		},
	}

	payload, err := s.pdf.RenderReport(report)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render rating report")
	}
	filename := fmt.Sprintf("rating-report-%s.pdf", scriptID)
	return payload, filename, nil
}

// SceneScoresCSV renders per-scene scores for spreadsheet analysis.
func (s *ExportService) SceneScoresCSV(ctx context.Context, scriptID string) ([]byte, string, error) {
	result, err := s.rater.RateScript(ctx, scriptID)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"scene_id", "heading", "weight"}
	for _, d := range models.Dimensions {
		headers = append(headers, string(d))
	}

	rows := make([]map[string]string, 0, len(result.Scenes))
	for _, scene := range result.Scenes {
		row := map[string]string{
			"scene_id": fmt.Sprintf("%d", scene.Index),
			"heading":  scene.Heading,
			"weight":   fmt.Sprintf("%.3f", scene.Weight),
		}
		for _, d := range models.Dimensions {
			row[string(d)] = fmt.Sprintf("%.3f", scene.Scores[d])
		}
		rows = append(rows, row)
	}

	payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render scene scores")
	}
	filename := fmt.Sprintf("scene-scores-%s.csv", scriptID)
	return payload, filename, nil
}

func scoresDataset(scores models.FeatureVector) export.Dataset {
	rows := make([]map[string]string, 0, len(models.Dimensions))
	for _, d := range models.Dimensions {
		rows = append(rows, map[string]string{
			"dimension": string(d),
			"score":     fmt.Sprintf("%.3f", scores[d]),
		})
	}
	return export.Dataset{Headers: []string{"dimension", "score"}, Rows: rows}
}

func evidenceDataset(evidence []models.ExcerptInfo) export.Dataset {
	rows := make([]map[string]string, 0, len(evidence))
	for _, e := range evidence {
		rows = append(rows, map[string]string{
			"scene_id": fmt.Sprintf("%d", e.SceneIndex),
			"heading":  e.Heading,
			"weight":   fmt.Sprintf("%.3f", e.Weight),
			"snippet":  e.Snippet,
		})
	}
	return export.Dataset{Headers: []string{"scene_id", "heading", "weight", "snippet"}, Rows: rows}
}
