package rating

import (
	"context"
	"fmt"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// Pipeline wires segmentation, scoring and aggregation into the single
// deterministic path every rating in the system flows through. The
// what-if orchestrator reuses the same pipeline on transformed scene
// sets, which is what makes before/after ratings directly comparable.
type Pipeline struct {
	scorer     Scorer
	aggregator *Aggregator
	maxScenes  int
}

// NewPipeline constructs the pipeline.
func NewPipeline(scorer Scorer, aggregator *Aggregator, maxScenes int) *Pipeline {
	if maxScenes <= 0 {
		maxScenes = 1000
	}
	return &Pipeline{scorer: scorer, aggregator: aggregator, maxScenes: maxScenes}
}

// Run rates raw script text end to end.
func (p *Pipeline) Run(ctx context.Context, text string) (*models.RatingResult, error) {
	scenes, err := Segment(text)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(ctx, scenes)
}

// Evaluate scores and aggregates an already-segmented scene set. An
// empty set (every scene removed by a modification) aggregates to the
// floor tier with an all-zero vector rather than an error.
func (p *Pipeline) Evaluate(ctx context.Context, scenes []models.Scene) (*models.RatingResult, error) {
	if len(scenes) == 0 {
		return &models.RatingResult{
			Rating:       models.Rating0,
			Scores:       models.ZeroVector(),
			ModelVersion: p.scorer.ModelVersion(),
		}, nil
	}
	if len(scenes) > p.maxScenes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("script has %d scenes, limit is %d", len(scenes), p.maxScenes))
	}

	scored, err := p.ScoreScenes(ctx, scenes)
	if err != nil {
		return nil, err
	}

	result, err := p.aggregator.Aggregate(scored)
	if err != nil {
		return nil, err
	}
	result.ModelVersion = p.scorer.ModelVersion()
	return result, nil
}

// ScoreScenes fills each scene's feature vector from the scoring
// capability. Scenes come back in input order.
func (p *Pipeline) ScoreScenes(ctx context.Context, scenes []models.Scene) ([]models.Scene, error) {
	scored := make([]models.Scene, len(scenes))
	for i, scene := range scenes {
		vec, err := p.scorer.Score(ctx, scene.Text())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code,
				appErrors.ErrExternalService.Status, fmt.Sprintf("scoring scene %d failed", scene.Index))
		}
		if err := vec.Validate(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code,
				appErrors.ErrExternalService.Status, fmt.Sprintf("scorer returned an invalid vector for scene %d", scene.Index))
		}
		scene.Scores = vec
		scored[i] = scene
	}
	return scored, nil
}

// ModelVersion exposes the underlying scorer's version tag.
func (p *Pipeline) ModelVersion() string {
	return p.scorer.ModelVersion()
}
