package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/rating"
	"github.com/cinerate/cinerate-api/internal/strategy"
)

type scriptReader interface {
	GetScript(ctx context.Context, id string) (*models.Script, error)
}

// WhatIfService answers "what would the rating be if" questions. It
// never mutates the stored script: modifications run on an in-memory
// scene snapshot and both sides of the comparison come from the same
// pipeline.
type WhatIfService struct {
	scripts    scriptReader
	pipeline   *rating.Pipeline
	registry   *strategy.Registry
	extractor  capability.EntityExtractor
	classifier capability.SceneClassifier
	logger     *zap.Logger
}

// NewWhatIfService constructs a WhatIfService.
func NewWhatIfService(scripts scriptReader, pipeline *rating.Pipeline, registry *strategy.Registry, extractor capability.EntityExtractor, classifier capability.SceneClassifier, logger *zap.Logger) *WhatIfService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatIfService{
		scripts:    scripts,
		pipeline:   pipeline,
		registry:   registry,
		extractor:  extractor,
		classifier: classifier,
		logger:     logger,
	}
}

// SimulateScript runs a modification batch against a stored script.
func (s *WhatIfService) SimulateScript(ctx context.Context, scriptID string, mods []models.Modification) (*models.WhatIfResult, error) {
	script, err := s.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	return s.SimulateText(ctx, script.Content, mods)
}

// SimulateText runs a modification batch against raw script text. An
// empty batch is legal and must reproduce the baseline exactly.
func (s *WhatIfService) SimulateText(ctx context.Context, text string, mods []models.Modification) (*models.WhatIfResult, error) {
	if err := s.registry.ValidateBatch(mods); err != nil {
		return nil, err
	}

	scenes, err := rating.Segment(text)
	if err != nil {
		return nil, err
	}

	baseline, err := s.pipeline.Evaluate(ctx, scenes)
	if err != nil {
		return nil, err
	}

	sc := s.buildContext(ctx, scenes)
	modified, results := s.registry.ApplyBatch(ctx, scenes, mods, sc)

	after, err := s.pipeline.Evaluate(ctx, modified)
	if err != nil {
		return nil, err
	}

	result := &models.WhatIfResult{
		OriginalRating: baseline.Rating,
		ModifiedRating: after.Rating,
		OriginalScores: baseline.Scores,
		ModifiedScores: after.Scores,
		Results:        results,
		RatingChanged:  baseline.Rating != after.Rating,
		Explanation:    buildExplanation(baseline, after, results),
		ModifiedScript: models.ReassembleScript(modified),
	}
	return result, nil
}

// buildContext runs the entity and classification capabilities once
// over the baseline scenes. Capability failures degrade to an empty
// context; strategies that need it will then report their own errors.
func (s *WhatIfService) buildContext(ctx context.Context, scenes []models.Scene) capability.ScriptContext {
	sc := capability.ScriptContext{}
	if s.extractor != nil {
		entities, err := s.extractor.ExtractEntities(ctx, scenes)
		if err != nil {
			s.logger.Warn("entity extraction failed", zap.Error(err))
		} else {
			sc.Entities = entities
		}
	}
	if s.classifier != nil {
		classes, err := s.classifier.ClassifyScenes(ctx, scenes)
		if err != nil {
			s.logger.Warn("scene classification failed", zap.Error(err))
		} else {
			sc.SceneTypes = make(map[int]capability.SceneClassification, len(classes))
			for i, class := range classes {
				if i < len(scenes) {
					sc.SceneTypes[scenes[i].Index] = class
				}
			}
		}
	}
	return sc
}

// buildExplanation summarises the before/after comparison in prose.
func buildExplanation(before, after *models.RatingResult, results []models.ModificationResult) string {
	var b strings.Builder

	applied := 0
	failed := 0
	for _, r := range results {
		if r.Error == "" {
			applied++
		} else {
			failed++
		}
	}

	switch {
	case before.Rating == after.Rating:
		fmt.Fprintf(&b, "Rating unchanged at %s.", before.Rating)
	case after.Rating.StricterThan(before.Rating):
		fmt.Fprintf(&b, "Rating worsened from %s to %s.", before.Rating, after.Rating)
	default:
		fmt.Fprintf(&b, "Rating improved from %s to %s.", before.Rating, after.Rating)
	}

	for _, d := range models.Dimensions {
		delta := after.Scores[d] - before.Scores[d]
		if delta <= -0.05 {
			fmt.Fprintf(&b, " %s dropped from %.2f to %.2f.", d, before.Scores[d], after.Scores[d])
		} else if delta >= 0.05 {
			fmt.Fprintf(&b, " %s rose from %.2f to %.2f.", d, before.Scores[d], after.Scores[d])
		}
	}

	if failed > 0 {
		fmt.Fprintf(&b, " %d of %d modifications failed and were skipped.", failed, applied+failed)
	}
	return b.String()
}
