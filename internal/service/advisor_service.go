package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/rating"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// maxClosableGap is the largest per-dimension gap content edits can
// realistically close without a rewrite.
const maxClosableGap = 0.7

// AdvisorService explains how a script could reach a target rating:
// which dimensions exceed the target ceilings, which scenes drive
// them, and which modifications to try.
type AdvisorService struct {
	scripts  scriptReader
	pipeline *rating.Pipeline
	policy   rating.Policy
	logger   *zap.Logger
}

// NewAdvisorService constructs an AdvisorService.
func NewAdvisorService(scripts scriptReader, pipeline *rating.Pipeline, policy rating.Policy, logger *zap.Logger) *AdvisorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisorService{scripts: scripts, pipeline: pipeline, policy: policy, logger: logger}
}

// AdviseScript builds an advisor report for a stored script.
func (s *AdvisorService) AdviseScript(ctx context.Context, scriptID string, target models.Rating) (*models.AdvisorReport, error) {
	script, err := s.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	report, err := s.AdviseText(ctx, script.Content, target)
	if err != nil {
		return nil, err
	}
	report.ScriptID = scriptID
	return report, nil
}

// AdviseText builds an advisor report for raw script text.
func (s *AdvisorService) AdviseText(ctx context.Context, text string, target models.Rating) (*models.AdvisorReport, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown target rating %q", target))
	}

	result, err := s.pipeline.Run(ctx, text)
	if err != nil {
		return nil, err
	}

	report := &models.AdvisorReport{
		CurrentRating:     result.Rating,
		TargetRating:      target,
		Gaps:              []models.DimensionGap{},
		ProblematicScenes: []models.SceneIssue{},
		SuggestedActions:  []models.SuggestedAction{},
	}

	// Advice only goes downward: a target at or above the current
	// rating has no gap to close and is not a supported request.
	if !result.Rating.StricterThan(target) {
		report.AlreadySatisfied = true
		report.Achievable = false
		report.EstimatedEffort = "none"
		report.NearestAchievable = result.Rating
		return report, nil
	}

	totalGap := 0.0
	achievable := true
	for _, d := range models.Dimensions {
		ceiling := s.policy.Ceiling(target, d)
		current := result.Scores[d]
		if current <= ceiling {
			continue
		}
		gap := current - ceiling
		report.Gaps = append(report.Gaps, models.DimensionGap{
			Dimension: d,
			Current:   current,
			Ceiling:   ceiling,
			Gap:       gap,
			Priority:  gapPriority(gap),
		})
		report.SuggestedActions = append(report.SuggestedActions, suggestedAction(d, gap))
		totalGap += gap
		if gap > maxClosableGap {
			achievable = false
		}
	}

	report.Achievable = achievable
	report.EstimatedEffort = estimatedEffort(totalGap)
	report.ProblematicScenes = s.problematicScenes(result.Scenes, target)
	report.NearestAchievable = s.nearestAchievable(result.Scores, target)
	return report, nil
}

// gapPriority buckets a gap by how hard it pushes past the ceiling.
func gapPriority(gap float64) models.GapPriority {
	switch {
	case gap > 0.5:
		return models.PriorityCritical
	case gap > 0.3:
		return models.PriorityHigh
	case gap > 0.15:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func estimatedEffort(totalGap float64) string {
	switch {
	case totalGap > 1.0:
		return "extensive"
	case totalGap > 0.4:
		return "substantial"
	default:
		return "moderate"
	}
}

// suggestedAction maps a gap to the what-if modification that targets
// its dimension.
func suggestedAction(d models.Dimension, gap float64) models.SuggestedAction {
	intensity := "moderate"
	if gap > 0.3 {
		intensity = "aggressive"
	}

	modType := models.ModReduceContent
	switch d {
	case models.DimViolence:
		modType = models.ModReduceViolence
	case models.DimProfanity:
		modType = models.ModReduceProfanity
	case models.DimGore:
		modType = models.ModReduceGore
	case models.DimSexAct, models.DimNudity:
		modType = models.ModReduceSexual
	case models.DimDrugs:
		modType = models.ModReduceDrugs
	}

	return models.SuggestedAction{
		Type:        modType,
		Dimension:   d,
		Description: fmt.Sprintf("apply %s with %s intensity, or remove the worst scenes for %s", modType, intensity, d),
	}
}

// problematicScenes lists scenes whose own scores exceed the target
// ceilings, worst dimension first per scene.
func (s *AdvisorService) problematicScenes(scenes []models.Scene, target models.Rating) []models.SceneIssue {
	issues := []models.SceneIssue{}
	for _, scene := range scenes {
		for _, d := range models.Dimensions {
			score := scene.Scores[d]
			if score <= s.policy.Ceiling(target, d) {
				continue
			}
			issues = append(issues, models.SceneIssue{
				SceneIndex: scene.Index,
				Heading:    scene.Heading,
				Dimension:  d,
				Score:      score,
				Excerpt:    scene.Excerpt,
				Suggestions: []string{
					fmt.Sprintf("soften %s vocabulary in this scene", d),
					fmt.Sprintf("remove the scene entirely (scene %d)", scene.Index),
				},
			})
		}
	}
	return issues
}

// nearestAchievable walks from the target upward and returns the first
// tier whose ceilings every closable dimension can meet.
func (s *AdvisorService) nearestAchievable(scores models.FeatureVector, target models.Rating) models.Rating {
	for i := target.Index(); i < len(models.RatingOrder); i++ {
		tier := models.RatingOrder[i]
		ok := true
		for _, d := range models.Dimensions {
			if scores[d]-s.policy.Ceiling(tier, d) > maxClosableGap {
				ok = false
				break
			}
		}
		if ok {
			return tier
		}
	}
	return models.Rating18
}
