package rating

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

const defaultEvidenceLimit = 5

// Aggregator folds per-scene feature vectors into a script-level score
// vector and a rating tier. The per-dimension aggregate is the maximum
// across scenes: ratings are driven by worst-case scenes, a single
// severe scene must not be diluted by many mild ones.
type Aggregator struct {
	policy        Policy
	evidenceLimit int
}

// NewAggregator builds an aggregator over the given policy.
func NewAggregator(policy Policy, evidenceLimit int) *Aggregator {
	if evidenceLimit <= 0 {
		evidenceLimit = defaultEvidenceLimit
	}
	return &Aggregator{policy: policy, evidenceLimit: evidenceLimit}
}

// Aggregate computes the aggregate vector, the rating tier, per-scene
// impact weights and evidence excerpts. Every scene must already carry
// a valid feature vector. An empty scene set is a ParsingError: the
// segmenter's synthetic-scene fallback means it is never produced by
// the pipeline itself.
func (a *Aggregator) Aggregate(scenes []models.Scene) (*models.RatingResult, error) {
	if len(scenes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrParsing, "no scenes to aggregate")
	}

	weighted := make([]models.Scene, len(scenes))
	agg := models.ZeroVector()

	for i, scene := range scenes {
		if err := scene.Scores.Validate(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrParsing.Code, appErrors.ErrParsing.Status,
				fmt.Sprintf("scene %d has an invalid feature vector", scene.Index))
		}

		_, peak := scene.Scores.Max()
		scene.Weight = impactWeight(peak)
		scene.Excerpt = snippet(scene)
		weighted[i] = scene

		for _, d := range models.Dimensions {
			if scene.Scores[d] > agg[d] {
				agg[d] = scene.Scores[d]
			}
		}
	}

	tier := a.policy.TierFor(agg)

	var reasons []string
	for _, d := range models.Dimensions {
		dimTier := a.policy.DimensionTier(d, agg[d])
		if dimTier != models.Rating0 {
			reasons = append(reasons, fmt.Sprintf("%s score %.2f requires %s", d, agg[d], dimTier))
		}
	}

	return &models.RatingResult{
		Rating:      tier,
		Scores:      agg,
		Reasons:     reasons,
		Evidence:    a.evidence(weighted),
		Scenes:      weighted,
		TotalScenes: len(weighted),
	}, nil
}

// impactWeight maps a scene's peak dimension score to its impact
// weight. Monotone increasing and bounded to (0,1]; used for evidence
// ranking only, never for aggregation.
func impactWeight(peak float64) float64 {
	return 0.25 + 0.75*peak
}

// evidence picks up to the configured number of excerpts from the
// highest-weighted scenes. Ties break on scene order so output is
// stable.
func (a *Aggregator) evidence(scenes []models.Scene) []models.ExcerptInfo {
	ranked := make([]models.Scene, len(scenes))
	copy(ranked, scenes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	limit := a.evidenceLimit
	if limit > len(ranked) {
		limit = len(ranked)
	}

	excerpts := make([]models.ExcerptInfo, 0, limit)
	for _, scene := range ranked[:limit] {
		excerpts = append(excerpts, models.ExcerptInfo{
			SceneIndex: scene.Index,
			Heading:    scene.Heading,
			Snippet:    scene.Excerpt,
			Weight:     scene.Weight,
		})
	}
	return excerpts
}

func snippet(scene models.Scene) string {
	text := strings.TrimSpace(scene.Body)
	if text == "" {
		text = scene.Heading
	}
	if runes := []rune(text); len(runes) > 160 {
		text = string(runes[:160])
	}
	return text
}
