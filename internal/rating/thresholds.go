package rating

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cinerate/cinerate-api/internal/models"
)

// Policy maps aggregate score vectors to rating tiers through a table
// of per-dimension ceilings. The table is policy data: defaults below
// can be replaced wholesale from configuration, as long as Validate
// passes.
type Policy struct {
	Ceilings map[models.Rating]models.FeatureVector `json:"ceilings"`
}

// DefaultPolicy returns the built-in threshold table.
func DefaultPolicy() Policy {
	return Policy{Ceilings: map[models.Rating]models.FeatureVector{
		models.Rating0: {
			models.DimViolence: 0, models.DimGore: 0, models.DimSexAct: 0,
			models.DimNudity: 0, models.DimProfanity: 0, models.DimDrugs: 0,
			models.DimChildRisk: 0,
		},
		models.Rating6: {
			models.DimViolence: 0.2, models.DimGore: 0, models.DimSexAct: 0,
			models.DimNudity: 0, models.DimProfanity: 0.1, models.DimDrugs: 0,
			models.DimChildRisk: 0.1,
		},
		models.Rating12: {
			models.DimViolence: 0.4, models.DimGore: 0.2, models.DimSexAct: 0,
			models.DimNudity: 0.2, models.DimProfanity: 0.3, models.DimDrugs: 0.2,
			models.DimChildRisk: 0.2,
		},
		models.Rating16: {
			models.DimViolence: 0.6, models.DimGore: 0.4, models.DimSexAct: 0.3,
			models.DimNudity: 0.5, models.DimProfanity: 0.6, models.DimDrugs: 0.5,
			models.DimChildRisk: 0.4,
		},
		models.Rating18: {
			models.DimViolence: 1, models.DimGore: 1, models.DimSexAct: 1,
			models.DimNudity: 1, models.DimProfanity: 1, models.DimDrugs: 1,
			models.DimChildRisk: 1,
		},
	}}
}

// LoadPolicy reads a threshold table from a JSON file, falling back to
// the default table when path is empty.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read thresholds file: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse thresholds file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the shape and monotonicity contract: every tier
// carries every dimension, ceilings never decrease as tiers get more
// permissive toward 18+, and the 18+ ceiling admits any score.
func (p Policy) Validate() error {
	for _, tier := range models.RatingOrder {
		ceil, ok := p.Ceilings[tier]
		if !ok {
			return fmt.Errorf("policy missing tier %q", tier)
		}
		if err := ceil.Validate(); err != nil {
			return fmt.Errorf("tier %q: %w", tier, err)
		}
	}
	for i := 1; i < len(models.RatingOrder); i++ {
		lower, higher := models.RatingOrder[i-1], models.RatingOrder[i]
		for _, d := range models.Dimensions {
			if p.Ceilings[higher][d] < p.Ceilings[lower][d] {
				return fmt.Errorf("ceiling for %q decreases from tier %q to %q", d, lower, higher)
			}
		}
	}
	for _, d := range models.Dimensions {
		if p.Ceilings[models.Rating18][d] < 1 {
			return fmt.Errorf("tier %q must admit any %q score", models.Rating18, d)
		}
	}
	return nil
}

// DimensionTier returns the lowest tier whose ceiling for d is not
// exceeded by score.
func (p Policy) DimensionTier(d models.Dimension, score float64) models.Rating {
	for _, tier := range models.RatingOrder {
		if score <= p.Ceilings[tier][d] {
			return tier
		}
	}
	return models.Rating18
}

// TierFor maps an aggregate vector to the most restrictive tier any
// dimension demands. The mapping is monotonic: raising a score can only
// raise the tier.
func (p Policy) TierFor(v models.FeatureVector) models.Rating {
	overall := models.Rating0
	for _, d := range models.Dimensions {
		overall = models.MaxRating(overall, p.DimensionTier(d, v[d]))
	}
	return overall
}

// Ceiling returns the ceiling for dimension d at the given tier.
func (p Policy) Ceiling(tier models.Rating, d models.Dimension) float64 {
	return p.Ceilings[tier][d]
}
