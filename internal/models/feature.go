package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Dimension names one of the fixed content axes scored per scene.
type Dimension string

const (
	DimViolence  Dimension = "violence"
	DimGore      Dimension = "gore"
	DimSexAct    Dimension = "sex_act"
	DimNudity    Dimension = "nudity"
	DimProfanity Dimension = "profanity"
	DimDrugs     Dimension = "drugs"
	DimChildRisk Dimension = "child_risk"
)

// Dimensions lists every content axis in canonical order. All scoring
// and aggregation iterates this slice so output ordering is stable.
var Dimensions = []Dimension{
	DimViolence,
	DimGore,
	DimSexAct,
	DimNudity,
	DimProfanity,
	DimDrugs,
	DimChildRisk,
}

// FeatureVector maps each content dimension to a score in [0,1].
type FeatureVector map[Dimension]float64

// ZeroVector returns a vector with every dimension present at 0.
func ZeroVector() FeatureVector {
	v := make(FeatureVector, len(Dimensions))
	for _, d := range Dimensions {
		v[d] = 0
	}
	return v
}

// Validate checks that every dimension is present, no extras exist and
// every score lies within [0,1].
func (v FeatureVector) Validate() error {
	if len(v) != len(Dimensions) {
		return fmt.Errorf("feature vector has %d dimensions, want %d", len(v), len(Dimensions))
	}
	for _, d := range Dimensions {
		score, ok := v[d]
		if !ok {
			return fmt.Errorf("feature vector missing dimension %q", d)
		}
		if score < 0 || score > 1 {
			return fmt.Errorf("dimension %q score %.3f out of [0,1]", d, score)
		}
	}
	return nil
}

// Max returns the dimension with the highest score. Ties resolve to the
// earlier dimension in canonical order, keeping the result deterministic.
func (v FeatureVector) Max() (Dimension, float64) {
	best := Dimensions[0]
	bestScore := v[best]
	for _, d := range Dimensions[1:] {
		if v[d] > bestScore {
			best = d
			bestScore = v[d]
		}
	}
	return best, bestScore
}

// Clone returns an independent copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	for d, s := range v {
		out[d] = s
	}
	return out
}

// Value implements driver.Valuer, storing the vector as JSON.
func (v FeatureVector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB columns.
func (v *FeatureVector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("cannot scan %T into FeatureVector", src)
	}
}
