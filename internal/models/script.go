package models

import (
	"strings"
	"time"
)

// Script is the unit of analysis: one screenplay and its latest rating.
type Script struct {
	ID              string        `db:"id" json:"id"`
	Title           string        `db:"title" json:"title"`
	Content         string        `db:"content" json:"content"`
	PredictedRating *Rating       `db:"predicted_rating" json:"predicted_rating,omitempty"`
	AggScores       FeatureVector `db:"agg_scores" json:"agg_scores,omitempty"`
	ModelVersion    *string       `db:"model_version" json:"model_version,omitempty"`
	TotalScenes     *int          `db:"total_scenes" json:"total_scenes,omitempty"`
	CurrentVersion  int           `db:"current_version" json:"current_version"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

// Scene is a contiguous script segment beginning at a recognized heading.
// Scenes are immutable once scored within a single pipeline run.
type Scene struct {
	Index   int    `json:"scene_id"`
	Heading string `json:"heading"`
	Body    string `json:"body"`

	Scores          FeatureVector `json:"scores,omitempty"`
	Weight          float64       `json:"weight"`
	Excerpt         string        `json:"excerpt,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`

	// Metadata filled by external capabilities, used by strategies.
	SceneType  string   `json:"scene_type,omitempty"`
	Characters []string `json:"characters,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// Text renders the scene back to script form, heading first. A synthetic
// scene (no recognized heading) renders as its body alone.
func (s Scene) Text() string {
	if s.Heading == "" {
		return s.Body
	}
	if s.Body == "" {
		return s.Heading
	}
	return s.Heading + "\n" + s.Body
}

// ReassembleScript joins scenes back into full script text.
func ReassembleScript(scenes []Scene) string {
	parts := make([]string, 0, len(scenes))
	for _, s := range scenes {
		parts = append(parts, s.Text())
	}
	return strings.Join(parts, "\n\n")
}

// ExcerptInfo is a user-facing evidence snippet from a high-impact scene.
type ExcerptInfo struct {
	SceneIndex int     `json:"scene_id"`
	Heading    string  `json:"heading"`
	Snippet    string  `json:"snippet"`
	Weight     float64 `json:"weight"`
}

// RatingResult is the full output of one pipeline run.
type RatingResult struct {
	Rating       Rating        `json:"rating"`
	Scores       FeatureVector `json:"scores"`
	Reasons      []string      `json:"reasons"`
	Evidence     []ExcerptInfo `json:"evidence"`
	Scenes       []Scene       `json:"scenes"`
	TotalScenes  int           `json:"total_scenes"`
	ModelVersion string        `json:"model_version"`
}

// RatingLog records one historical rating outcome for a script.
type RatingLog struct {
	ID              string    `db:"id" json:"id"`
	ScriptID        string    `db:"script_id" json:"script_id"`
	PredictedRating Rating    `db:"predicted_rating" json:"predicted_rating"`
	Reasons         []byte    `db:"reasons" json:"-"`
	ModelVersion    string    `db:"model_version" json:"model_version"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Pagination mirrors the list-endpoint metadata contract.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
