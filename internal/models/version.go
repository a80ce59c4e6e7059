package models

import "time"

// ScriptVersion snapshots a script's content and rating at a point in
// time. Exactly one version per script is current at any moment.
type ScriptVersion struct {
	ID                string        `db:"id" json:"id"`
	ScriptID          string        `db:"script_id" json:"script_id"`
	VersionNumber     int           `db:"version_number" json:"version_number"`
	Title             string        `db:"title" json:"title"`
	Content           string        `db:"content" json:"content"`
	PredictedRating   *Rating       `db:"predicted_rating" json:"predicted_rating,omitempty"`
	AggScores         FeatureVector `db:"agg_scores" json:"agg_scores,omitempty"`
	TotalScenes       *int          `db:"total_scenes" json:"total_scenes,omitempty"`
	ChangeDescription *string       `db:"change_description" json:"change_description,omitempty"`
	IsCurrent         bool          `db:"is_current" json:"is_current"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

// VersionComparison summarises the differences between two versions.
type VersionComparison struct {
	From          int                       `json:"from_version"`
	To            int                       `json:"to_version"`
	RatingChanged bool                      `json:"rating_changed"`
	RatingFrom    *Rating                   `json:"rating_from,omitempty"`
	RatingTo      *Rating                   `json:"rating_to,omitempty"`
	ScoreChanges  map[Dimension]ScoreChange `json:"score_changes,omitempty"`
	ScenesDelta   int                       `json:"scenes_delta"`
	LinesChanged  int                       `json:"lines_changed"`
}

// ScoreChange records one dimension moving between versions.
type ScoreChange struct {
	Old   float64 `json:"old"`
	New   float64 `json:"new"`
	Delta float64 `json:"delta"`
}
