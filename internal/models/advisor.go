package models

// GapPriority ranks how far a dimension sits above a target ceiling.
type GapPriority string

const (
	PriorityCritical GapPriority = "critical"
	PriorityHigh     GapPriority = "high"
	PriorityMedium   GapPriority = "medium"
	PriorityLow      GapPriority = "low"
)

// DimensionGap is one dimension whose aggregate score exceeds the
// target tier's ceiling.
type DimensionGap struct {
	Dimension Dimension   `json:"dimension"`
	Current   float64     `json:"current"`
	Ceiling   float64     `json:"ceiling"`
	Gap       float64     `json:"gap"`
	Priority  GapPriority `json:"priority"`
}

// SceneIssue points at a scene driving a gap, with concrete edit
// suggestions.
type SceneIssue struct {
	SceneIndex  int       `json:"scene_id"`
	Heading     string    `json:"heading"`
	Dimension   Dimension `json:"dimension"`
	Score       float64   `json:"score"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Suggestions []string  `json:"suggestions"`
}

// SuggestedAction maps a gap to a what-if modification the caller can
// run directly.
type SuggestedAction struct {
	Type        string    `json:"type"`
	Dimension   Dimension `json:"dimension"`
	Description string    `json:"description"`
}

// AdvisorReport answers "how do I get this script to the target
// rating".
type AdvisorReport struct {
	ScriptID          string            `json:"script_id,omitempty"`
	CurrentRating     Rating            `json:"current_rating"`
	TargetRating      Rating            `json:"target_rating"`
	AlreadySatisfied  bool              `json:"already_satisfied"`
	Achievable        bool              `json:"achievable"`
	EstimatedEffort   string            `json:"estimated_effort"`
	Gaps              []DimensionGap    `json:"gaps"`
	ProblematicScenes []SceneIssue      `json:"problematic_scenes"`
	SuggestedActions  []SuggestedAction `json:"suggested_actions"`
	NearestAchievable Rating            `json:"nearest_achievable"`
}
