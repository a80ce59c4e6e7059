package models

import "encoding/json"

// Supported modification type tags. Unknown tags fail validation before
// any scene is touched.
const (
	ModRemoveScenes    = "remove_scenes"
	ModReduceContent   = "reduce_content"
	ModModifyCharacter = "modify_character"
	ModLLMRewrite      = "llm_rewrite"
	ModReduceViolence  = "reduce_violence"
	ModReduceProfanity = "reduce_profanity"
	ModReduceGore      = "reduce_gore"
	ModReduceSexual    = "reduce_sexual"
	ModReduceDrugs     = "reduce_drugs"
	ModRemoveCharacter = "remove_character"
	ModRenameCharacter = "rename_character"
	ModChangeCharActs  = "change_character_actions"
)

// Modification is a typed, parameterized hypothetical edit. Never
// mutated after creation.
type Modification struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ModificationResult records the outcome of a single modification.
// Failure of one modification never invalidates the batch.
type ModificationResult struct {
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// WhatIfResult compares a script's rating before and after a
// modification batch. Both sides come from the same pipeline.
type WhatIfResult struct {
	OriginalRating Rating               `json:"original_rating"`
	ModifiedRating Rating               `json:"modified_rating"`
	OriginalScores FeatureVector        `json:"original_scores"`
	ModifiedScores FeatureVector        `json:"modified_scores"`
	Results        []ModificationResult `json:"modifications_applied"`
	RatingChanged  bool                 `json:"rating_changed"`
	Explanation    string               `json:"explanation"`
	ModifiedScript string               `json:"modified_script"`
}
