package dto

import (
	"encoding/json"
	"time"

	"github.com/cinerate/cinerate-api/internal/models"
)

// CreateScriptRequest registers a new script.
type CreateScriptRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// RateTextRequest rates raw text without storing it.
type RateTextRequest struct {
	Content string `json:"content" validate:"required"`
}

// WhatIfRequest runs a modification batch. Content is only used on the
// ad-hoc endpoint; the script-scoped endpoint ignores it.
type WhatIfRequest struct {
	Content       string                `json:"content,omitempty"`
	Modifications []models.Modification `json:"modifications"`
}

// AdviseRequest asks how to reach a target rating.
type AdviseRequest struct {
	Content      string `json:"content,omitempty"`
	TargetRating string `json:"target_rating" validate:"required"`
}

// SnapshotVersionRequest creates a new script version.
type SnapshotVersionRequest struct {
	ChangeDescription string `json:"change_description,omitempty" validate:"max=500"`
}

// ScriptListQuery narrows script listings.
type ScriptListQuery struct {
	Search   string `form:"search"`
	Rating   string `form:"rating"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// RatingLogItem is one history entry with reasons decoded.
type RatingLogItem struct {
	ID              string        `json:"id"`
	PredictedRating models.Rating `json:"predicted_rating"`
	Reasons         []string      `json:"reasons"`
	ModelVersion    string        `json:"model_version"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NewRatingLogItem decodes the stored reasons payload.
func NewRatingLogItem(log models.RatingLog) RatingLogItem {
	item := RatingLogItem{
		ID:              log.ID,
		PredictedRating: log.PredictedRating,
		Reasons:         []string{},
		ModelVersion:    log.ModelVersion,
		CreatedAt:       log.CreatedAt,
	}
	if len(log.Reasons) > 0 {
		_ = json.Unmarshal(log.Reasons, &item.Reasons)
	}
	return item
}

// JobHandle is the accepted-job response for async rating.
type JobHandle struct {
	JobID    string          `json:"job_id"`
	ScriptID string          `json:"script_id"`
	State    models.JobState `json:"state"`
}
