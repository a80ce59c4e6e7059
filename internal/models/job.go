package models

import "time"

// JobState is the lifecycle state of an asynchronous rating job.
type JobState string

const (
	JobPending   JobState = "PENDING"
	JobRunning   JobState = "RUNNING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// CanTransition enforces the PENDING→RUNNING→{SUCCEEDED,FAILED} machine.
// Jobs are never reopened and never cancelled mid-flight.
func (s JobState) CanTransition(to JobState) bool {
	switch s {
	case JobPending:
		return to == JobRunning
	case JobRunning:
		return to == JobSucceeded || to == JobFailed
	default:
		return false
	}
}

// RatingJob tracks one asynchronous rating request.
type RatingJob struct {
	ID           string        `db:"id" json:"id"`
	ScriptID     string        `db:"script_id" json:"script_id"`
	State        JobState      `db:"state" json:"state"`
	ResultRating *Rating       `db:"result_rating" json:"result_rating,omitempty"`
	ResultScores FeatureVector `db:"result_scores" json:"result_scores,omitempty"`
	ErrorCode    *string       `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	StartedAt    *time.Time    `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finished_at,omitempty"`
}
