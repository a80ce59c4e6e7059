package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cinerate/cinerate-api/internal/models"
)

// JobRepository persists asynchronous rating jobs.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, script_id, state, result_rating, result_scores, error_code, error_message, created_at, started_at, finished_at`

// Create inserts a new pending job.
func (r *JobRepository) Create(ctx context.Context, scriptID string) (*models.RatingJob, error) {
	job := &models.RatingJob{
		ID:        uuid.NewString(),
		ScriptID:  scriptID,
		State:     models.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO rating_jobs (id, script_id, state, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.ScriptID, job.State, job.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// GetByID fetches one job, nil when absent.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.RatingJob, error) {
	const query = `SELECT ` + jobColumns + ` FROM rating_jobs WHERE id = $1`
	var job models.RatingJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// MarkRunning moves a pending job to RUNNING. The state predicate in
// the WHERE clause makes the transition atomic under concurrent
// workers.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE rating_jobs SET state = $1, started_at = $2 WHERE id = $3 AND state = $4`
	res, err := r.db.ExecContext(ctx, query, models.JobRunning, time.Now().UTC(), id, models.JobPending)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkSucceeded finishes a running job with its rating result.
func (r *JobRepository) MarkSucceeded(ctx context.Context, id string, rating models.Rating, scores models.FeatureVector) error {
	const query = `UPDATE rating_jobs SET state = $1, result_rating = $2, result_scores = $3, finished_at = $4 WHERE id = $5 AND state = $6`
	res, err := r.db.ExecContext(ctx, query, models.JobSucceeded, rating, scores, time.Now().UTC(), id, models.JobRunning)
	if err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkFailed finishes a running job with a typed error. Failed jobs
// stay failed; there is no retry path.
func (r *JobRepository) MarkFailed(ctx context.Context, id, code, message string) error {
	const query = `UPDATE rating_jobs SET state = $1, error_code = $2, error_message = $3, finished_at = $4 WHERE id = $5 AND state = $6`
	res, err := r.db.ExecContext(ctx, query, models.JobFailed, code, message, time.Now().UTC(), id, models.JobRunning)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindActiveByScript returns a script's PENDING or RUNNING job, nil
// when none is in flight.
func (r *JobRepository) FindActiveByScript(ctx context.Context, scriptID string) (*models.RatingJob, error) {
	const query = `SELECT ` + jobColumns + ` FROM rating_jobs WHERE script_id = $1 AND state IN ($2, $3) ORDER BY created_at DESC LIMIT 1`
	var job models.RatingJob
	if err := r.db.GetContext(ctx, &job, query, scriptID, models.JobPending, models.JobRunning); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active job: %w", err)
	}
	return &job, nil
}

// ListByScript returns a script's jobs, newest first.
func (r *JobRepository) ListByScript(ctx context.Context, scriptID string, limit int) ([]models.RatingJob, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	const query = `SELECT ` + jobColumns + ` FROM rating_jobs WHERE script_id = $1 ORDER BY created_at DESC LIMIT $2`
	var jobs []models.RatingJob
	if err := r.db.SelectContext(ctx, &jobs, query, scriptID, limit); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
