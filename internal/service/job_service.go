package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/jobs"
)

type jobStore interface {
	Create(ctx context.Context, scriptID string) (*models.RatingJob, error)
	GetByID(ctx context.Context, id string) (*models.RatingJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSucceeded(ctx context.Context, id string, rating models.Rating, scores models.FeatureVector) error
	MarkFailed(ctx context.Context, id, code, message string) error
	FindActiveByScript(ctx context.Context, scriptID string) (*models.RatingJob, error)
	ListByScript(ctx context.Context, scriptID string, limit int) ([]models.RatingJob, error)
}

type ratingRunner interface {
	GetScript(ctx context.Context, id string) (*models.Script, error)
	RateScript(ctx context.Context, id string) (*models.RatingResult, error)
}

type ratingJobPayload struct {
	JobID    string
	ScriptID string
}

// JobService runs ratings asynchronously. One active job per script;
// finished jobs are immutable records. There is no retry and no
// cancellation: a failed job stays failed and the caller submits a new
// one.
type JobService struct {
	store   jobStore
	rater   ratingRunner
	queue   *jobs.Queue
	logger  *zap.Logger
	metrics *MetricsService
}

// JobServiceConfig sizes the worker pool.
type JobServiceConfig struct {
	Workers    int
	BufferSize int
}

// NewJobService constructs a JobService and its queue. Call Start
// before enqueueing.
func NewJobService(store jobStore, rater ratingRunner, logger *zap.Logger, cfg JobServiceConfig) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &JobService{store: store, rater: rater, logger: logger}
	s.queue = jobs.NewQueue("rating", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// WithMetrics attaches job instrumentation. Safe to skip in tests.
func (s *JobService) WithMetrics(metrics *MetricsService) *JobService {
	s.metrics = metrics
	return s
}

// Start launches the worker pool.
func (s *JobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *JobService) Stop() {
	s.queue.Stop()
}

// Enqueue creates a pending job for the script and hands it to the
// workers. A script with a PENDING or RUNNING job rejects new
// submissions with a state conflict.
func (s *JobService) Enqueue(ctx context.Context, scriptID string) (*models.RatingJob, error) {
	if _, err := s.rater.GetScript(ctx, scriptID); err != nil {
		return nil, err
	}

	active, err := s.store.FindActiveByScript(ctx, scriptID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active jobs")
	}
	if active != nil {
		return nil, appErrors.Clone(appErrors.ErrStateConflict,
			fmt.Sprintf("job %s is already %s for this script", active.ID, active.State))
	}

	job, err := s.store.Create(ctx, scriptID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}

	err = s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    "rate_script",
		Payload: ratingJobPayload{JobID: job.ID, ScriptID: scriptID},
	})
	if err != nil {
		// Walk the state machine forward so the orphaned row ends FAILED.
		bg := context.WithoutCancel(ctx)
		if markErr := s.store.MarkRunning(bg, job.ID); markErr == nil {
			markErr = s.failJob(bg, job.ID, appErrors.ErrInternal.Code, "queue unavailable")
			if markErr != nil {
				s.logger.Error("failed to mark unqueued job", zap.String("job_id", job.ID), zap.Error(markErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue job")
	}
	return job, nil
}

// Get fetches one job.
func (s *JobService) Get(ctx context.Context, id string) (*models.RatingJob, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return job, nil
}

// ListByScript returns a script's jobs, newest first.
func (s *JobService) ListByScript(ctx context.Context, scriptID string, limit int) ([]models.RatingJob, error) {
	jobsList, err := s.store.ListByScript(ctx, scriptID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	return jobsList, nil
}

// handle is the worker entrypoint. The pending-to-running transition
// is atomic in the store, so a duplicate delivery runs at most once.
func (s *JobService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ratingJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}

	if err := s.store.MarkRunning(ctx, payload.JobID); err != nil {
		return fmt.Errorf("job %s not in PENDING state: %w", payload.JobID, err)
	}
	s.metrics.JobStarted()

	result, err := s.rater.RateScript(ctx, payload.ScriptID)
	if err != nil {
		typed := appErrors.FromError(err)
		if markErr := s.failJob(ctx, payload.JobID, typed.Code, typed.Message); markErr != nil {
			return markErr
		}
		s.metrics.JobFinished(models.JobFailed)
		return err
	}

	if err := s.store.MarkSucceeded(ctx, payload.JobID, result.Rating, result.Scores); err != nil {
		return fmt.Errorf("mark job %s succeeded: %w", payload.JobID, err)
	}
	s.metrics.JobFinished(models.JobSucceeded)
	return nil
}

func (s *JobService) failJob(ctx context.Context, jobID, code, message string) error {
	if err := s.store.MarkFailed(ctx, jobID, code, message); err != nil {
		return fmt.Errorf("mark job %s failed: %w", jobID, err)
	}
	return nil
}
