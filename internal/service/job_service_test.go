package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/jobs"
)

type stubJobStore struct {
	mu       sync.Mutex
	jobs     map[string]*models.RatingJob
	sequence int
	done     chan string
}

func newStubJobStore() *stubJobStore {
	return &stubJobStore{jobs: map[string]*models.RatingJob{}, done: make(chan string, 8)}
}

func (s *stubJobStore) Create(_ context.Context, scriptID string) (*models.RatingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	job := &models.RatingJob{ID: "job-1", ScriptID: scriptID, State: models.JobPending}
	if s.sequence > 1 {
		job.ID = "job-2"
	}
	s.jobs[job.ID] = job
	return job, nil
}

func (s *stubJobStore) GetByID(_ context.Context, id string) (*models.RatingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, nil
}

func (s *stubJobStore) MarkRunning(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[id]
	if job == nil || job.State != models.JobPending {
		return assert.AnError
	}
	job.State = models.JobRunning
	return nil
}

func (s *stubJobStore) MarkSucceeded(_ context.Context, id string, rating models.Rating, scores models.FeatureVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[id]
	if job == nil || job.State != models.JobRunning {
		return assert.AnError
	}
	job.State = models.JobSucceeded
	job.ResultRating = &rating
	job.ResultScores = scores
	s.done <- id
	return nil
}

func (s *stubJobStore) MarkFailed(_ context.Context, id, code, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[id]
	if job == nil || job.State != models.JobRunning {
		return assert.AnError
	}
	job.State = models.JobFailed
	job.ErrorCode = &code
	job.ErrorMessage = &message
	s.done <- id
	return nil
}

func (s *stubJobStore) FindActiveByScript(_ context.Context, scriptID string) (*models.RatingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ScriptID == scriptID && !job.State.Terminal() {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubJobStore) ListByScript(_ context.Context, scriptID string, _ int) ([]models.RatingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RatingJob{}
	for _, job := range s.jobs {
		if job.ScriptID == scriptID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *stubJobStore) waitDone(t *testing.T) string {
	t.Helper()
	select {
	case id := <-s.done:
		return id
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for job to finish")
		return ""
	}
}

type stubRater struct {
	script *models.Script
	err    error
	result *models.RatingResult
}

func (s *stubRater) GetScript(_ context.Context, id string) (*models.Script, error) {
	if s.script == nil || s.script.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return s.script, nil
}

func (s *stubRater) RateScript(_ context.Context, _ string) (*models.RatingResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestJobEnqueueAndComplete(t *testing.T) {
	store := newStubJobStore()
	rater := &stubRater{
		script: &models.Script{ID: "script-1"},
		result: &models.RatingResult{Rating: models.Rating12, Scores: models.ZeroVector()},
	}
	svc := NewJobService(store, rater, nil, JobServiceConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Enqueue(context.Background(), "script-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.State)

	store.waitDone(t)
	finished, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, finished.State)
	require.NotNil(t, finished.ResultRating)
	assert.Equal(t, models.Rating12, *finished.ResultRating)
}

func TestJobEnqueueConflictWhileActive(t *testing.T) {
	store := newStubJobStore()
	rater := &stubRater{script: &models.Script{ID: "script-1"}}
	svc := NewJobService(store, rater, nil, JobServiceConfig{Workers: 1})

	// Seed an active job without starting workers.
	_, err := store.Create(context.Background(), "script-1")
	require.NoError(t, err)

	_, err = svc.Enqueue(context.Background(), "script-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict))
}

func TestJobEnqueueUnknownScript(t *testing.T) {
	svc := NewJobService(newStubJobStore(), &stubRater{}, nil, JobServiceConfig{})
	_, err := svc.Enqueue(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestJobFailureRecordsTypedError(t *testing.T) {
	store := newStubJobStore()
	rater := &stubRater{
		script: &models.Script{ID: "script-1"},
		err:    appErrors.Clone(appErrors.ErrExternalService, "scorer unreachable"),
	}
	svc := NewJobService(store, rater, nil, JobServiceConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Enqueue(context.Background(), "script-1")
	require.NoError(t, err)

	store.waitDone(t)
	finished, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, finished.State)
	require.NotNil(t, finished.ErrorCode)
	assert.Equal(t, appErrors.ErrExternalService.Code, *finished.ErrorCode)
}

func TestJobStateMachine(t *testing.T) {
	assert.True(t, models.JobPending.CanTransition(models.JobRunning))
	assert.True(t, models.JobRunning.CanTransition(models.JobSucceeded))
	assert.True(t, models.JobRunning.CanTransition(models.JobFailed))
	assert.False(t, models.JobPending.CanTransition(models.JobSucceeded))
	assert.False(t, models.JobFailed.CanTransition(models.JobRunning))
	assert.False(t, models.JobSucceeded.CanTransition(models.JobRunning))

	queue := jobs.NewQueue("noop", func(context.Context, jobs.Job) error { return nil }, jobs.QueueConfig{})
	assert.Error(t, queue.Enqueue(jobs.Job{ID: "x"}))
}
