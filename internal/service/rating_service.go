package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/models"
	"github.com/cinerate/cinerate-api/internal/rating"
	"github.com/cinerate/cinerate-api/internal/repository"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
	"github.com/cinerate/cinerate-api/pkg/locks"
)

type scriptStore interface {
	Create(ctx context.Context, title, content string) (*models.Script, error)
	GetByID(ctx context.Context, id string) (*models.Script, error)
	List(ctx context.Context, filter repository.ScriptFilter) ([]models.Script, int, error)
	UpdateRating(ctx context.Context, id string, params repository.RatingUpdateParams) error
	UpdateContent(ctx context.Context, id, content string, currentVersion int) error
	Delete(ctx context.Context, id string) error
	InsertRatingLog(ctx context.Context, log *models.RatingLog) error
	ListRatingLogs(ctx context.Context, scriptID string, limit int) ([]models.RatingLog, error)
}

type ratingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type versionWriter interface {
	Create(ctx context.Context, version *models.ScriptVersion) error
}

// RatingServiceConfig tunes caching behaviour.
type RatingServiceConfig struct {
	CacheTTL time.Duration
}

// RatingService owns script CRUD and the rating workflow. Every rating
// in the system, synchronous or via job, flows through RateScript and
// therefore through the same pipeline.
type RatingService struct {
	scripts  scriptStore
	versions versionWriter
	pipeline *rating.Pipeline
	locker   *locks.KeyedLocker
	cache    ratingCache
	logger   *zap.Logger
	cacheTTL time.Duration
	metrics  *MetricsService
}

// NewRatingService constructs a RatingService. cache may be nil.
func NewRatingService(scripts scriptStore, versions versionWriter, pipeline *rating.Pipeline, locker *locks.KeyedLocker, cache ratingCache, logger *zap.Logger, cfg RatingServiceConfig) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = locks.NewKeyedLocker()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &RatingService{
		scripts:  scripts,
		versions: versions,
		pipeline: pipeline,
		locker:   locker,
		cache:    cache,
		logger:   logger,
		cacheTTL: cfg.CacheTTL,
	}
}

// WithMetrics attaches rating instrumentation. Safe to skip in tests.
func (s *RatingService) WithMetrics(metrics *MetricsService) *RatingService {
	s.metrics = metrics
	return s
}

// CreateScript stores a new script and snapshots it as version 1.
func (s *RatingService) CreateScript(ctx context.Context, title, content string) (*models.Script, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, appErrors.Clone(appErrors.ErrParsing, "script content is empty")
	}

	script, err := s.scripts.Create(ctx, title, content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create script")
	}

	if s.versions != nil {
		version := &models.ScriptVersion{ScriptID: script.ID, Title: title, Content: content}
		if err := s.versions.Create(ctx, version); err != nil {
			s.logger.Warn("failed to snapshot initial version", zap.String("script_id", script.ID), zap.Error(err))
		}
	}
	return script, nil
}

// GetScript fetches a script by ID.
func (s *RatingService) GetScript(ctx context.Context, id string) (*models.Script, error) {
	script, err := s.scripts.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load script")
	}
	if script == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return script, nil
}

// ListScripts returns a filtered page of scripts.
func (s *RatingService) ListScripts(ctx context.Context, filter repository.ScriptFilter) ([]models.Script, int, error) {
	scripts, total, err := s.scripts.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scripts")
	}
	return scripts, total, nil
}

// DeleteScript removes a script and its cached ratings.
func (s *RatingService) DeleteScript(ctx context.Context, id string) error {
	if err := s.scripts.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "script not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete script")
	}
	s.invalidateCache(ctx, id)
	return nil
}

// RateText rates raw text without persisting anything. Used for ad-hoc
// rating requests that never become scripts.
func (s *RatingService) RateText(ctx context.Context, text string) (*models.RatingResult, error) {
	return s.pipeline.Run(ctx, text)
}

// RateScript runs the pipeline over a stored script and persists the
// outcome. Only one rating may run per script at a time; a concurrent
// attempt fails with a state conflict instead of queueing.
func (s *RatingService) RateScript(ctx context.Context, id string) (*models.RatingResult, error) {
	script, err := s.GetScript(ctx, id)
	if err != nil {
		return nil, err
	}

	lockKey := "script:" + id
	if !s.locker.TryAcquire(lockKey) {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "a rating is already running for this script")
	}
	defer s.locker.Release(lockKey)

	if cached, ok := s.cachedResult(ctx, script.Content); ok {
		return cached, nil
	}

	start := time.Now()
	result, err := s.pipeline.Run(ctx, script.Content)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRating(result.Rating, time.Since(start))

	if err := s.persistResult(ctx, script.ID, result); err != nil {
		return nil, err
	}
	s.storeResult(ctx, script.Content, result)
	return result, nil
}

// RatingHistory returns a script's past rating outcomes.
func (s *RatingService) RatingHistory(ctx context.Context, scriptID string, limit int) ([]models.RatingLog, error) {
	if _, err := s.GetScript(ctx, scriptID); err != nil {
		return nil, err
	}
	logs, err := s.scripts.ListRatingLogs(ctx, scriptID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rating history")
	}
	return logs, nil
}

// ModelVersion exposes the active scorer version.
func (s *RatingService) ModelVersion() string {
	return s.pipeline.ModelVersion()
}

func (s *RatingService) persistResult(ctx context.Context, scriptID string, result *models.RatingResult) error {
	err := s.scripts.UpdateRating(ctx, scriptID, repository.RatingUpdateParams{
		Rating:       result.Rating,
		Scores:       result.Scores,
		ModelVersion: result.ModelVersion,
		TotalScenes:  result.TotalScenes,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "script not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist rating")
	}

	reasons, _ := json.Marshal(result.Reasons)
	log := &models.RatingLog{
		ScriptID:        scriptID,
		PredictedRating: result.Rating,
		Reasons:         reasons,
		ModelVersion:    result.ModelVersion,
	}
	if err := s.scripts.InsertRatingLog(ctx, log); err != nil {
		s.logger.Warn("failed to record rating log", zap.String("script_id", scriptID), zap.Error(err))
	}
	return nil
}

// cacheKey ties a cached result to the exact text and model version,
// so a model upgrade or content change can never serve a stale rating.
func (s *RatingService) cacheKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "rating:" + hex.EncodeToString(sum[:]) + ":" + s.pipeline.ModelVersion()
}

func (s *RatingService) cachedResult(ctx context.Context, content string) (*models.RatingResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	var result models.RatingResult
	if err := s.cache.Get(ctx, s.cacheKey(content), &result); err != nil {
		if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("rating cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
		return nil, false
	}
	s.metrics.RecordCacheLookup(true)
	return &result, true
}

func (s *RatingService) storeResult(ctx context.Context, content string, result *models.RatingResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(content), result, s.cacheTTL); err != nil {
		s.logger.Warn("rating cache write failed", zap.Error(err))
	}
}

func (s *RatingService) invalidateCache(ctx context.Context, scriptID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "rating:*"); err != nil {
		s.logger.Warn("rating cache invalidation failed", zap.String("script_id", scriptID), zap.Error(err))
	}
}
