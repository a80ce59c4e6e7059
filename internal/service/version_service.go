package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

type versionStore interface {
	Create(ctx context.Context, version *models.ScriptVersion) error
	List(ctx context.Context, scriptID string) ([]models.ScriptVersion, error)
	GetByNumber(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error)
	GetCurrent(ctx context.Context, scriptID string) (*models.ScriptVersion, error)
	SetCurrent(ctx context.Context, scriptID string, number int) error
	Delete(ctx context.Context, scriptID string, number int) error
}

type versionScriptStore interface {
	GetByID(ctx context.Context, id string) (*models.Script, error)
	UpdateContent(ctx context.Context, id, content string, currentVersion int) error
}

// VersionService manages script version snapshots. The repository
// keeps the one-current-version invariant; this layer adds the
// script-side bookkeeping and the comparison logic.
type VersionService struct {
	versions versionStore
	scripts  versionScriptStore
	logger   *zap.Logger
}

// NewVersionService constructs a VersionService.
func NewVersionService(versions versionStore, scripts versionScriptStore, logger *zap.Logger) *VersionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VersionService{versions: versions, scripts: scripts, logger: logger}
}

// Snapshot records the script's current content and rating as a new
// current version.
func (s *VersionService) Snapshot(ctx context.Context, scriptID string, changeDescription string) (*models.ScriptVersion, error) {
	script, err := s.requireScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	version := &models.ScriptVersion{
		ScriptID:        scriptID,
		Title:           script.Title,
		Content:         script.Content,
		PredictedRating: script.PredictedRating,
		AggScores:       script.AggScores,
		TotalScenes:     script.TotalScenes,
	}
	if desc := strings.TrimSpace(changeDescription); desc != "" {
		version.ChangeDescription = &desc
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot version")
	}

	if err := s.scripts.UpdateContent(ctx, scriptID, script.Content, version.VersionNumber); err != nil {
		s.logger.Warn("failed to update script version pointer", zap.String("script_id", scriptID), zap.Error(err))
	}
	return version, nil
}

// List returns every version of a script, newest first.
func (s *VersionService) List(ctx context.Context, scriptID string) ([]models.ScriptVersion, error) {
	if _, err := s.requireScript(ctx, scriptID); err != nil {
		return nil, err
	}
	versions, err := s.versions.List(ctx, scriptID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list versions")
	}
	return versions, nil
}

// Get fetches one version by number.
func (s *VersionService) Get(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error) {
	version, err := s.versions.GetByNumber(ctx, scriptID, number)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load version")
	}
	if version == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("version %d not found", number))
	}
	return version, nil
}

// Restore makes an older version current again and writes its content
// back onto the script. The state being replaced is snapshotted as a
// new version first, so a restore never loses work. The restored
// rating snapshot travels with it.
func (s *VersionService) Restore(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error) {
	script, err := s.requireScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	version, err := s.Get(ctx, scriptID, number)
	if err != nil {
		return nil, err
	}
	if version.IsCurrent {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("version %d is already current", number))
	}

	backupDesc := fmt.Sprintf("Backup before restore to v%d", number)
	backup := &models.ScriptVersion{
		ScriptID:          scriptID,
		Title:             script.Title,
		Content:           script.Content,
		PredictedRating:   script.PredictedRating,
		AggScores:         script.AggScores,
		TotalScenes:       script.TotalScenes,
		ChangeDescription: &backupDesc,
	}
	if err := s.versions.Create(ctx, backup); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to back up current state")
	}

	if err := s.versions.SetCurrent(ctx, scriptID, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("version %d not found", number))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore version")
	}
	if err := s.scripts.UpdateContent(ctx, scriptID, version.Content, number); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write restored content")
	}

	version.IsCurrent = true
	return version, nil
}

// Delete removes a non-current version. The current version can never
// be deleted.
func (s *VersionService) Delete(ctx context.Context, scriptID string, number int) error {
	version, err := s.Get(ctx, scriptID, number)
	if err != nil {
		return err
	}
	if version.IsCurrent {
		return appErrors.Clone(appErrors.ErrStateConflict, "cannot delete the current version")
	}
	if err := s.versions.Delete(ctx, scriptID, number); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("version %d not found", number))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete version")
	}
	return nil
}

// Compare summarises what changed between two versions.
func (s *VersionService) Compare(ctx context.Context, scriptID string, from, to int) (*models.VersionComparison, error) {
	fromVersion, err := s.Get(ctx, scriptID, from)
	if err != nil {
		return nil, err
	}
	toVersion, err := s.Get(ctx, scriptID, to)
	if err != nil {
		return nil, err
	}

	comparison := &models.VersionComparison{
		From:         from,
		To:           to,
		RatingFrom:   fromVersion.PredictedRating,
		RatingTo:     toVersion.PredictedRating,
		LinesChanged: linesChanged(fromVersion.Content, toVersion.Content),
	}
	if fromVersion.PredictedRating != nil && toVersion.PredictedRating != nil {
		comparison.RatingChanged = *fromVersion.PredictedRating != *toVersion.PredictedRating
	}
	if fromVersion.TotalScenes != nil && toVersion.TotalScenes != nil {
		comparison.ScenesDelta = *toVersion.TotalScenes - *fromVersion.TotalScenes
	}
	if fromVersion.AggScores != nil && toVersion.AggScores != nil {
		comparison.ScoreChanges = map[models.Dimension]models.ScoreChange{}
		for _, d := range models.Dimensions {
			oldScore, newScore := fromVersion.AggScores[d], toVersion.AggScores[d]
			if oldScore == newScore {
				continue
			}
			comparison.ScoreChanges[d] = models.ScoreChange{
				Old:   oldScore,
				New:   newScore,
				Delta: newScore - oldScore,
			}
		}
	}
	return comparison, nil
}

func (s *VersionService) requireScript(ctx context.Context, scriptID string) (*models.Script, error) {
	script, err := s.scripts.GetByID(ctx, scriptID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load script")
	}
	if script == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "script not found")
	}
	return script, nil
}

// linesChanged counts lines present in one version but not the other.
// A multiset comparison, cheap and order-insensitive; good enough for
// a summary figure.
func linesChanged(before, after string) int {
	counts := map[string]int{}
	for _, line := range strings.Split(before, "\n") {
		counts[line]++
	}
	for _, line := range strings.Split(after, "\n") {
		counts[line]--
	}
	changed := 0
	for _, n := range counts {
		if n > 0 {
			changed += n
		} else {
			changed -= n
		}
	}
	return changed
}
