package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cinerate/cinerate-api/internal/models"
)

// ScriptRepository provides persistence for scripts and their rating
// history.
type ScriptRepository struct {
	db *sqlx.DB
}

// NewScriptRepository constructs the repository.
func NewScriptRepository(db *sqlx.DB) *ScriptRepository {
	return &ScriptRepository{db: db}
}

// Create inserts a new script and returns it with generated fields.
func (r *ScriptRepository) Create(ctx context.Context, title, content string) (*models.Script, error) {
	script := &models.Script{
		ID:             uuid.NewString(),
		Title:          title,
		Content:        content,
		CurrentVersion: 1,
		CreatedAt:      time.Now().UTC(),
	}
	const query = `INSERT INTO scripts (id, title, content, current_version, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, script.ID, script.Title, script.Content, script.CurrentVersion, script.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert script: %w", err)
	}
	return script, nil
}

// GetByID fetches one script, nil when absent.
func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*models.Script, error) {
	const query = `SELECT id, title, content, predicted_rating, agg_scores, model_version, total_scenes, current_version, created_at, updated_at
FROM scripts WHERE id = $1`
	var script models.Script
	if err := r.db.GetContext(ctx, &script, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get script: %w", err)
	}
	return &script, nil
}

// ScriptFilter narrows List results.
type ScriptFilter struct {
	Search   string
	Rating   string
	Page     int
	PageSize int
}

// List returns a page of scripts plus the total count.
func (r *ScriptRepository) List(ctx context.Context, filter ScriptFilter) ([]models.Script, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	where := strings.Builder{}
	where.WriteString(" WHERE 1=1")
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&where, " AND title ILIKE $%d", len(args))
	}
	if filter.Rating != "" {
		args = append(args, filter.Rating)
		fmt.Fprintf(&where, " AND predicted_rating = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM scripts"+where.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("count scripts: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := `SELECT id, title, content, predicted_rating, agg_scores, model_version, total_scenes, current_version, created_at, updated_at
FROM scripts` + where.String() + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var scripts []models.Script
	if err := r.db.SelectContext(ctx, &scripts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scripts: %w", err)
	}
	return scripts, total, nil
}

// RatingUpdateParams carries the pipeline output persisted onto the
// script row.
type RatingUpdateParams struct {
	Rating       models.Rating
	Scores       models.FeatureVector
	ModelVersion string
	TotalScenes  int
}

// UpdateRating stores the latest rating outcome on the script.
func (r *ScriptRepository) UpdateRating(ctx context.Context, id string, params RatingUpdateParams) error {
	const query = `UPDATE scripts
SET predicted_rating = $1, agg_scores = $2, model_version = $3, total_scenes = $4, updated_at = $5
WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, params.Rating, params.Scores, params.ModelVersion, params.TotalScenes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update script rating: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateContent replaces the script text and bumps the version pointer.
func (r *ScriptRepository) UpdateContent(ctx context.Context, id, content string, currentVersion int) error {
	const query = `UPDATE scripts SET content = $1, current_version = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, content, currentVersion, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update script content: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a script and, via cascading constraints, its
// versions, jobs and rating logs.
func (r *ScriptRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertRatingLog appends one rating outcome to the script's history.
func (r *ScriptRepository) InsertRatingLog(ctx context.Context, log *models.RatingLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rating_logs (id, script_id, predicted_rating, reasons, model_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, log.ID, log.ScriptID, log.PredictedRating, log.Reasons, log.ModelVersion, log.CreatedAt); err != nil {
		return fmt.Errorf("insert rating log: %w", err)
	}
	return nil
}

// ListRatingLogs returns a script's rating history, newest first.
func (r *ScriptRepository) ListRatingLogs(ctx context.Context, scriptID string, limit int) ([]models.RatingLog, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, script_id, predicted_rating, reasons, model_version, created_at
FROM rating_logs WHERE script_id = $1 ORDER BY created_at DESC LIMIT $2`
	var logs []models.RatingLog
	if err := r.db.SelectContext(ctx, &logs, query, scriptID, limit); err != nil {
		return nil, fmt.Errorf("list rating logs: %w", err)
	}
	return logs, nil
}
