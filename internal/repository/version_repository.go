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

// VersionRepository persists script version snapshots. All writes go
// through transactions that keep exactly one is_current row per
// script.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository constructs the repository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const versionColumns = `id, script_id, version_number, title, content, predicted_rating, agg_scores, total_scenes, change_description, is_current, created_at`

// Create snapshots a new version and marks it current, demoting the
// previous current row in the same transaction.
func (r *VersionRepository) Create(ctx context.Context, version *models.ScriptVersion) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin version transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var next int
	if err = tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(version_number), 0) + 1 FROM script_versions WHERE script_id = $1`, version.ScriptID); err != nil {
		return fmt.Errorf("next version number: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE script_versions SET is_current = FALSE WHERE script_id = $1 AND is_current`, version.ScriptID); err != nil {
		return fmt.Errorf("demote current version: %w", err)
	}

	version.ID = uuid.NewString()
	version.VersionNumber = next
	version.IsCurrent = true
	version.CreatedAt = time.Now().UTC()

	const insertQuery = `INSERT INTO script_versions (` + versionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err = tx.ExecContext(ctx, insertQuery,
		version.ID, version.ScriptID, version.VersionNumber, version.Title, version.Content,
		version.PredictedRating, version.AggScores, version.TotalScenes, version.ChangeDescription,
		version.IsCurrent, version.CreatedAt); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit version: %w", err)
	}
	return nil
}

// List returns all versions of a script, newest first.
func (r *VersionRepository) List(ctx context.Context, scriptID string) ([]models.ScriptVersion, error) {
	const query = `SELECT ` + versionColumns + ` FROM script_versions WHERE script_id = $1 ORDER BY version_number DESC`
	var versions []models.ScriptVersion
	if err := r.db.SelectContext(ctx, &versions, query, scriptID); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// GetByNumber fetches one version of a script, nil when absent.
func (r *VersionRepository) GetByNumber(ctx context.Context, scriptID string, number int) (*models.ScriptVersion, error) {
	const query = `SELECT ` + versionColumns + ` FROM script_versions WHERE script_id = $1 AND version_number = $2`
	var version models.ScriptVersion
	if err := r.db.GetContext(ctx, &version, query, scriptID, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &version, nil
}

// GetCurrent fetches the version currently marked current.
func (r *VersionRepository) GetCurrent(ctx context.Context, scriptID string) (*models.ScriptVersion, error) {
	const query = `SELECT ` + versionColumns + ` FROM script_versions WHERE script_id = $1 AND is_current`
	var version models.ScriptVersion
	if err := r.db.GetContext(ctx, &version, query, scriptID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get current version: %w", err)
	}
	return &version, nil
}

// SetCurrent flips the current flag to the given version number.
func (r *VersionRepository) SetCurrent(ctx context.Context, scriptID string, number int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE script_versions SET is_current = FALSE WHERE script_id = $1 AND is_current`, scriptID); err != nil {
		return fmt.Errorf("demote current version: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE script_versions SET is_current = TRUE WHERE script_id = $1 AND version_number = $2`, scriptID, number)
	if err != nil {
		return fmt.Errorf("promote version: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	return nil
}

// Delete removes a non-current version. Deleting the current version
// is refused at the service layer before reaching here.
func (r *VersionRepository) Delete(ctx context.Context, scriptID string, number int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM script_versions WHERE script_id = $1 AND version_number = $2 AND NOT is_current`, scriptID, number)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
