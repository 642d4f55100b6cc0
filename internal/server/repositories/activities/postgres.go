// Package activities provides a PostgreSQL-backed repository for itinerary
// activities.
package activities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/models"
)

const activityColumns = `id, day_id, time, title, description, location,
	estimated_cost, notes, is_completed, created_at, server_id, is_synced, local_updated_at`

// PostgresRepository implements activity storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the activity with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	activity := &models.Activity{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&activity.ID, &activity.DayID, &activity.Time, &activity.Title, &activity.Description,
		&activity.Location, &activity.EstimatedCost, &activity.Notes, &activity.IsCompleted,
		&activity.CreatedAt, &activity.ServerID, &activity.IsSynced, &activity.LocalUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return activity, nil
}

// Insert creates a new activity row.
func (r *PostgresRepository) Insert(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (id, day_id, time, title, description, location,
			estimated_cost, notes, is_completed, server_id, is_synced, local_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.DayID, activity.Time, activity.Title, activity.Description,
		activity.Location, activity.EstimatedCost, activity.Notes, activity.IsCompleted,
		activity.ServerID, activity.IsSynced, activity.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of an existing activity row.
func (r *PostgresRepository) Update(ctx context.Context, activity *models.Activity) error {
	query := `
		UPDATE activities SET time = $2, title = $3, description = $4, location = $5,
			estimated_cost = $6, notes = $7, is_completed = $8,
			server_id = $9, is_synced = $10, local_updated_at = $11
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.Time, activity.Title, activity.Description, activity.Location,
		activity.EstimatedCost, activity.Notes, activity.IsCompleted,
		activity.ServerID, activity.IsSynced, activity.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes an activity row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByDay returns all activities of a day ordered by time.
func (r *PostgresRepository) ListByDay(ctx context.Context, dayID string) ([]*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE day_id = $1 ORDER BY time`
	return r.selectMany(ctx, query, dayID)
}

// SelectUpdatedSince returns all activities belonging to days of trips owned
// by userID whose local_updated_at is strictly after since.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE day_id IN (
			SELECT id FROM days WHERE trip_id IN (SELECT id FROM trips WHERE user_id = $1)
		)
		AND local_updated_at > $2`
	return r.selectMany(ctx, query, userID, since)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select activities: %w", err)
	}
	defer rows.Close()

	var result []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		if err := rows.Scan(
			&activity.ID, &activity.DayID, &activity.Time, &activity.Title, &activity.Description,
			&activity.Location, &activity.EstimatedCost, &activity.Notes, &activity.IsCompleted,
			&activity.CreatedAt, &activity.ServerID, &activity.IsSynced, &activity.LocalUpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
