// Package trips provides a PostgreSQL-backed repository for trip rows,
// including the sync-envelope columns and delta queries.
package trips

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/models"
)

const tripColumns = `id, user_id, title, destination, start_date, end_date,
	budget, budget_tier, travel_style, interests, special_requirements,
	preferences, is_generated, created_at, updated_at,
	server_id, is_synced, local_updated_at`

// PostgresRepository implements trip storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the trip with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trip, nil
}

// Insert creates a new trip row.
func (r *PostgresRepository) Insert(ctx context.Context, trip *models.Trip) error {
	interests, preferences, err := marshalJSONFields(trip)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO trips (id, user_id, title, destination, start_date, end_date,
			budget, budget_tier, travel_style, interests, special_requirements,
			preferences, is_generated, server_id, is_synced, local_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	if _, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.UserID, trip.Title, trip.Destination, trip.StartDate, trip.EndDate,
		trip.Budget, trip.BudgetTier, trip.TravelStyle, interests, trip.SpecialRequirements,
		preferences, trip.IsGenerated, trip.ServerID, trip.IsSynced, trip.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of an existing trip row.
func (r *PostgresRepository) Update(ctx context.Context, trip *models.Trip) error {
	interests, preferences, err := marshalJSONFields(trip)
	if err != nil {
		return err
	}
	query := `
		UPDATE trips SET
			title = $2, destination = $3, start_date = $4, end_date = $5,
			budget = $6, budget_tier = $7, travel_style = $8, interests = $9,
			special_requirements = $10, preferences = $11, is_generated = $12,
			updated_at = now(), server_id = $13, is_synced = $14, local_updated_at = $15
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Title, trip.Destination, trip.StartDate, trip.EndDate,
		trip.Budget, trip.BudgetTier, trip.TravelStyle, interests,
		trip.SpecialRequirements, preferences, trip.IsGenerated,
		trip.ServerID, trip.IsSynced, trip.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a trip; days, activities, budget items, and notes cascade
// at the database level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByUser returns all trips owned by userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 ORDER BY created_at DESC`
	return r.selectMany(ctx, query, userID)
}

// SelectUpdatedSince returns all trips owned by userID whose
// local_updated_at is strictly after since.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 AND local_updated_at > $2`
	return r.selectMany(ctx, query, userID, since)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Trip, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select trips: %w", err)
	}
	defer rows.Close()

	var result []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	trip := &models.Trip{}
	var interests, preferences []byte
	if err := row.Scan(
		&trip.ID, &trip.UserID, &trip.Title, &trip.Destination, &trip.StartDate, &trip.EndDate,
		&trip.Budget, &trip.BudgetTier, &trip.TravelStyle, &interests, &trip.SpecialRequirements,
		&preferences, &trip.IsGenerated, &trip.CreatedAt, &trip.UpdatedAt,
		&trip.ServerID, &trip.IsSynced, &trip.LocalUpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &trip.Interests); err != nil {
			return nil, fmt.Errorf("bad interests json: %w", err)
		}
	}
	trip.Preferences = map[string]any{}
	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &trip.Preferences); err != nil {
			return nil, fmt.Errorf("bad preferences json: %w", err)
		}
	}
	return trip, nil
}

func marshalJSONFields(trip *models.Trip) (interests, preferences []byte, err error) {
	if trip.Interests != nil {
		interests, err = json.Marshal(trip.Interests)
		if err != nil {
			return nil, nil, fmt.Errorf("bad interests: %w", err)
		}
	}
	prefs := trip.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	preferences, err = json.Marshal(prefs)
	if err != nil {
		return nil, nil, fmt.Errorf("bad preferences: %w", err)
	}
	return interests, preferences, nil
}
