// Package days provides a PostgreSQL-backed repository for itinerary days.
package days

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

const dayColumns = `id, trip_id, day_number, date, title, created_at, server_id, is_synced, local_updated_at`

// PostgresRepository implements day storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the day with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Day, error) {
	query := `SELECT ` + dayColumns + ` FROM days WHERE id = $1`
	day := &models.Day{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&day.ID, &day.TripID, &day.DayNumber, &day.Date, &day.Title, &day.CreatedAt,
		&day.ServerID, &day.IsSynced, &day.LocalUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return day, nil
}

// Insert creates a new day row.
func (r *PostgresRepository) Insert(ctx context.Context, day *models.Day) error {
	query := `
		INSERT INTO days (id, trip_id, day_number, date, title, server_id, is_synced, local_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		day.ID, day.TripID, day.DayNumber, day.Date, day.Title,
		day.ServerID, day.IsSynced, day.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of an existing day row.
func (r *PostgresRepository) Update(ctx context.Context, day *models.Day) error {
	query := `
		UPDATE days SET day_number = $2, date = $3, title = $4,
			server_id = $5, is_synced = $6, local_updated_at = $7
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		day.ID, day.DayNumber, day.Date, day.Title,
		day.ServerID, day.IsSynced, day.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a day; its activities cascade at the database level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM days WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByTrip removes all days of a trip (activities cascade). Used when a
// refined itinerary replaces the day structure wholesale.
func (r *PostgresRepository) DeleteByTrip(ctx context.Context, tripID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM days WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByTrip returns all days of a trip ordered by day_number.
func (r *PostgresRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Day, error) {
	query := `SELECT ` + dayColumns + ` FROM days WHERE trip_id = $1 ORDER BY day_number`
	return r.selectMany(ctx, query, tripID)
}

// SelectUpdatedSince returns all days belonging to trips owned by userID
// whose local_updated_at is strictly after since. Ownership is resolved
// through a fresh subquery so rows created earlier in the same call are
// included.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Day, error) {
	query := `SELECT ` + dayColumns + ` FROM days
		WHERE trip_id IN (SELECT id FROM trips WHERE user_id = $1)
		AND local_updated_at > $2`
	return r.selectMany(ctx, query, userID, since)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Day, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select days: %w", err)
	}
	defer rows.Close()

	var result []*models.Day
	for rows.Next() {
		day := &models.Day{}
		if err := rows.Scan(
			&day.ID, &day.TripID, &day.DayNumber, &day.Date, &day.Title, &day.CreatedAt,
			&day.ServerID, &day.IsSynced, &day.LocalUpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
