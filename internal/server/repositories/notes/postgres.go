// Package notes provides a PostgreSQL-backed repository for trip notes.
package notes

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

const noteColumns = `id, trip_id, content, created_at, server_id, is_synced, local_updated_at`

// PostgresRepository implements note storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the note with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID, &note.TripID, &note.Content, &note.CreatedAt,
		&note.ServerID, &note.IsSynced, &note.LocalUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

// Insert creates a new note row.
func (r *PostgresRepository) Insert(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, trip_id, content, server_id, is_synced, local_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		note.ID, note.TripID, note.Content,
		note.ServerID, note.IsSynced, note.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of an existing note row.
func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes SET content = $2, server_id = $3, is_synced = $4, local_updated_at = $5
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		note.ID, note.Content, note.ServerID, note.IsSynced, note.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a note row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByTrip returns all notes of a trip, newest first.
func (r *PostgresRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE trip_id = $1 ORDER BY created_at DESC`
	return r.selectMany(ctx, query, tripID)
}

// SelectUpdatedSince returns all notes belonging to trips owned by userID
// whose local_updated_at is strictly after since.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
		WHERE trip_id IN (SELECT id FROM trips WHERE user_id = $1)
		AND local_updated_at > $2`
	return r.selectMany(ctx, query, userID, since)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(
			&note.ID, &note.TripID, &note.Content, &note.CreatedAt,
			&note.ServerID, &note.IsSynced, &note.LocalUpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
