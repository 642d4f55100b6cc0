// Package budgetitems provides a PostgreSQL-backed repository for trip
// budget items.
package budgetitems

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

const budgetItemColumns = `id, trip_id, category, amount, note, created_at, server_id, is_synced, local_updated_at`

// PostgresRepository implements budget item storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the budget item with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.BudgetItem, error) {
	query := `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE id = $1`
	item := &models.BudgetItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.TripID, &item.Category, &item.Amount, &item.Note, &item.CreatedAt,
		&item.ServerID, &item.IsSynced, &item.LocalUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Insert creates a new budget item row.
func (r *PostgresRepository) Insert(ctx context.Context, item *models.BudgetItem) error {
	query := `
		INSERT INTO budget_items (id, trip_id, category, amount, note, server_id, is_synced, local_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		item.ID, item.TripID, item.Category, item.Amount, item.Note,
		item.ServerID, item.IsSynced, item.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of an existing budget item row.
func (r *PostgresRepository) Update(ctx context.Context, item *models.BudgetItem) error {
	query := `
		UPDATE budget_items SET category = $2, amount = $3, note = $4,
			server_id = $5, is_synced = $6, local_updated_at = $7
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		item.ID, item.Category, item.Amount, item.Note,
		item.ServerID, item.IsSynced, item.LocalUpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a budget item row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByTrip returns all budget items of a trip.
func (r *PostgresRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.BudgetItem, error) {
	query := `SELECT ` + budgetItemColumns + ` FROM budget_items WHERE trip_id = $1 ORDER BY created_at`
	return r.selectMany(ctx, query, tripID)
}

// SelectUpdatedSince returns all budget items belonging to trips owned by
// userID whose local_updated_at is strictly after since.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.BudgetItem, error) {
	query := `SELECT ` + budgetItemColumns + ` FROM budget_items
		WHERE trip_id IN (SELECT id FROM trips WHERE user_id = $1)
		AND local_updated_at > $2`
	return r.selectMany(ctx, query, userID, since)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select budget items: %w", err)
	}
	defer rows.Close()

	var result []*models.BudgetItem
	for rows.Next() {
		item := &models.BudgetItem{}
		if err := rows.Scan(
			&item.ID, &item.TripID, &item.Category, &item.Amount, &item.Note, &item.CreatedAt,
			&item.ServerID, &item.IsSynced, &item.LocalUpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
