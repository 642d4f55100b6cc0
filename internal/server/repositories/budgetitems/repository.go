package budgetitems

import (
	"context"
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.BudgetItem, error)
	Insert(ctx context.Context, item *models.BudgetItem) error
	Update(ctx context.Context, item *models.BudgetItem) error
	Delete(ctx context.Context, id string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.BudgetItem, error)
	SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.BudgetItem, error)
}
