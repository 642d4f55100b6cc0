package trips

import (
	"context"
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Trip, error)
	Insert(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, trip *models.Trip) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*models.Trip, error)
	SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Trip, error)
}
