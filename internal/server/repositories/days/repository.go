package days

import (
	"context"
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Day, error)
	Insert(ctx context.Context, day *models.Day) error
	Update(ctx context.Context, day *models.Day) error
	Delete(ctx context.Context, id string) error
	DeleteByTrip(ctx context.Context, tripID string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Day, error)
	SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Day, error)
}
