package notes

import (
	"context"
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Insert(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Note, error)
	SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Note, error)
}
