package activities

import (
	"context"
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Insert(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	ListByDay(ctx context.Context, dayID string) ([]*models.Activity, error)
	SelectUpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Activity, error)
}
