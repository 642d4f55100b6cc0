package sync

import (
	"context"
	"errors"
	"time"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/server/models"
)

// notFoundToNil folds the repository "no rows" sentinel into a nil record,
// which runPass treats as "no server copy".
func notFoundToNil[M any](m *M, err error) (*M, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) tripAdapter(r txRepos, userID string) adapter[TripRecord, models.Trip] {
	return adapter[TripRecord, models.Trip]{
		entityType: "trip",
		get: func(ctx context.Context, id string) (*models.Trip, error) {
			return notFoundToNil(r.trips.GetByID(ctx, id))
		},
		owned: func(ctx context.Context, t *models.Trip) (bool, error) {
			return t.UserID == userID, nil
		},
		updatedAt: func(t *models.Trip) time.Time { return t.LocalUpdatedAt },
		remove: func(ctx context.Context, t *models.Trip) error {
			return r.trips.Delete(ctx, t.ID)
		},
		apply: func(ctx context.Context, t *models.Trip, rec TripRecord, ts time.Time) error {
			if rec.Title != nil {
				t.Title = *rec.Title
			}
			if rec.Destination != nil {
				t.Destination = *rec.Destination
			}
			if rec.StartDate != nil {
				t.StartDate = *rec.StartDate
			}
			if rec.EndDate != nil {
				t.EndDate = *rec.EndDate
			}
			if rec.Budget != nil {
				t.Budget = rec.Budget
			}
			if rec.BudgetTier != nil {
				t.BudgetTier = rec.BudgetTier
			}
			if rec.TravelStyle != nil {
				t.TravelStyle = rec.TravelStyle
			}
			if rec.Interests != nil {
				t.Interests = rec.Interests
			}
			if rec.SpecialRequirements != nil {
				t.SpecialRequirements = rec.SpecialRequirements
			}
			if rec.Preferences != nil {
				t.Preferences = rec.Preferences
			}
			if rec.IsGenerated != nil {
				t.IsGenerated = *rec.IsGenerated
			}
			t.LocalUpdatedAt = ts
			t.IsSynced = true
			return r.trips.Update(ctx, t)
		},
		insert: func(ctx context.Context, rec TripRecord, ts time.Time) (bool, error) {
			today := time.Now().UTC().Format("2006-01-02")
			t := &models.Trip{
				ID:                  rec.ID,
				UserID:              userID,
				Title:               stringOr(rec.Title, "Untitled Trip"),
				Destination:         stringOr(rec.Destination, ""),
				StartDate:           stringOr(rec.StartDate, today),
				EndDate:             stringOr(rec.EndDate, today),
				Budget:              rec.Budget,
				BudgetTier:          rec.BudgetTier,
				TravelStyle:         rec.TravelStyle,
				Interests:           rec.Interests,
				SpecialRequirements: rec.SpecialRequirements,
				Preferences:         rec.Preferences,
				IsGenerated:         rec.IsGenerated != nil && *rec.IsGenerated,
			}
			if t.Preferences == nil {
				t.Preferences = map[string]any{}
			}
			t.LocalUpdatedAt = ts
			t.IsSynced = true
			if err := r.trips.Insert(ctx, t); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// tripOwned resolves a trip id and checks it belongs to the caller. A
// missing trip reads as "not owned", not as an error.
func tripOwned(ctx context.Context, r txRepos, tripID, userID string) (bool, error) {
	trip, err := notFoundToNil(r.trips.GetByID(ctx, tripID))
	if err != nil {
		return false, err
	}
	return trip != nil && trip.UserID == userID, nil
}

func (s *Service) dayAdapter(r txRepos, userID string) adapter[DayRecord, models.Day] {
	return adapter[DayRecord, models.Day]{
		entityType: "day",
		get: func(ctx context.Context, id string) (*models.Day, error) {
			return notFoundToNil(r.days.GetByID(ctx, id))
		},
		owned: func(ctx context.Context, d *models.Day) (bool, error) {
			return tripOwned(ctx, r, d.TripID, userID)
		},
		updatedAt: func(d *models.Day) time.Time { return d.LocalUpdatedAt },
		remove: func(ctx context.Context, d *models.Day) error {
			return r.days.Delete(ctx, d.ID)
		},
		apply: func(ctx context.Context, d *models.Day, rec DayRecord, ts time.Time) error {
			if rec.DayNumber != nil {
				d.DayNumber = *rec.DayNumber
			}
			if rec.Date != nil {
				d.Date = *rec.Date
			}
			if rec.Title != nil {
				d.Title = *rec.Title
			}
			d.LocalUpdatedAt = ts
			d.IsSynced = true
			return r.days.Update(ctx, d)
		},
		insert: func(ctx context.Context, rec DayRecord, ts time.Time) (bool, error) {
			ok, err := tripOwned(ctx, r, rec.TripID, userID)
			if err != nil || !ok {
				return false, err
			}
			d := &models.Day{
				ID:        rec.ID,
				TripID:    rec.TripID,
				DayNumber: intOr(rec.DayNumber, 1),
				Date:      stringOr(rec.Date, ""),
				Title:     stringOr(rec.Title, ""),
			}
			d.LocalUpdatedAt = ts
			d.IsSynced = true
			if err := r.days.Insert(ctx, d); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// dayOwned walks Activity's two-level chain: day -> trip -> caller.
func dayOwned(ctx context.Context, r txRepos, dayID, userID string) (bool, error) {
	day, err := notFoundToNil(r.days.GetByID(ctx, dayID))
	if err != nil {
		return false, err
	}
	if day == nil {
		return false, nil
	}
	return tripOwned(ctx, r, day.TripID, userID)
}

func (s *Service) activityAdapter(r txRepos, userID string) adapter[ActivityRecord, models.Activity] {
	return adapter[ActivityRecord, models.Activity]{
		entityType: "activity",
		get: func(ctx context.Context, id string) (*models.Activity, error) {
			return notFoundToNil(r.activities.GetByID(ctx, id))
		},
		owned: func(ctx context.Context, a *models.Activity) (bool, error) {
			return dayOwned(ctx, r, a.DayID, userID)
		},
		updatedAt: func(a *models.Activity) time.Time { return a.LocalUpdatedAt },
		remove: func(ctx context.Context, a *models.Activity) error {
			return r.activities.Delete(ctx, a.ID)
		},
		apply: func(ctx context.Context, a *models.Activity, rec ActivityRecord, ts time.Time) error {
			if rec.Time != nil {
				a.Time = rec.Time
			}
			if rec.Title != nil {
				a.Title = *rec.Title
			}
			if rec.Description != nil {
				a.Description = rec.Description
			}
			if rec.Location != nil {
				a.Location = rec.Location
			}
			if rec.EstimatedCost != nil {
				a.EstimatedCost = *rec.EstimatedCost
			}
			if rec.Notes != nil {
				a.Notes = rec.Notes
			}
			if rec.IsCompleted != nil {
				a.IsCompleted = *rec.IsCompleted
			}
			a.LocalUpdatedAt = ts
			a.IsSynced = true
			return r.activities.Update(ctx, a)
		},
		insert: func(ctx context.Context, rec ActivityRecord, ts time.Time) (bool, error) {
			ok, err := dayOwned(ctx, r, rec.DayID, userID)
			if err != nil || !ok {
				return false, err
			}
			a := &models.Activity{
				ID:            rec.ID,
				DayID:         rec.DayID,
				Time:          rec.Time,
				Title:         stringOr(rec.Title, ""),
				Description:   rec.Description,
				Location:      rec.Location,
				EstimatedCost: floatOr(rec.EstimatedCost, 0),
				Notes:         rec.Notes,
				IsCompleted:   rec.IsCompleted != nil && *rec.IsCompleted,
			}
			a.LocalUpdatedAt = ts
			a.IsSynced = true
			if err := r.activities.Insert(ctx, a); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func (s *Service) budgetItemAdapter(r txRepos, userID string) adapter[BudgetItemRecord, models.BudgetItem] {
	return adapter[BudgetItemRecord, models.BudgetItem]{
		entityType: "budget_item",
		get: func(ctx context.Context, id string) (*models.BudgetItem, error) {
			return notFoundToNil(r.budgetItems.GetByID(ctx, id))
		},
		owned: func(ctx context.Context, b *models.BudgetItem) (bool, error) {
			return tripOwned(ctx, r, b.TripID, userID)
		},
		updatedAt: func(b *models.BudgetItem) time.Time { return b.LocalUpdatedAt },
		remove: func(ctx context.Context, b *models.BudgetItem) error {
			return r.budgetItems.Delete(ctx, b.ID)
		},
		apply: func(ctx context.Context, b *models.BudgetItem, rec BudgetItemRecord, ts time.Time) error {
			if rec.Category != nil {
				b.Category = *rec.Category
			}
			if rec.Amount != nil {
				b.Amount = *rec.Amount
			}
			if rec.Note != nil {
				b.Note = rec.Note
			}
			b.LocalUpdatedAt = ts
			b.IsSynced = true
			return r.budgetItems.Update(ctx, b)
		},
		insert: func(ctx context.Context, rec BudgetItemRecord, ts time.Time) (bool, error) {
			ok, err := tripOwned(ctx, r, rec.TripID, userID)
			if err != nil || !ok {
				return false, err
			}
			b := &models.BudgetItem{
				ID:       rec.ID,
				TripID:   rec.TripID,
				Category: stringOr(rec.Category, ""),
				Amount:   floatOr(rec.Amount, 0),
				Note:     rec.Note,
			}
			b.LocalUpdatedAt = ts
			b.IsSynced = true
			if err := r.budgetItems.Insert(ctx, b); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func (s *Service) noteAdapter(r txRepos, userID string) adapter[NoteRecord, models.Note] {
	return adapter[NoteRecord, models.Note]{
		entityType: "note",
		get: func(ctx context.Context, id string) (*models.Note, error) {
			return notFoundToNil(r.notes.GetByID(ctx, id))
		},
		owned: func(ctx context.Context, n *models.Note) (bool, error) {
			return tripOwned(ctx, r, n.TripID, userID)
		},
		updatedAt: func(n *models.Note) time.Time { return n.LocalUpdatedAt },
		remove: func(ctx context.Context, n *models.Note) error {
			return r.notes.Delete(ctx, n.ID)
		},
		apply: func(ctx context.Context, n *models.Note, rec NoteRecord, ts time.Time) error {
			if rec.Content != nil {
				n.Content = *rec.Content
			}
			n.LocalUpdatedAt = ts
			n.IsSynced = true
			return r.notes.Update(ctx, n)
		},
		insert: func(ctx context.Context, rec NoteRecord, ts time.Time) (bool, error) {
			ok, err := tripOwned(ctx, r, rec.TripID, userID)
			if err != nil || !ok {
				return false, err
			}
			n := &models.Note{
				ID:      rec.ID,
				TripID:  rec.TripID,
				Content: stringOr(rec.Content, ""),
			}
			n.LocalUpdatedAt = ts
			n.IsSynced = true
			if err := r.notes.Insert(ctx, n); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func stringOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
