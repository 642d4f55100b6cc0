package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/ai"
	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/repositories/repomanager"
)

// maxTripDays caps generated trip length; longer requests are rejected
// before the model is called.
const maxTripDays = 14

// GenerateParams carries the preferences for a fresh AI-generated trip.
type GenerateParams struct {
	Destination         string
	StartDate           string
	EndDate             string
	Budget              *float64
	BudgetTier          *string
	TravelStyle         *string
	Interests           []string
	SpecialRequirements *string
	Title               *string
}

// ItineraryService generates and refines trips through an ai.Generator.
type ItineraryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   ai.Generator
	logger      logging.Logger
}

func NewItineraryService(db *sql.DB, m repomanager.RepositoryManager, g ai.Generator, logger logging.Logger) *ItineraryService {
	return &ItineraryService{db: db, repomanager: m, generator: g, logger: logger}
}

// Generate asks the model for a day-by-day plan and persists the whole
// trip in one transaction.
func (s *ItineraryService) Generate(ctx context.Context, userID string, params GenerateParams) (*TripDetail, error) {
	if params.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", common.ErrorValidation)
	}
	if err := validateDateRange(params.StartDate, params.EndDate); err != nil {
		return nil, err
	}

	start, _ := time.Parse(dateLayout, params.StartDate)
	end, _ := time.Parse(dateLayout, params.EndDate)
	numDays := int(end.Sub(start).Hours()/24) + 1
	if numDays > maxTripDays {
		return nil, fmt.Errorf("%w: trip duration cannot exceed %d days", common.ErrorValidation, maxTripDays)
	}

	itinerary, err := s.generator.GenerateItinerary(ctx, ai.GenerateParams{
		Destination:         params.Destination,
		StartDate:           params.StartDate,
		EndDate:             params.EndDate,
		NumDays:             numDays,
		Budget:              params.Budget,
		BudgetTier:          params.BudgetTier,
		TravelStyle:         params.TravelStyle,
		Interests:           params.Interests,
		SpecialRequirements: params.SpecialRequirements,
	})
	if err != nil {
		return nil, fmt.Errorf("generate itinerary: %w", err)
	}

	title := params.Destination + " Trip"
	if params.Title != nil && *params.Title != "" {
		title = *params.Title
	}

	preferences := map[string]any{}
	if params.BudgetTier != nil {
		preferences["budget_tier"] = *params.BudgetTier
	}
	if params.TravelStyle != nil {
		preferences["travel_style"] = *params.TravelStyle
	}
	if len(params.Interests) > 0 {
		preferences["interests"] = params.Interests
	}
	if params.SpecialRequirements != nil {
		preferences["special_requirements"] = *params.SpecialRequirements
	}

	trip := &models.Trip{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Title:               title,
		Destination:         params.Destination,
		StartDate:           params.StartDate,
		EndDate:             params.EndDate,
		Budget:              params.Budget,
		BudgetTier:          params.BudgetTier,
		TravelStyle:         params.TravelStyle,
		Interests:           params.Interests,
		SpecialRequirements: params.SpecialRequirements,
		Preferences:         preferences,
		IsGenerated:         true,
	}
	trip.LocalUpdatedAt = time.Now().UTC()
	trip.IsSynced = true

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Trips(tx).Insert(ctx, trip); err != nil {
			return err
		}
		return s.insertItinerary(ctx, tx, trip.ID, itinerary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "itinerary generated",
		"trip_id", trip.ID, "destination", params.Destination, "days", numDays)

	return loadTripDetail(ctx, s.db, s.repomanager, trip)
}

// Refine rewrites an owned trip's itinerary according to a natural-language
// request. The existing days are replaced wholesale by the model's output.
func (s *ItineraryService) Refine(ctx context.Context, userID, tripID, message string) (*TripDetail, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", common.ErrorValidation)
	}

	trip, err := s.repomanager.Trips(s.db).GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, common.ErrorForbidden
	}

	current, err := s.currentItinerary(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(current.Days) == 0 {
		return nil, fmt.Errorf("%w: trip has no itinerary to refine", common.ErrorValidation)
	}

	numDays := len(current.Days)
	if start, err := time.Parse(dateLayout, trip.StartDate); err == nil {
		if end, err := time.Parse(dateLayout, trip.EndDate); err == nil {
			numDays = int(end.Sub(start).Hours()/24) + 1
		}
	}

	tripCtx := ai.TripContext{
		Destination: trip.Destination,
		NumDays:     numDays,
		Budget:      trip.Budget,
		BudgetTier:  trip.BudgetTier,
		TravelStyle: trip.TravelStyle,
		Interests:   trip.Interests,
	}

	refined, err := s.generator.RefineItinerary(ctx, current, message, tripCtx)
	if err != nil {
		return nil, fmt.Errorf("refine itinerary: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Days(tx).DeleteByTrip(ctx, tripID); err != nil {
			return err
		}
		if err := s.insertItinerary(ctx, tx, tripID, refined); err != nil {
			return err
		}
		trip.LocalUpdatedAt = time.Now().UTC()
		return s.repomanager.Trips(tx).Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "itinerary refined", "trip_id", tripID)

	return loadTripDetail(ctx, s.db, s.repomanager, trip)
}

// currentItinerary serializes the stored days and activities into the
// model-facing shape.
func (s *ItineraryService) currentItinerary(ctx context.Context, tripID string) (*ai.Itinerary, error) {
	detail, err := loadTripDetail(ctx, s.db, s.repomanager, &models.Trip{ID: tripID})
	if err != nil {
		return nil, err
	}

	out := &ai.Itinerary{}
	for _, d := range detail.Days {
		day := ai.ItineraryDay{
			DayNumber: d.Day.DayNumber,
			Date:      d.Day.Date,
			Title:     d.Day.Title,
		}
		for _, a := range d.Activities {
			day.Activities = append(day.Activities, ai.ItineraryActivity{
				Time:          a.Time,
				Title:         a.Title,
				Description:   a.Description,
				Location:      a.Location,
				EstimatedCost: a.EstimatedCost,
				Notes:         a.Notes,
				IsCompleted:   a.IsCompleted,
			})
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

func (s *ItineraryService) insertItinerary(ctx context.Context, tx dbx.DBTX, tripID string, itinerary *ai.Itinerary) error {
	now := time.Now().UTC()
	dayRepo := s.repomanager.Days(tx)
	actRepo := s.repomanager.Activities(tx)

	for _, dayData := range itinerary.Days {
		title := dayData.Title
		if title == "" {
			title = fmt.Sprintf("Day %d", dayData.DayNumber)
		}
		day := &models.Day{
			ID:        uuid.New().String(),
			TripID:    tripID,
			DayNumber: dayData.DayNumber,
			Date:      dayData.Date,
			Title:     title,
		}
		day.LocalUpdatedAt = now
		day.IsSynced = true
		if err := dayRepo.Insert(ctx, day); err != nil {
			return err
		}

		for _, actData := range dayData.Activities {
			act := &models.Activity{
				ID:            uuid.New().String(),
				DayID:         day.ID,
				Time:          actData.Time,
				Title:         actData.Title,
				Description:   actData.Description,
				Location:      actData.Location,
				EstimatedCost: actData.EstimatedCost,
				Notes:         actData.Notes,
				IsCompleted:   actData.IsCompleted,
			}
			act.LocalUpdatedAt = now
			act.IsSynced = true
			if err := actRepo.Insert(ctx, act); err != nil {
				return err
			}
		}
	}
	return nil
}
