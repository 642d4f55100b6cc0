package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/repositories/repomanager"
)

// TripDetail is a trip with everything under it, days ordered by number.
type TripDetail struct {
	Trip        *models.Trip
	Days        []*DayDetail
	BudgetItems []*models.BudgetItem
	Notes       []*models.Note
}

type DayDetail struct {
	Day        *models.Day
	Activities []*models.Activity
}

// TripParams carries the mutable trip fields for create/update. On update,
// nil fields are left untouched.
type TripParams struct {
	Title               *string
	Destination         *string
	StartDate           *string
	EndDate             *string
	Budget              *float64
	BudgetTier          *string
	TravelStyle         *string
	Interests           []string
	SpecialRequirements *string
}

type TripService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTripService(db *sql.DB, m repomanager.RepositoryManager) *TripService {
	return &TripService{db: db, repomanager: m}
}

const dateLayout = "2006-01-02"

func validateDateRange(start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("%w: bad start_date %q", common.ErrorValidation, start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("%w: bad end_date %q", common.ErrorValidation, end)
	}
	if e.Before(s) {
		return fmt.Errorf("%w: end date before start date", common.ErrorValidation)
	}
	return nil
}

// Create persists a new trip for userID. Title, start and end dates are
// required.
func (s *TripService) Create(ctx context.Context, userID string, params TripParams) (*TripDetail, error) {
	if params.Title == nil || *params.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if params.StartDate == nil || params.EndDate == nil {
		return nil, fmt.Errorf("%w: start_date and end_date are required", common.ErrorValidation)
	}
	if err := validateDateRange(*params.StartDate, *params.EndDate); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Title:               *params.Title,
		Destination:         stringOrEmpty(params.Destination),
		StartDate:           *params.StartDate,
		EndDate:             *params.EndDate,
		Budget:              params.Budget,
		BudgetTier:          params.BudgetTier,
		TravelStyle:         params.TravelStyle,
		Interests:           params.Interests,
		SpecialRequirements: params.SpecialRequirements,
		Preferences:         map[string]any{},
	}
	trip.LocalUpdatedAt = time.Now().UTC()
	trip.IsSynced = true

	if err := s.repomanager.Trips(s.db).Insert(ctx, trip); err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, trip)
}

// List returns all of the user's trips with nested detail, newest first.
func (s *TripService) List(ctx context.Context, userID string) ([]*TripDetail, error) {
	rows, err := s.repomanager.Trips(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*TripDetail, 0, len(rows))
	for _, trip := range rows {
		detail, err := s.loadDetail(ctx, trip)
		if err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	return result, nil
}

// Get returns one owned trip with nested detail. A foreign trip yields
// ErrorForbidden, a missing one ErrorNotFound.
func (s *TripService) Get(ctx context.Context, userID, tripID string) (*TripDetail, error) {
	trip, err := s.getOwned(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, trip)
}

// Update applies the non-nil fields of params to an owned trip.
func (s *TripService) Update(ctx context.Context, userID, tripID string, params TripParams) (*TripDetail, error) {
	trip, err := s.getOwned(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		trip.Title = *params.Title
	}
	if params.Destination != nil {
		trip.Destination = *params.Destination
	}
	if params.StartDate != nil {
		trip.StartDate = *params.StartDate
	}
	if params.EndDate != nil {
		trip.EndDate = *params.EndDate
	}
	if err := validateDateRange(trip.StartDate, trip.EndDate); err != nil {
		return nil, err
	}
	if params.Budget != nil {
		trip.Budget = params.Budget
	}
	if params.BudgetTier != nil {
		trip.BudgetTier = params.BudgetTier
	}
	if params.TravelStyle != nil {
		trip.TravelStyle = params.TravelStyle
	}
	if params.Interests != nil {
		trip.Interests = params.Interests
	}
	if params.SpecialRequirements != nil {
		trip.SpecialRequirements = params.SpecialRequirements
	}
	trip.LocalUpdatedAt = time.Now().UTC()

	if err := s.repomanager.Trips(s.db).Update(ctx, trip); err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, trip)
}

// Delete removes an owned trip; children cascade at the database level.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	if _, err := s.getOwned(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repomanager.Trips(s.db).Delete(ctx, tripID)
}

func (s *TripService) getOwned(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.repomanager.Trips(s.db).GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	if trip.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return trip, nil
}

func (s *TripService) loadDetail(ctx context.Context, trip *models.Trip) (*TripDetail, error) {
	return loadTripDetail(ctx, s.db, s.repomanager, trip)
}

// loadTripDetail assembles the nested response shape shared by the trip,
// generation, and refinement endpoints.
func loadTripDetail(ctx context.Context, db dbx.DBTX, m repomanager.RepositoryManager, trip *models.Trip) (*TripDetail, error) {
	dayRows, err := m.Days(db).ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(dayRows, func(i, j int) bool { return dayRows[i].DayNumber < dayRows[j].DayNumber })

	daysOut := make([]*DayDetail, 0, len(dayRows))
	for _, day := range dayRows {
		acts, err := m.Activities(db).ListByDay(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		daysOut = append(daysOut, &DayDetail{Day: day, Activities: acts})
	}

	items, err := m.BudgetItems(db).ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	notes, err := m.Notes(db).ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	return &TripDetail{Trip: trip, Days: daysOut, BudgetItems: items, Notes: notes}, nil
}

func stringOrEmpty(v *string) string {
	if v != nil {
		return *v
	}
	return ""
}
