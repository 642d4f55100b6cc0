package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/repositories/activities"
	"github.com/tripcraft/tripcraft/internal/server/repositories/budgetitems"
	"github.com/tripcraft/tripcraft/internal/server/repositories/days"
	"github.com/tripcraft/tripcraft/internal/server/repositories/notes"
	"github.com/tripcraft/tripcraft/internal/server/repositories/refreshtokens"
	"github.com/tripcraft/tripcraft/internal/server/repositories/trips"
	"github.com/tripcraft/tripcraft/internal/server/repositories/users"
)

// memStore is an in-memory stand-in for the record store, shared by the
// fake repositories below so ownership chains resolve across entity types.
type memStore struct {
	trips       map[string]models.Trip
	days        map[string]models.Day
	activities  map[string]models.Activity
	budgetItems map[string]models.BudgetItem
	notes       map[string]models.Note

	// aborted mimics Postgres transaction poisoning: once a statement
	// fails (here, a non-uuid id), every later statement fails too.
	aborted bool
}

func newMemStore() *memStore {
	return &memStore{
		trips:       map[string]models.Trip{},
		days:        map[string]models.Day{},
		activities:  map[string]models.Activity{},
		budgetItems: map[string]models.BudgetItem{},
		notes:       map[string]models.Note{},
	}
}

func (s *memStore) cast(id string) error {
	if s.aborted {
		return errors.New("current transaction is aborted, commands ignored until end of transaction block")
	}
	if _, err := uuid.Parse(id); err != nil {
		s.aborted = true
		return fmt.Errorf("invalid input syntax for type uuid: %q", id)
	}
	return nil
}

func (s *memStore) tripOwner(tripID string) (string, bool) {
	t, ok := s.trips[tripID]
	if !ok {
		return "", false
	}
	return t.UserID, true
}

type memTrips struct{ s *memStore }

func (r memTrips) GetByID(_ context.Context, id string) (*models.Trip, error) {
	if err := r.s.cast(id); err != nil {
		return nil, err
	}
	t, ok := r.s.trips[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r memTrips) Insert(_ context.Context, t *models.Trip) error {
	if _, ok := r.s.trips[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.trips[t.ID] = *t
	return nil
}

func (r memTrips) Update(_ context.Context, t *models.Trip) error {
	if _, ok := r.s.trips[t.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.trips[t.ID] = *t
	return nil
}

func (r memTrips) Delete(_ context.Context, id string) error {
	delete(r.s.trips, id)
	for dayID, d := range r.s.days {
		if d.TripID == id {
			for actID, a := range r.s.activities {
				if a.DayID == dayID {
					delete(r.s.activities, actID)
				}
			}
			delete(r.s.days, dayID)
		}
	}
	for itemID, b := range r.s.budgetItems {
		if b.TripID == id {
			delete(r.s.budgetItems, itemID)
		}
	}
	for noteID, n := range r.s.notes {
		if n.TripID == id {
			delete(r.s.notes, noteID)
		}
	}
	return nil
}

func (r memTrips) ListByUser(_ context.Context, userID string) ([]*models.Trip, error) {
	var out []*models.Trip
	for id := range r.s.trips {
		t := r.s.trips[id]
		if t.UserID == userID {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r memTrips) SelectUpdatedSince(_ context.Context, userID string, since time.Time) ([]*models.Trip, error) {
	var out []*models.Trip
	for id := range r.s.trips {
		t := r.s.trips[id]
		if t.UserID == userID && t.LocalUpdatedAt.After(since) {
			out = append(out, &t)
		}
	}
	return out, nil
}

type memDays struct{ s *memStore }

func (r memDays) GetByID(_ context.Context, id string) (*models.Day, error) {
	if err := r.s.cast(id); err != nil {
		return nil, err
	}
	d, ok := r.s.days[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (r memDays) Insert(_ context.Context, d *models.Day) error {
	if _, ok := r.s.days[d.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.days[d.ID] = *d
	return nil
}

func (r memDays) Update(_ context.Context, d *models.Day) error {
	if _, ok := r.s.days[d.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.days[d.ID] = *d
	return nil
}

func (r memDays) Delete(_ context.Context, id string) error {
	delete(r.s.days, id)
	for actID, a := range r.s.activities {
		if a.DayID == id {
			delete(r.s.activities, actID)
		}
	}
	return nil
}

func (r memDays) DeleteByTrip(_ context.Context, tripID string) error {
	for id, d := range r.s.days {
		if d.TripID == tripID {
			_ = r.Delete(context.Background(), id)
		}
	}
	return nil
}

func (r memDays) ListByTrip(_ context.Context, tripID string) ([]*models.Day, error) {
	var out []*models.Day
	for id := range r.s.days {
		d := r.s.days[id]
		if d.TripID == tripID {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r memDays) SelectUpdatedSince(_ context.Context, userID string, since time.Time) ([]*models.Day, error) {
	var out []*models.Day
	for id := range r.s.days {
		d := r.s.days[id]
		owner, ok := r.s.tripOwner(d.TripID)
		if ok && owner == userID && d.LocalUpdatedAt.After(since) {
			out = append(out, &d)
		}
	}
	return out, nil
}

type memActivities struct{ s *memStore }

func (r memActivities) GetByID(_ context.Context, id string) (*models.Activity, error) {
	if err := r.s.cast(id); err != nil {
		return nil, err
	}
	a, ok := r.s.activities[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r memActivities) Insert(_ context.Context, a *models.Activity) error {
	if _, ok := r.s.activities[a.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.activities[a.ID] = *a
	return nil
}

func (r memActivities) Update(_ context.Context, a *models.Activity) error {
	if _, ok := r.s.activities[a.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.activities[a.ID] = *a
	return nil
}

func (r memActivities) Delete(_ context.Context, id string) error {
	delete(r.s.activities, id)
	return nil
}

func (r memActivities) ListByDay(_ context.Context, dayID string) ([]*models.Activity, error) {
	var out []*models.Activity
	for id := range r.s.activities {
		a := r.s.activities[id]
		if a.DayID == dayID {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r memActivities) SelectUpdatedSince(_ context.Context, userID string, since time.Time) ([]*models.Activity, error) {
	var out []*models.Activity
	for id := range r.s.activities {
		a := r.s.activities[id]
		d, ok := r.s.days[a.DayID]
		if !ok {
			continue
		}
		owner, ok := r.s.tripOwner(d.TripID)
		if ok && owner == userID && a.LocalUpdatedAt.After(since) {
			out = append(out, &a)
		}
	}
	return out, nil
}

type memBudgetItems struct{ s *memStore }

func (r memBudgetItems) GetByID(_ context.Context, id string) (*models.BudgetItem, error) {
	if err := r.s.cast(id); err != nil {
		return nil, err
	}
	b, ok := r.s.budgetItems[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (r memBudgetItems) Insert(_ context.Context, b *models.BudgetItem) error {
	if _, ok := r.s.budgetItems[b.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.budgetItems[b.ID] = *b
	return nil
}

func (r memBudgetItems) Update(_ context.Context, b *models.BudgetItem) error {
	if _, ok := r.s.budgetItems[b.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.budgetItems[b.ID] = *b
	return nil
}

func (r memBudgetItems) Delete(_ context.Context, id string) error {
	delete(r.s.budgetItems, id)
	return nil
}

func (r memBudgetItems) ListByTrip(_ context.Context, tripID string) ([]*models.BudgetItem, error) {
	var out []*models.BudgetItem
	for id := range r.s.budgetItems {
		b := r.s.budgetItems[id]
		if b.TripID == tripID {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r memBudgetItems) SelectUpdatedSince(_ context.Context, userID string, since time.Time) ([]*models.BudgetItem, error) {
	var out []*models.BudgetItem
	for id := range r.s.budgetItems {
		b := r.s.budgetItems[id]
		owner, ok := r.s.tripOwner(b.TripID)
		if ok && owner == userID && b.LocalUpdatedAt.After(since) {
			out = append(out, &b)
		}
	}
	return out, nil
}

type memNotes struct{ s *memStore }

func (r memNotes) GetByID(_ context.Context, id string) (*models.Note, error) {
	if err := r.s.cast(id); err != nil {
		return nil, err
	}
	n, ok := r.s.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &n, nil
}

func (r memNotes) Insert(_ context.Context, n *models.Note) error {
	if _, ok := r.s.notes[n.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.s.notes[n.ID] = *n
	return nil
}

func (r memNotes) Update(_ context.Context, n *models.Note) error {
	if _, ok := r.s.notes[n.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.notes[n.ID] = *n
	return nil
}

func (r memNotes) Delete(_ context.Context, id string) error {
	delete(r.s.notes, id)
	return nil
}

func (r memNotes) ListByTrip(_ context.Context, tripID string) ([]*models.Note, error) {
	var out []*models.Note
	for id := range r.s.notes {
		n := r.s.notes[id]
		if n.TripID == tripID {
			out = append(out, &n)
		}
	}
	return out, nil
}

func (r memNotes) SelectUpdatedSince(_ context.Context, userID string, since time.Time) ([]*models.Note, error) {
	var out []*models.Note
	for id := range r.s.notes {
		n := r.s.notes[id]
		owner, ok := r.s.tripOwner(n.TripID)
		if ok && owner == userID && n.LocalUpdatedAt.After(since) {
			out = append(out, &n)
		}
	}
	return out, nil
}

// memManager hands out the fake repositories regardless of the database
// handle it is given.
type memManager struct{ s *memStore }

func (m memManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m memManager) Users(dbx.DBTX) users.Repository                 { return nil }
func (m memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return nil }
func (m memManager) Trips(dbx.DBTX) trips.Repository                 { return memTrips{m.s} }
func (m memManager) Days(dbx.DBTX) days.Repository                   { return memDays{m.s} }
func (m memManager) Activities(dbx.DBTX) activities.Repository       { return memActivities{m.s} }
func (m memManager) BudgetItems(dbx.DBTX) budgetitems.Repository     { return memBudgetItems{m.s} }
func (m memManager) Notes(dbx.DBTX) notes.Repository                 { return memNotes{m.s} }
