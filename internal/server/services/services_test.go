package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/config"
	"github.com/tripcraft/tripcraft/internal/server/models"
	activitiesrepo "github.com/tripcraft/tripcraft/internal/server/repositories/activities"
	budgetitemsrepo "github.com/tripcraft/tripcraft/internal/server/repositories/budgetitems"
	daysrepo "github.com/tripcraft/tripcraft/internal/server/repositories/days"
	notesrepo "github.com/tripcraft/tripcraft/internal/server/repositories/notes"
	refreshtokensrepo "github.com/tripcraft/tripcraft/internal/server/repositories/refreshtokens"
	tripsrepo "github.com/tripcraft/tripcraft/internal/server/repositories/trips"
	usersrepo "github.com/tripcraft/tripcraft/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testServiceConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.RefreshTokenValidityDuration = 2 * time.Hour
	return cfg
}

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }

// --- fake repositories ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	getOut    *models.User
	getErr    error
	deleted   []string
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRefreshRepo struct {
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	created   []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(context.Context, string) error { return f.delErr }

type fakeTripsRepo struct {
	byID     map[string]*models.Trip
	inserted []*models.Trip
	updated  []*models.Trip
	deleted  []string
}

func newFakeTripsRepo() *fakeTripsRepo {
	return &fakeTripsRepo{byID: map[string]*models.Trip{}}
}

func (f *fakeTripsRepo) GetByID(_ context.Context, id string) (*models.Trip, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTripsRepo) Insert(_ context.Context, t *models.Trip) error {
	f.inserted = append(f.inserted, t)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTripsRepo) Update(_ context.Context, t *models.Trip) error {
	f.updated = append(f.updated, t)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTripsRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

func (f *fakeTripsRepo) ListByUser(_ context.Context, userID string) ([]*models.Trip, error) {
	var out []*models.Trip
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTripsRepo) SelectUpdatedSince(context.Context, string, time.Time) ([]*models.Trip, error) {
	return nil, nil
}

type fakeDaysRepo struct {
	byTrip        map[string][]*models.Day
	inserted      []*models.Day
	deletedByTrip []string
}

func newFakeDaysRepo() *fakeDaysRepo { return &fakeDaysRepo{byTrip: map[string][]*models.Day{}} }

func (f *fakeDaysRepo) GetByID(context.Context, string) (*models.Day, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeDaysRepo) Insert(_ context.Context, d *models.Day) error {
	f.inserted = append(f.inserted, d)
	f.byTrip[d.TripID] = append(f.byTrip[d.TripID], d)
	return nil
}
func (f *fakeDaysRepo) Update(context.Context, *models.Day) error { return nil }
func (f *fakeDaysRepo) Delete(context.Context, string) error      { return nil }
func (f *fakeDaysRepo) DeleteByTrip(_ context.Context, tripID string) error {
	f.deletedByTrip = append(f.deletedByTrip, tripID)
	delete(f.byTrip, tripID)
	return nil
}
func (f *fakeDaysRepo) ListByTrip(_ context.Context, tripID string) ([]*models.Day, error) {
	return f.byTrip[tripID], nil
}
func (f *fakeDaysRepo) SelectUpdatedSince(context.Context, string, time.Time) ([]*models.Day, error) {
	return nil, nil
}

type fakeActivitiesRepo struct {
	byDay    map[string][]*models.Activity
	inserted []*models.Activity
}

func newFakeActivitiesRepo() *fakeActivitiesRepo {
	return &fakeActivitiesRepo{byDay: map[string][]*models.Activity{}}
}

func (f *fakeActivitiesRepo) GetByID(context.Context, string) (*models.Activity, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeActivitiesRepo) Insert(_ context.Context, a *models.Activity) error {
	f.inserted = append(f.inserted, a)
	f.byDay[a.DayID] = append(f.byDay[a.DayID], a)
	return nil
}
func (f *fakeActivitiesRepo) Update(context.Context, *models.Activity) error { return nil }
func (f *fakeActivitiesRepo) Delete(context.Context, string) error           { return nil }
func (f *fakeActivitiesRepo) ListByDay(_ context.Context, dayID string) ([]*models.Activity, error) {
	return f.byDay[dayID], nil
}
func (f *fakeActivitiesRepo) SelectUpdatedSince(context.Context, string, time.Time) ([]*models.Activity, error) {
	return nil, nil
}

type fakeBudgetItemsRepo struct {
	byTrip map[string][]*models.BudgetItem
}

func newFakeBudgetItemsRepo() *fakeBudgetItemsRepo {
	return &fakeBudgetItemsRepo{byTrip: map[string][]*models.BudgetItem{}}
}

func (f *fakeBudgetItemsRepo) GetByID(context.Context, string) (*models.BudgetItem, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeBudgetItemsRepo) Insert(_ context.Context, b *models.BudgetItem) error {
	f.byTrip[b.TripID] = append(f.byTrip[b.TripID], b)
	return nil
}
func (f *fakeBudgetItemsRepo) Update(context.Context, *models.BudgetItem) error { return nil }
func (f *fakeBudgetItemsRepo) Delete(context.Context, string) error             { return nil }
func (f *fakeBudgetItemsRepo) ListByTrip(_ context.Context, tripID string) ([]*models.BudgetItem, error) {
	return f.byTrip[tripID], nil
}
func (f *fakeBudgetItemsRepo) SelectUpdatedSince(context.Context, string, time.Time) ([]*models.BudgetItem, error) {
	return nil, nil
}

type fakeNotesRepo struct{ byTrip map[string][]*models.Note }

func newFakeNotesRepo() *fakeNotesRepo { return &fakeNotesRepo{byTrip: map[string][]*models.Note{}} }

func (f *fakeNotesRepo) GetByID(context.Context, string) (*models.Note, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeNotesRepo) Insert(_ context.Context, n *models.Note) error {
	f.byTrip[n.TripID] = append(f.byTrip[n.TripID], n)
	return nil
}
func (f *fakeNotesRepo) Update(context.Context, *models.Note) error { return nil }
func (f *fakeNotesRepo) Delete(context.Context, string) error       { return nil }
func (f *fakeNotesRepo) ListByTrip(_ context.Context, tripID string) ([]*models.Note, error) {
	return f.byTrip[tripID], nil
}
func (f *fakeNotesRepo) SelectUpdatedSince(context.Context, string, time.Time) ([]*models.Note, error) {
	return nil, nil
}

type fakeRepoManager struct {
	users       *fakeUsersRepo
	refresh     *fakeRefreshRepo
	trips       *fakeTripsRepo
	days        *fakeDaysRepo
	activities  *fakeActivitiesRepo
	budgetItems *fakeBudgetItemsRepo
	notes       *fakeNotesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       &fakeUsersRepo{},
		refresh:     &fakeRefreshRepo{},
		trips:       newFakeTripsRepo(),
		days:        newFakeDaysRepo(),
		activities:  newFakeActivitiesRepo(),
		budgetItems: newFakeBudgetItemsRepo(),
		notes:       newFakeNotesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.refresh }
func (m *fakeRepoManager) Trips(dbx.DBTX) tripsrepo.Repository                 { return m.trips }
func (m *fakeRepoManager) Days(dbx.DBTX) daysrepo.Repository                   { return m.days }
func (m *fakeRepoManager) Activities(dbx.DBTX) activitiesrepo.Repository       { return m.activities }
func (m *fakeRepoManager) BudgetItems(dbx.DBTX) budgetitemsrepo.Repository     { return m.budgetItems }
func (m *fakeRepoManager) Notes(dbx.DBTX) notesrepo.Repository                 { return m.notes }
