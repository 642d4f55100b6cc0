package sync

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/models"
)

const (
	testUser  = "user-1"
	otherUser = "user-2"
)

// Record ids must be uuids: the reconciler rejects anything the store's
// uuid columns would choke on.
const (
	tripA        = "11111111-1111-4111-8111-111111111111"
	dayA         = "22222222-2222-4222-8222-222222222222"
	activityA    = "33333333-3333-4333-8333-333333333333"
	budgetA      = "44444444-4444-4444-8444-444444444444"
	noteA        = "55555555-5555-4555-8555-555555555555"
	dayB         = "66666666-6666-4666-8666-666666666666"
	tripOld      = "77777777-7777-4777-8777-777777777777"
	tripFresh    = "88888888-8888-4888-8888-888888888888"
	tripForeign  = "99999999-9999-4999-8999-999999999999"
	ghostID      = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	absentTripID = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	absentDayID  = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
)

func newTestService(t *testing.T) (*Service, *memStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := newMemStore()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(db, memManager{store}, logger), store, mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func seedTrip(store *memStore, id, userID string, updatedAt time.Time) {
	trip := models.Trip{
		ID:          id,
		UserID:      userID,
		Title:       "Lisbon long weekend",
		Destination: "Lisbon",
		StartDate:   "2025-05-01",
		EndDate:     "2025-05-04",
		Preferences: map[string]any{},
	}
	trip.LocalUpdatedAt = updatedAt
	trip.IsSynced = true
	store.trips[id] = trip
}

func strptr(s string) *string   { return &s }
func intptr(i int) *int         { return &i }
func f64ptr(f float64) *float64 { return &f }
func boolptr(b bool) *bool      { return &b }

func TestSyncEmptyRequest(t *testing.T) {
	svc, _, mock := newTestService(t)
	expectTx(mock)

	resp, err := svc.Sync(context.Background(), testUser, &Request{})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Zero(t, resp.TripsDownloaded)
	assert.Zero(t, resp.ConflictsResolved)
	assert.Empty(t, resp.Conflicts)
	assert.Empty(t, resp.ServerData.Trips)
	assert.NotEmpty(t, resp.SyncTimestamp)
	_, parseErr := time.Parse(time.RFC3339, resp.SyncTimestamp)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRejectsUnknownStrategy(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Sync(context.Background(), testUser, &Request{
		ConflictResolution: "latest_wins",
	})
	require.Error(t, err)
}

func TestSyncCreatesNewTrip(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope:    Envelope{ID: tripA, LocalUpdatedAt: now},
			Title:       strptr("Kyoto in autumn"),
			Destination: strptr("Kyoto"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Empty(t, resp.Conflicts)

	created, ok := store.trips[tripA]
	require.True(t, ok)
	assert.Equal(t, testUser, created.UserID)
	assert.Equal(t, "Kyoto in autumn", created.Title)
	assert.True(t, created.IsSynced)
}

func TestSyncCreateFillsDefaults(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{Envelope: Envelope{ID: tripA, LocalUpdatedAt: now}}},
	})
	require.NoError(t, err)

	created := store.trips[tripA]
	assert.Equal(t, "Untitled Trip", created.Title)
	assert.Equal(t, "", created.Destination)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), created.StartDate)
	assert.NotNil(t, created.Preferences)
	assert.False(t, created.IsGenerated)
}

func TestSyncNewerWinsRejectsStaleWrite(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, testUser, serverTime)

	stale := serverTime.Add(-time.Hour).Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		ConflictResolution: StrategyNewerWins,
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: stale},
			Title:    strptr("should not land"),
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Equal(t, 1, resp.ConflictsResolved)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "trip", resp.Conflicts[0].EntityType)
	assert.Equal(t, tripA, resp.Conflicts[0].EntityID)
	assert.Equal(t, "server_wins", resp.Conflicts[0].Resolution)
	assert.Equal(t, "Lisbon long weekend", store.trips[tripA].Title)
}

func TestSyncNewerWinsTieFavorsServer(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, testUser, serverTime)

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: serverTime.Format(time.RFC3339)},
			Title:    strptr("tied write"),
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Equal(t, "Lisbon long weekend", store.trips[tripA].Title)
}

func TestSyncClientWinsAppliesStaleWrite(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, testUser, serverTime)

	stale := serverTime.Add(-time.Hour)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		ConflictResolution: StrategyClientWins,
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: stale.Format(time.RFC3339)},
			Title:    strptr("client version"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "client version", store.trips[tripA].Title)
	assert.Equal(t, stale, store.trips[tripA].LocalUpdatedAt)
}

func TestSyncServerWinsRejectsSilently(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, testUser, serverTime)

	fresh := serverTime.Add(time.Hour).Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		ConflictResolution: StrategyServerWins,
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: fresh},
			Title:    strptr("newer but discarded"),
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "Lisbon long weekend", store.trips[tripA].Title)
}

func TestSyncSparsePatchLeavesAbsentFields(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, testUser, serverTime)

	fresh := serverTime.Add(time.Hour).Format(time.RFC3339)
	_, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: fresh},
			Title:    strptr("Renamed"),
		}},
	})
	require.NoError(t, err)

	updated := store.trips[tripA]
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Lisbon", updated.Destination)
	assert.Equal(t, "2025-05-01", updated.StartDate)
}

func TestSyncOwnershipIsolation(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	serverTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripA, otherUser, serverTime)

	fresh := serverTime.Add(time.Hour).Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		ConflictResolution: StrategyClientWins,
		Trips: []TripRecord{
			{Envelope: Envelope{ID: tripA, LocalUpdatedAt: fresh}, Title: strptr("hijack")},
			{Envelope: Envelope{ID: tripA, LocalUpdatedAt: fresh, IsDeleted: true}},
		},
		Days: []DayRecord{{
			Envelope: Envelope{ID: dayA, LocalUpdatedAt: fresh},
			TripID:   tripA,
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Zero(t, resp.DaysUploaded)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, "Lisbon long weekend", store.trips[tripA].Title)
	assert.Empty(t, store.days)
}

func TestSyncTombstoneDeletesOwnedTrip(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	seedTrip(store, tripA, testUser, time.Now().UTC())

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: time.Now().UTC().Format(time.RFC3339), IsDeleted: true},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Empty(t, store.trips)
}

func TestSyncTombstoneForMissingRecordIsNoop(t *testing.T) {
	svc, _, mock := newTestService(t)
	expectTx(mock)

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: ghostID, LocalUpdatedAt: time.Now().UTC().Format(time.RFC3339), IsDeleted: true},
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Empty(t, resp.Conflicts)
}

func TestSyncCascadeCreateInOneCall(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: now},
			Title:    strptr("Rome"),
		}},
		Days: []DayRecord{{
			Envelope:  Envelope{ID: dayA, LocalUpdatedAt: now},
			TripID:    tripA,
			DayNumber: intptr(1),
			Date:      strptr("2025-06-01"),
		}},
		Activities: []ActivityRecord{{
			Envelope: Envelope{ID: activityA, LocalUpdatedAt: now},
			DayID:    dayA,
			Title:    strptr("Colosseum"),
		}},
		BudgetItems: []BudgetItemRecord{{
			Envelope: Envelope{ID: budgetA, LocalUpdatedAt: now},
			TripID:   tripA,
			Category: strptr("transport"),
			Amount:   f64ptr(120),
		}},
		Notes: []NoteRecord{{
			Envelope: Envelope{ID: noteA, LocalUpdatedAt: now},
			TripID:   tripA,
			Content:  strptr("book tickets early"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Equal(t, 1, resp.DaysUploaded)
	assert.Equal(t, 1, resp.ActivitiesUploaded)
	assert.Equal(t, 1, resp.BudgetItemsUploaded)
	assert.Equal(t, 1, resp.NotesUploaded)

	assert.Contains(t, store.days, dayA)
	assert.Contains(t, store.activities, activityA)
	assert.Contains(t, store.budgetItems, budgetA)
	assert.Contains(t, store.notes, noteA)
	assert.Equal(t, tripA, store.days[dayA].TripID)
	assert.Equal(t, dayA, store.activities[activityA].DayID)
}

func TestSyncOrphanChildIsSkipped(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Days: []DayRecord{{
			Envelope: Envelope{ID: dayA, LocalUpdatedAt: now},
			TripID:   absentTripID,
		}},
		Activities: []ActivityRecord{{
			Envelope: Envelope{ID: activityA, LocalUpdatedAt: now},
			DayID:    absentDayID,
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.DaysUploaded)
	assert.Zero(t, resp.ActivitiesUploaded)
	assert.Empty(t, store.days)
	assert.Empty(t, store.activities)
}

func TestSyncIdempotentReplay(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	req := &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: now},
			Title:    strptr("Oslo"),
		}},
	}

	first, err := svc.Sync(context.Background(), testUser, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TripsUploaded)

	// Replaying the same payload ties on timestamp: the server keeps its
	// copy and the end state is unchanged.
	second, err := svc.Sync(context.Background(), testUser, req)
	require.NoError(t, err)
	assert.Zero(t, second.TripsUploaded)
	assert.Equal(t, "Oslo", store.trips[tripA].Title)
	assert.Len(t, store.trips, 1)
}

func TestSyncDownloadRespectsWatermark(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	watermark := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTrip(store, tripOld, testUser, watermark.Add(-time.Hour))
	seedTrip(store, tripFresh, testUser, watermark.Add(time.Hour))
	seedTrip(store, tripForeign, otherUser, watermark.Add(time.Hour))

	day := models.Day{ID: dayA, TripID: tripFresh, DayNumber: 1, Date: "2025-05-01"}
	day.ServerID = strptr("srv-day-1")
	day.IsSynced = true
	day.LocalUpdatedAt = watermark.Add(2 * time.Hour)
	store.days[dayA] = day

	note := models.Note{ID: noteA, TripID: tripFresh, Content: "pack light"}
	note.IsSynced = true
	note.CreatedAt = watermark.Add(-24 * time.Hour)
	note.LocalUpdatedAt = watermark.Add(time.Hour)
	store.notes[noteA] = note

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		LastSyncAt: strptr(watermark.Format(time.RFC3339)),
	})
	require.NoError(t, err)

	require.Len(t, resp.ServerData.Trips, 1)
	assert.Equal(t, tripFresh, resp.ServerData.Trips[0].ID)
	assert.Equal(t, 1, resp.TripsDownloaded)

	require.Len(t, resp.ServerData.Days, 1)
	assert.Equal(t, dayA, resp.ServerData.Days[0].ID)
	assert.Equal(t, 1, resp.DaysDownloaded)

	// Every downloaded record carries its sync envelope.
	require.NotNil(t, resp.ServerData.Days[0].ServerID)
	assert.Equal(t, "srv-day-1", *resp.ServerData.Days[0].ServerID)
	assert.True(t, resp.ServerData.Days[0].IsSynced)

	require.Len(t, resp.ServerData.Notes, 1)
	assert.True(t, resp.ServerData.Notes[0].IsSynced)
	assert.Nil(t, resp.ServerData.Notes[0].ServerID)
	assert.Equal(t, note.CreatedAt.Format(time.RFC3339), resp.ServerData.Notes[0].CreatedAt)

	assert.Empty(t, resp.ServerData.Activities)
	assert.Zero(t, resp.ActivitiesDownloaded)
}

func TestSyncDownloadSeesSameCallUploads(t *testing.T) {
	svc, _, mock := newTestService(t)
	expectTx(mock)

	watermark := time.Now().UTC().Add(-time.Hour)
	now := time.Now().UTC().Format(time.RFC3339)

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		LastSyncAt: strptr(watermark.Format(time.RFC3339)),
		Trips: []TripRecord{{
			Envelope: Envelope{ID: tripA, LocalUpdatedAt: now},
			Title:    strptr("Lofoten"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	require.Len(t, resp.ServerData.Trips, 1)
	assert.Equal(t, tripA, resp.ServerData.Trips[0].ID)
}

func TestSyncNoWatermarkSkipsDownload(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	seedTrip(store, tripA, testUser, time.Now().UTC())

	resp, err := svc.Sync(context.Background(), testUser, &Request{})
	require.NoError(t, err)

	assert.Empty(t, resp.ServerData.Trips)
	assert.Zero(t, resp.TripsDownloaded)
}

func TestSyncPerRecordFailureDoesNotAbortBatch(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Days: []DayRecord{
			{Envelope: Envelope{ID: dayB, LocalUpdatedAt: now}, TripID: absentTripID},
		},
		Trips: []TripRecord{
			{Envelope: Envelope{ID: tripA, LocalUpdatedAt: now}, Title: strptr("still lands")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Zero(t, resp.DaysUploaded)
	assert.Contains(t, store.trips, tripA)
}

func TestSyncMalformedIDSkippedWithoutAbortingBatch(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{
			{Envelope: Envelope{ID: "not-a-uuid", LocalUpdatedAt: now}, Title: strptr("never stored")},
			{Envelope: Envelope{ID: tripA, LocalUpdatedAt: now}, Title: strptr("still lands")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TripsUploaded)
	assert.Empty(t, resp.Conflicts)
	assert.Contains(t, store.trips, tripA)
	assert.NotContains(t, store.trips, "not-a-uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncMalformedParentReferenceSkipped(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	seedTrip(store, tripA, testUser, time.Now().UTC().Add(-time.Hour))

	now := time.Now().UTC().Format(time.RFC3339)
	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Days: []DayRecord{
			{Envelope: Envelope{ID: dayA, LocalUpdatedAt: now}, TripID: "abc"},
		},
		Notes: []NoteRecord{
			{Envelope: Envelope{ID: noteA, LocalUpdatedAt: now}, TripID: tripA, Content: strptr("later pass still runs")},
		},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.DaysUploaded)
	assert.Equal(t, 1, resp.NotesUploaded)
	assert.Empty(t, store.days)
	assert.Contains(t, store.notes, noteA)
}

func TestSyncMalformedTombstoneIsNoop(t *testing.T) {
	svc, store, mock := newTestService(t)
	expectTx(mock)

	seedTrip(store, tripA, testUser, time.Now().UTC())

	resp, err := svc.Sync(context.Background(), testUser, &Request{
		Trips: []TripRecord{{
			Envelope: Envelope{ID: "12345", LocalUpdatedAt: time.Now().UTC().Format(time.RFC3339), IsDeleted: true},
		}},
	})
	require.NoError(t, err)

	assert.Zero(t, resp.TripsUploaded)
	assert.Len(t, store.trips, 1)
}
