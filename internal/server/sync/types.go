package sync

import (
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

// Envelope carries the fields common to every uploaded record.
type Envelope struct {
	ID             string `json:"id"`
	LocalUpdatedAt string `json:"local_updated_at"`
	IsDeleted      bool   `json:"is_deleted"`
}

func (e Envelope) env() Envelope { return e }

type envelopeCarrier interface {
	env() Envelope
	// refs lists the parent identifiers the record carries. They are
	// validated together with the record's own id before any store access.
	refs() []string
}

// Uploaded records use pointer fields so a client can send a sparse patch:
// only the fields present in the payload are written over the server copy.

type TripRecord struct {
	Envelope
	Title               *string        `json:"title"`
	Destination         *string        `json:"destination"`
	StartDate           *string        `json:"start_date"`
	EndDate             *string        `json:"end_date"`
	Budget              *float64       `json:"budget"`
	BudgetTier          *string        `json:"budget_tier"`
	TravelStyle         *string        `json:"travel_style"`
	Interests           []string       `json:"interests"`
	SpecialRequirements *string        `json:"special_requirements"`
	Preferences         map[string]any `json:"preferences"`
	IsGenerated         *bool          `json:"is_generated"`
}

type DayRecord struct {
	Envelope
	TripID    string  `json:"trip_id"`
	DayNumber *int    `json:"day_number"`
	Date      *string `json:"date"`
	Title     *string `json:"title"`
}

type ActivityRecord struct {
	Envelope
	DayID         string   `json:"day_id"`
	Time          *string  `json:"time"`
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	EstimatedCost *float64 `json:"estimated_cost"`
	Notes         *string  `json:"notes"`
	IsCompleted   *bool    `json:"is_completed"`
}

type BudgetItemRecord struct {
	Envelope
	TripID   string   `json:"trip_id"`
	Category *string  `json:"category"`
	Amount   *float64 `json:"amount"`
	Note     *string  `json:"note"`
}

type NoteRecord struct {
	Envelope
	TripID  string  `json:"trip_id"`
	Content *string `json:"content"`
}

func (r TripRecord) refs() []string       { return nil }
func (r DayRecord) refs() []string        { return []string{r.TripID} }
func (r ActivityRecord) refs() []string   { return []string{r.DayID} }
func (r BudgetItemRecord) refs() []string { return []string{r.TripID} }
func (r NoteRecord) refs() []string       { return []string{r.TripID} }

// Request is the full upload batch posted by a client.
type Request struct {
	LastSyncAt         *string            `json:"last_sync_at"`
	ConflictResolution Strategy           `json:"conflict_resolution"`
	Trips              []TripRecord       `json:"trips"`
	Days               []DayRecord        `json:"days"`
	Activities         []ActivityRecord   `json:"activities"`
	BudgetItems        []BudgetItemRecord `json:"budget_items"`
	Notes              []NoteRecord       `json:"notes"`
}

// Conflict reports one record where client and server copies disagreed
// and the strategy had to pick a side.
type Conflict struct {
	EntityType      string `json:"entity_type"`
	EntityID        string `json:"entity_id"`
	ClientUpdatedAt string `json:"client_updated_at"`
	ServerUpdatedAt string `json:"server_updated_at"`
	Resolution      string `json:"resolution"`
}

// ServerData is the download half of the response: everything that changed
// on the server since the client's last sync.
type ServerData struct {
	Trips       []TripPayload       `json:"trips"`
	Days        []DayPayload        `json:"days"`
	Activities  []ActivityPayload   `json:"activities"`
	BudgetItems []BudgetItemPayload `json:"budget_items"`
	Notes       []NotePayload       `json:"notes"`
}

type Response struct {
	SyncTimestamp         string     `json:"sync_timestamp"`
	TripsUploaded         int        `json:"trips_uploaded"`
	TripsDownloaded       int        `json:"trips_downloaded"`
	DaysUploaded          int        `json:"days_uploaded"`
	DaysDownloaded        int        `json:"days_downloaded"`
	ActivitiesUploaded    int        `json:"activities_uploaded"`
	ActivitiesDownloaded  int        `json:"activities_downloaded"`
	BudgetItemsUploaded   int        `json:"budget_items_uploaded"`
	BudgetItemsDownloaded int        `json:"budget_items_downloaded"`
	NotesUploaded         int        `json:"notes_uploaded"`
	NotesDownloaded       int        `json:"notes_downloaded"`
	ConflictsResolved     int        `json:"conflicts_resolved"`
	Conflicts             []Conflict `json:"conflicts"`
	ServerData            ServerData `json:"server_data"`
}

// newResponse returns a response whose slices are allocated, so the JSON
// encoding always carries [] instead of null.
func newResponse() *Response {
	return &Response{
		Conflicts: []Conflict{},
		ServerData: ServerData{
			Trips:       []TripPayload{},
			Days:        []DayPayload{},
			Activities:  []ActivityPayload{},
			BudgetItems: []BudgetItemPayload{},
			Notes:       []NotePayload{},
		},
	}
}

// Downloaded payloads mirror the server rows in full.

type TripPayload struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Destination         string         `json:"destination"`
	StartDate           string         `json:"start_date"`
	EndDate             string         `json:"end_date"`
	Budget              *float64       `json:"budget"`
	BudgetTier          *string        `json:"budget_tier"`
	TravelStyle         *string        `json:"travel_style"`
	Interests           []string       `json:"interests"`
	SpecialRequirements *string        `json:"special_requirements"`
	Preferences         map[string]any `json:"preferences"`
	IsGenerated         bool           `json:"is_generated"`
	ServerID            *string        `json:"server_id"`
	IsSynced            bool           `json:"is_synced"`
	LocalUpdatedAt      string         `json:"local_updated_at"`
	CreatedAt           string         `json:"created_at"`
}

type DayPayload struct {
	ID             string  `json:"id"`
	TripID         string  `json:"trip_id"`
	DayNumber      int     `json:"day_number"`
	Date           string  `json:"date"`
	Title          string  `json:"title"`
	ServerID       *string `json:"server_id"`
	IsSynced       bool    `json:"is_synced"`
	LocalUpdatedAt string  `json:"local_updated_at"`
}

type ActivityPayload struct {
	ID             string  `json:"id"`
	DayID          string  `json:"day_id"`
	Time           *string `json:"time"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Location       *string `json:"location"`
	EstimatedCost  float64 `json:"estimated_cost"`
	Notes          *string `json:"notes"`
	IsCompleted    bool    `json:"is_completed"`
	ServerID       *string `json:"server_id"`
	IsSynced       bool    `json:"is_synced"`
	LocalUpdatedAt string  `json:"local_updated_at"`
}

type BudgetItemPayload struct {
	ID             string  `json:"id"`
	TripID         string  `json:"trip_id"`
	Category       string  `json:"category"`
	Amount         float64 `json:"amount"`
	Note           *string `json:"note"`
	ServerID       *string `json:"server_id"`
	IsSynced       bool    `json:"is_synced"`
	LocalUpdatedAt string  `json:"local_updated_at"`
}

type NotePayload struct {
	ID             string  `json:"id"`
	TripID         string  `json:"trip_id"`
	Content        string  `json:"content"`
	ServerID       *string `json:"server_id"`
	IsSynced       bool    `json:"is_synced"`
	LocalUpdatedAt string  `json:"local_updated_at"`
	CreatedAt      string  `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func newTripPayload(t *models.Trip) TripPayload {
	interests := t.Interests
	if interests == nil {
		interests = []string{}
	}
	preferences := t.Preferences
	if preferences == nil {
		preferences = map[string]any{}
	}
	return TripPayload{
		ID:                  t.ID,
		Title:               t.Title,
		Destination:         t.Destination,
		StartDate:           t.StartDate,
		EndDate:             t.EndDate,
		Budget:              t.Budget,
		BudgetTier:          t.BudgetTier,
		TravelStyle:         t.TravelStyle,
		Interests:           interests,
		SpecialRequirements: t.SpecialRequirements,
		Preferences:         preferences,
		IsGenerated:         t.IsGenerated,
		ServerID:            t.ServerID,
		IsSynced:            t.IsSynced,
		LocalUpdatedAt:      formatTime(t.LocalUpdatedAt),
		CreatedAt:           formatTime(t.CreatedAt),
	}
}

func newDayPayload(d *models.Day) DayPayload {
	return DayPayload{
		ID:             d.ID,
		TripID:         d.TripID,
		DayNumber:      d.DayNumber,
		Date:           d.Date,
		Title:          d.Title,
		ServerID:       d.ServerID,
		IsSynced:       d.IsSynced,
		LocalUpdatedAt: formatTime(d.LocalUpdatedAt),
	}
}

func newActivityPayload(a *models.Activity) ActivityPayload {
	return ActivityPayload{
		ID:             a.ID,
		DayID:          a.DayID,
		Time:           a.Time,
		Title:          a.Title,
		Description:    a.Description,
		Location:       a.Location,
		EstimatedCost:  a.EstimatedCost,
		Notes:          a.Notes,
		IsCompleted:    a.IsCompleted,
		ServerID:       a.ServerID,
		IsSynced:       a.IsSynced,
		LocalUpdatedAt: formatTime(a.LocalUpdatedAt),
	}
}

func newBudgetItemPayload(b *models.BudgetItem) BudgetItemPayload {
	return BudgetItemPayload{
		ID:             b.ID,
		TripID:         b.TripID,
		Category:       b.Category,
		Amount:         b.Amount,
		Note:           b.Note,
		ServerID:       b.ServerID,
		IsSynced:       b.IsSynced,
		LocalUpdatedAt: formatTime(b.LocalUpdatedAt),
	}
}

func newNotePayload(n *models.Note) NotePayload {
	return NotePayload{
		ID:             n.ID,
		TripID:         n.TripID,
		Content:        n.Content,
		ServerID:       n.ServerID,
		IsSynced:       n.IsSynced,
		LocalUpdatedAt: formatTime(n.LocalUpdatedAt),
		CreatedAt:      formatTime(n.CreatedAt),
	}
}
