package models

import "time"

// SyncMeta is the envelope carried by every synchronizable entity.
// LocalUpdatedAt is authoritative for conflict comparison; IsSynced flips
// to true once the server has accepted the version at rest; ServerID is
// reserved for future server-authoritative renumbering.
type SyncMeta struct {
	ServerID       *string
	IsSynced       bool
	LocalUpdatedAt time.Time
}

// Trip is the root of the ownership chain: User 1-* Trip.
type Trip struct {
	ID                  string
	UserID              string
	Title               string
	Destination         string
	StartDate           string
	EndDate             string
	Budget              *float64
	BudgetTier          *string
	TravelStyle         *string
	Interests           []string
	SpecialRequirements *string
	Preferences         map[string]any
	IsGenerated         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SyncMeta
}

// Day belongs to a Trip.
type Day struct {
	ID        string
	TripID    string
	DayNumber int
	Date      string
	Title     string
	CreatedAt time.Time
	SyncMeta
}

// Activity belongs to a Day (and transitively to a Trip).
type Activity struct {
	ID            string
	DayID         string
	Time          *string
	Title         string
	Description   *string
	Location      *string
	EstimatedCost float64
	Notes         *string
	IsCompleted   bool
	CreatedAt     time.Time
	SyncMeta
}

// BudgetItem belongs to a Trip.
type BudgetItem struct {
	ID        string
	TripID    string
	Category  string
	Amount    float64
	Note      *string
	CreatedAt time.Time
	SyncMeta
}

// Note belongs to a Trip.
type Note struct {
	ID        string
	TripID    string
	Content   string
	CreatedAt time.Time
	SyncMeta
}
