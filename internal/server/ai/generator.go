// Package ai turns free-form trip preferences into structured itineraries
// by calling an OpenAI-compatible chat-completion API.
package ai

import "context"

// Itinerary is the structured payload the model is asked to produce.
type Itinerary struct {
	Days []ItineraryDay `json:"days"`
}

type ItineraryDay struct {
	DayNumber  int                 `json:"day_number"`
	Date       string              `json:"date"`
	Title      string              `json:"title"`
	Activities []ItineraryActivity `json:"activities"`
}

type ItineraryActivity struct {
	Time          *string `json:"time"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	Location      *string `json:"location"`
	EstimatedCost float64 `json:"estimated_cost"`
	Notes         *string `json:"notes"`
	IsCompleted   bool    `json:"is_completed"`
}

// GenerateParams carries the user's preferences for a fresh itinerary.
type GenerateParams struct {
	Destination         string
	StartDate           string
	EndDate             string
	NumDays             int
	Budget              *float64
	BudgetTier          *string
	TravelStyle         *string
	Interests           []string
	SpecialRequirements *string
}

// TripContext summarizes an existing trip for a refinement request.
type TripContext struct {
	Destination string
	NumDays     int
	Budget      *float64
	BudgetTier  *string
	TravelStyle *string
	Interests   []string
}

// Generator produces and refines itineraries. Implementations must return
// an itinerary whose day count matches the requested trip length.
type Generator interface {
	GenerateItinerary(ctx context.Context, params GenerateParams) (*Itinerary, error)
	RefineItinerary(ctx context.Context, current *Itinerary, request string, trip TripContext) (*Itinerary, error)
}
