package httpapi

import (
	"time"

	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/services"
)

// Wire DTOs. Field names match what the mobile client already consumes.

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type tripRequest struct {
	Title               *string  `json:"title"`
	Destination         *string  `json:"destination"`
	StartDate           *string  `json:"start_date"`
	EndDate             *string  `json:"end_date"`
	Budget              *float64 `json:"budget"`
	BudgetTier          *string  `json:"budget_tier"`
	TravelStyle         *string  `json:"travel_style"`
	Interests           []string `json:"interests"`
	SpecialRequirements *string  `json:"special_requirements"`
}

func (r tripRequest) params() services.TripParams {
	return services.TripParams{
		Title:               r.Title,
		Destination:         r.Destination,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		Budget:              r.Budget,
		BudgetTier:          r.BudgetTier,
		TravelStyle:         r.TravelStyle,
		Interests:           r.Interests,
		SpecialRequirements: r.SpecialRequirements,
	}
}

type generateRequest struct {
	Destination         string   `json:"destination"`
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
	Budget              *float64 `json:"budget"`
	BudgetTier          *string  `json:"budget_tier"`
	TravelStyle         *string  `json:"travel_style"`
	Interests           []string `json:"interests"`
	SpecialRequirements *string  `json:"special_requirements"`
	Title               *string  `json:"title"`
}

type generateResponse struct {
	Trip    tripResponse `json:"trip"`
	Message string       `json:"message"`
}

type chatRequest struct {
	TripID  string `json:"trip_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Trip    tripResponse `json:"trip"`
	Message string       `json:"message"`
}

type exportResponse struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	Size        int    `json:"size"`
}

type tripResponse struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Destination         string               `json:"destination"`
	StartDate           string               `json:"start_date"`
	EndDate             string               `json:"end_date"`
	Budget              *float64             `json:"budget"`
	BudgetTier          *string              `json:"budget_tier"`
	TravelStyle         *string              `json:"travel_style"`
	Interests           []string             `json:"interests"`
	SpecialRequirements *string              `json:"special_requirements"`
	IsGenerated         bool                 `json:"is_generated"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Days                []dayResponse        `json:"days"`
	BudgetItems         []budgetItemResponse `json:"budget_items"`
	Notes               []noteResponse       `json:"notes"`
	ServerID            *string              `json:"server_id"`
	IsSynced            bool                 `json:"is_synced"`
	LocalUpdatedAt      time.Time            `json:"local_updated_at"`
}

type dayResponse struct {
	ID             string             `json:"id"`
	DayNumber      int                `json:"day_number"`
	Date           string             `json:"date"`
	Title          string             `json:"title"`
	Activities     []activityResponse `json:"activities"`
	ServerID       *string            `json:"server_id"`
	IsSynced       bool               `json:"is_synced"`
	LocalUpdatedAt time.Time          `json:"local_updated_at"`
}

type activityResponse struct {
	ID             string    `json:"id"`
	Time           *string   `json:"time"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Location       *string   `json:"location"`
	EstimatedCost  float64   `json:"estimated_cost"`
	Notes          *string   `json:"notes"`
	IsCompleted    bool      `json:"is_completed"`
	ServerID       *string   `json:"server_id"`
	IsSynced       bool      `json:"is_synced"`
	LocalUpdatedAt time.Time `json:"local_updated_at"`
}

type budgetItemResponse struct {
	ID             string    `json:"id"`
	Category       string    `json:"category"`
	Amount         float64   `json:"amount"`
	Note           *string   `json:"note"`
	ServerID       *string   `json:"server_id"`
	IsSynced       bool      `json:"is_synced"`
	LocalUpdatedAt time.Time `json:"local_updated_at"`
}

type noteResponse struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	ServerID       *string   `json:"server_id"`
	IsSynced       bool      `json:"is_synced"`
	LocalUpdatedAt time.Time `json:"local_updated_at"`
}

func newTripResponse(d *services.TripDetail) tripResponse {
	t := d.Trip
	out := tripResponse{
		ID:                  t.ID,
		Title:               t.Title,
		Destination:         t.Destination,
		StartDate:           t.StartDate,
		EndDate:             t.EndDate,
		Budget:              t.Budget,
		BudgetTier:          t.BudgetTier,
		TravelStyle:         t.TravelStyle,
		Interests:           t.Interests,
		SpecialRequirements: t.SpecialRequirements,
		IsGenerated:         t.IsGenerated,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		Days:                []dayResponse{},
		BudgetItems:         []budgetItemResponse{},
		Notes:               []noteResponse{},
		ServerID:            t.ServerID,
		IsSynced:            t.IsSynced,
		LocalUpdatedAt:      t.LocalUpdatedAt,
	}

	for _, day := range d.Days {
		dr := dayResponse{
			ID:             day.Day.ID,
			DayNumber:      day.Day.DayNumber,
			Date:           day.Day.Date,
			Title:          day.Day.Title,
			Activities:     []activityResponse{},
			ServerID:       day.Day.ServerID,
			IsSynced:       day.Day.IsSynced,
			LocalUpdatedAt: day.Day.LocalUpdatedAt,
		}
		for _, a := range day.Activities {
			dr.Activities = append(dr.Activities, activityResponse{
				ID:             a.ID,
				Time:           a.Time,
				Title:          a.Title,
				Description:    a.Description,
				Location:       a.Location,
				EstimatedCost:  a.EstimatedCost,
				Notes:          a.Notes,
				IsCompleted:    a.IsCompleted,
				ServerID:       a.ServerID,
				IsSynced:       a.IsSynced,
				LocalUpdatedAt: a.LocalUpdatedAt,
			})
		}
		out.Days = append(out.Days, dr)
	}

	for _, item := range d.BudgetItems {
		out.BudgetItems = append(out.BudgetItems, budgetItemResponse{
			ID:             item.ID,
			Category:       item.Category,
			Amount:         item.Amount,
			Note:           item.Note,
			ServerID:       item.ServerID,
			IsSynced:       item.IsSynced,
			LocalUpdatedAt: item.LocalUpdatedAt,
		})
	}

	for _, note := range d.Notes {
		out.Notes = append(out.Notes, noteResponse{
			ID:             note.ID,
			Content:        note.Content,
			CreatedAt:      note.CreatedAt,
			ServerID:       note.ServerID,
			IsSynced:       note.IsSynced,
			LocalUpdatedAt: note.LocalUpdatedAt,
		})
	}

	return out
}
