package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/server/models"
	"github.com/tripcraft/tripcraft/internal/server/services"
	"github.com/tripcraft/tripcraft/internal/server/sync"
)

// Service interfaces consumed by the handlers; the concrete types live in
// the services and sync packages.

type UserService interface {
	Register(ctx context.Context, email, password string, name *string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type TripService interface {
	Create(ctx context.Context, userID string, params services.TripParams) (*services.TripDetail, error)
	List(ctx context.Context, userID string) ([]*services.TripDetail, error)
	Get(ctx context.Context, userID, tripID string) (*services.TripDetail, error)
	Update(ctx context.Context, userID, tripID string, params services.TripParams) (*services.TripDetail, error)
	Delete(ctx context.Context, userID, tripID string) error
}

type ItineraryService interface {
	Generate(ctx context.Context, userID string, params services.GenerateParams) (*services.TripDetail, error)
	Refine(ctx context.Context, userID, tripID, message string) (*services.TripDetail, error)
}

type ExportService interface {
	Export(ctx context.Context, userID, tripID string) (*services.ExportResult, error)
}

type SyncService interface {
	Sync(ctx context.Context, userID string, req *sync.Request) (*sync.Response, error)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(r.Context(), w, s.logger, fmt.Errorf("%w: email and password are required", common.ErrorValidation))
		return
	}

	user, pair, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         newUserResponse(user),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         newUserResponse(user),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := s.users.DeleteAccount(r.Context(), userID); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	detail, err := s.trips.Create(r.Context(), userID, req.params())
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTripResponse(detail))
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	details, err := s.trips.List(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]tripResponse, 0, len(details))
	for _, d := range details {
		out = append(out, newTripResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	detail, err := s.trips.Get(r.Context(), userID, chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTripResponse(detail))
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	detail, err := s.trips.Update(r.Context(), userID, chi.URLParam(r, "tripID"), req.params())
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTripResponse(detail))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := s.trips.Delete(r.Context(), userID, chi.URLParam(r, "tripID")); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	detail, err := s.itineraries.Generate(r.Context(), userID, services.GenerateParams{
		Destination:         req.Destination,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Budget:              req.Budget,
		BudgetTier:          req.BudgetTier,
		TravelStyle:         req.TravelStyle,
		Interests:           req.Interests,
		SpecialRequirements: req.SpecialRequirements,
		Title:               req.Title,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Trip:    newTripResponse(detail),
		Message: fmt.Sprintf("Generated %d-day itinerary for %s", len(detail.Days), req.Destination),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	detail, err := s.itineraries.Refine(r.Context(), userID, req.TripID, req.Message)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Trip:    newTripResponse(detail),
		Message: "Itinerary refined successfully",
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req sync.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	resp, err := s.sync.Sync(r.Context(), userID, &req)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	result, err := s.exports.Export(r.Context(), userID, chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		DownloadURL: result.DownloadURL,
		FileName:    result.FileName,
		Size:        result.Size,
	})
}
