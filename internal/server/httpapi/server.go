// Package httpapi exposes the TripCraft service as a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/config"
)

type Server struct {
	address        string
	allowedOrigins []string
	jwtSecret      []byte
	logger         logging.Logger

	users       UserService
	trips       TripService
	itineraries ItineraryService
	exports     ExportService
	sync        SyncService
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	users UserService,
	trips TripService,
	itineraries ItineraryService,
	exports ExportService,
	syncService SyncService,
) *Server {
	return &Server{
		address:        cfg.EndpointAddr,
		allowedOrigins: cfg.AllowedOrigins,
		jwtSecret:      []byte(cfg.SecretKey),
		logger:         logger.With("module", "httpapi"),
		users:          users,
		trips:          trips,
		itineraries:    itineraries,
		exports:        exports,
		sync:           syncService,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleMe)
				r.Delete("/me", s.handleDeleteAccount)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", s.handleCreateTrip)
				r.Get("/", s.handleListTrips)
				r.Get("/{tripID}", s.handleGetTrip)
				r.Put("/{tripID}", s.handleUpdateTrip)
				r.Delete("/{tripID}", s.handleDeleteTrip)
				r.Post("/{tripID}/export", s.handleExport)
			})

			r.Post("/generate", s.handleGenerate)
			r.Post("/chat", s.handleChat)
			r.Post("/sync", s.handleSync)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
