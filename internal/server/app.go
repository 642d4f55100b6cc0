// Package server initializes and runs the TripCraft application server.
// It opens the database, applies migrations, wires the services together,
// and starts the HTTP API with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/ai"
	"github.com/tripcraft/tripcraft/internal/server/config"
	"github.com/tripcraft/tripcraft/internal/server/httpapi"
	"github.com/tripcraft/tripcraft/internal/server/repositories/repomanager"
	"github.com/tripcraft/tripcraft/internal/server/services"
	"github.com/tripcraft/tripcraft/internal/server/storage"
	"github.com/tripcraft/tripcraft/internal/server/sync"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	generator := ai.NewGroqGenerator(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, logger)
	store := storage.NewS3Store(cfg)

	userService := services.NewUserService(db, repos, cfg)
	tripService := services.NewTripService(db, repos)
	itineraryService := services.NewItineraryService(db, repos, generator, logger)
	exportService := services.NewExportService(db, repos, store, logger)
	syncService := sync.NewService(db, repos, logger)

	srv := httpapi.NewServer(cfg, logger,
		userService, tripService, itineraryService, exportService, syncService)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
