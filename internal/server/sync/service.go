// Package sync implements the bidirectional reconciliation behind the
// /api/sync endpoint: a last-writer-wins upload phase over five entity
// types followed by a watermark-scoped download phase.
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tripcraft/tripcraft/internal/common"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/logging"
	"github.com/tripcraft/tripcraft/internal/server/repositories/activities"
	"github.com/tripcraft/tripcraft/internal/server/repositories/budgetitems"
	"github.com/tripcraft/tripcraft/internal/server/repositories/days"
	"github.com/tripcraft/tripcraft/internal/server/repositories/notes"
	"github.com/tripcraft/tripcraft/internal/server/repositories/repomanager"
	"github.com/tripcraft/tripcraft/internal/server/repositories/trips"
)

// txRepos bundles the per-entity repositories bound to one database handle.
type txRepos struct {
	trips       trips.Repository
	days        days.Repository
	activities  activities.Repository
	budgetItems budgetitems.Repository
	notes       notes.Repository
}

type Service struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	logger  logging.Logger
	callers *keyedMutex
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{
		db:      db,
		repos:   repos,
		logger:  logger,
		callers: newKeyedMutex(),
	}
}

func (s *Service) reposFor(db dbx.DBTX) txRepos {
	return txRepos{
		trips:       s.repos.Trips(db),
		days:        s.repos.Days(db),
		activities:  s.repos.Activities(db),
		budgetItems: s.repos.BudgetItems(db),
		notes:       s.repos.Notes(db),
	}
}

// Sync runs one full reconciliation for the caller: five upload passes in
// dependency order inside a single transaction (so a day can reference a
// trip created earlier in the same batch), one commit, then read-only delta
// queries against the committed state. Calls from the same caller are
// serialized; different callers proceed independently.
func (s *Service) Sync(ctx context.Context, userID string, req *Request) (*Response, error) {
	strategy := req.ConflictResolution
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown conflict_resolution %q", common.ErrorValidation, strategy)
	}

	unlock := s.callers.Lock(userID)
	defer unlock()

	resp := newResponse()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.reposFor(tx)
		runPass(ctx, req.Trips, s.tripAdapter(r, userID), strategy, resp, &resp.TripsUploaded, s.logger)
		runPass(ctx, req.Days, s.dayAdapter(r, userID), strategy, resp, &resp.DaysUploaded, s.logger)
		runPass(ctx, req.Activities, s.activityAdapter(r, userID), strategy, resp, &resp.ActivitiesUploaded, s.logger)
		runPass(ctx, req.BudgetItems, s.budgetItemAdapter(r, userID), strategy, resp, &resp.BudgetItemsUploaded, s.logger)
		runPass(ctx, req.Notes, s.noteAdapter(r, userID), strategy, resp, &resp.NotesUploaded, s.logger)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync upload phase: %w", err)
	}

	if req.LastSyncAt != nil && *req.LastSyncAt != "" {
		since := ParseTimestamp(*req.LastSyncAt)
		if err := s.download(ctx, userID, since, resp); err != nil {
			return nil, fmt.Errorf("sync download phase: %w", err)
		}
	}

	resp.ConflictsResolved = len(resp.Conflicts)
	resp.SyncTimestamp = formatTime(time.Now())
	return resp, nil
}
