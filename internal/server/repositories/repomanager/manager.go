// Package repomanager hands out repositories bound to a specific database
// handle, so the same repository code runs against *sql.DB and *sql.Tx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/repositories/activities"
	"github.com/tripcraft/tripcraft/internal/server/repositories/budgetitems"
	"github.com/tripcraft/tripcraft/internal/server/repositories/days"
	"github.com/tripcraft/tripcraft/internal/server/repositories/notes"
	"github.com/tripcraft/tripcraft/internal/server/repositories/refreshtokens"
	"github.com/tripcraft/tripcraft/internal/server/repositories/trips"
	"github.com/tripcraft/tripcraft/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Trips(db dbx.DBTX) trips.Repository
	Days(db dbx.DBTX) days.Repository
	Activities(db dbx.DBTX) activities.Repository
	BudgetItems(db dbx.DBTX) budgetitems.Repository
	Notes(db dbx.DBTX) notes.Repository
}
