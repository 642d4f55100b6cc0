package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/tripcraft/tripcraft/internal/dbx"
	"github.com/tripcraft/tripcraft/internal/server/migrations"
	"github.com/tripcraft/tripcraft/internal/server/repositories/activities"
	"github.com/tripcraft/tripcraft/internal/server/repositories/budgetitems"
	"github.com/tripcraft/tripcraft/internal/server/repositories/days"
	"github.com/tripcraft/tripcraft/internal/server/repositories/notes"
	"github.com/tripcraft/tripcraft/internal/server/repositories/refreshtokens"
	"github.com/tripcraft/tripcraft/internal/server/repositories/trips"
	"github.com/tripcraft/tripcraft/internal/server/repositories/users"
)

// PostgresRepositoryManager builds Postgres repositories on demand, bound to
// whatever DBTX the caller passes (a pool or an open transaction).
type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Trips(db dbx.DBTX) trips.Repository {
	return trips.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Days(db dbx.DBTX) days.Repository {
	return days.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Activities(db dbx.DBTX) activities.Repository {
	return activities.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BudgetItems(db dbx.DBTX) budgetitems.Repository {
	return budgetitems.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
