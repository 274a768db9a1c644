package repomanager

import (
	"context"
	"database/sql"

	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/server/migrations"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/billinglinks"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/clips"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/jobs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Clips(db dbx.DBTX) clips.Repository {
	return clips.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BillingLinks(db dbx.DBTX) billinglinks.Repository {
	return billinglinks.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Jobs(db dbx.DBTX) jobs.Repository {
	return jobs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
