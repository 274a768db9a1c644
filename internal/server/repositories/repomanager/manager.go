// Package repomanager wires concrete repository implementations to a DB
// handle, so services can run any repository against either the pool or an
// open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/billinglinks"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/clips"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/jobs"
)

type RepositoryManager interface {
	Clips(db dbx.DBTX) clips.Repository
	BillingLinks(db dbx.DBTX) billinglinks.Repository
	Jobs(db dbx.DBTX) jobs.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
