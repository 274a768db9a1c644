// Package jobs provides PostgreSQL-backed storage for render job records.
package jobs

import (
	"context"
	"fmt"

	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// PostgresRepository implements job storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, job *models.RenderJob) error {
	query := `INSERT INTO render_jobs (id, owner_uid, object_id, kind, status) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, job.ID, job.OwnerUID, job.ObjectID, job.Kind, job.Status); err != nil {
		return fmt.Errorf("failed to create render job: %w", err)
	}
	return nil
}
