package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/ownership"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/repomanager"
)

// JobService accepts render job requests. A job is written with its initial
// status and left there; the write is terminal until a processing pipeline
// exists to consume it.
type JobService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewJobService(db *sql.DB, m repomanager.RepositoryManager) *JobService {
	return &JobService{db: db, repomanager: m}
}

func (s *JobService) CreateJob(ctx context.Context, uid, objectID, kind string) (*models.RenderJob, error) {
	if objectID == "" {
		return nil, fmt.Errorf("missing publicId: %w", common.ErrInvalidRequest)
	}
	if !validKind(kind) {
		return nil, fmt.Errorf("unknown kind %q: %w", kind, common.ErrInvalidRequest)
	}
	if !ownership.Owns(uid, objectID) {
		return nil, common.ErrForbidden
	}

	if kind == "" {
		kind = models.ClipKindVideo
	}

	job := &models.RenderJob{
		ID:        uuid.NewString(),
		OwnerUID:  uid,
		ObjectID:  objectID,
		Kind:      kind,
		Status:    models.JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repomanager.Jobs(s.db).Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
