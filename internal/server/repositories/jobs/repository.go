package jobs

import (
	"context"

	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// Repository stores render job records. Creation is terminal today; no
// component transitions a job out of its initial status.
type Repository interface {
	Create(ctx context.Context, job *models.RenderJob) error
}
