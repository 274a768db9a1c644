package billinglinks

import (
	"context"

	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// Repository stores the uid -> external billing customer mapping.
type Repository interface {
	// Get returns the link for ownerUID or ErrNotFound.
	Get(ctx context.Context, ownerUID string) (*models.BillingLink, error)

	// Upsert merge-writes the mapping. A concurrent first-time write is a
	// benign last-write-wins overwrite, never an error.
	Upsert(ctx context.Context, ownerUID, customerID string) error
}
