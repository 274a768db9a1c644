package clips

import (
	"context"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// PageKey is the keyset cursor for list pagination: the created_at/doc_id
// pair of the last row of the previous page.
type PageKey struct {
	CreatedAt time.Time
	DocID     string
}

// Repository is the ownership ledger. Every method is scoped by ownerUid as
// part of the key, not as an afterthought filter, so cross-user access is
// structurally impossible.
type Repository interface {
	// Upsert merge-writes a record keyed by (ownerUid, docId). created_at is
	// set only on first write; metadata fields present in clip overwrite,
	// absent (nil) fields keep their stored values.
	Upsert(ctx context.Context, clip *models.ClipRecord) (*models.ClipRecord, error)

	// GetByDocID returns the record or ErrNotFound.
	GetByDocID(ctx context.Context, ownerUID, docID string) (*models.ClipRecord, error)

	// SelectPage returns up to limit records, newest-created first,
	// optionally filtered by kind and starting strictly after the cursor.
	SelectPage(ctx context.Context, ownerUID, kind string, after *PageKey, limit int) ([]*models.ClipRecord, error)

	// Count returns the owner's total record count for the kind filter.
	Count(ctx context.Context, ownerUID, kind string) (int64, error)

	// Delete removes the record or returns ErrNotFound.
	Delete(ctx context.Context, ownerUID, docID string) error

	// SelectBatch walks the whole table in (owner_uid, doc_id) order for the
	// reconciliation sweep. Pass the last row of the previous batch to resume.
	SelectBatch(ctx context.Context, afterOwnerUID, afterDocID string, limit int) ([]*models.ClipRecord, error)
}
