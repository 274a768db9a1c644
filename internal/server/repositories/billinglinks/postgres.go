// Package billinglinks provides PostgreSQL-backed storage for billing
// customer mappings.
package billinglinks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// PostgresRepository implements billing link storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, ownerUID string) (*models.BillingLink, error) {
	query := `SELECT owner_uid, customer_id, created_at, updated_at FROM billing_links WHERE owner_uid = $1`

	link := &models.BillingLink{}
	err := r.db.QueryRowContext(ctx, query, ownerUID).
		Scan(&link.OwnerUID, &link.CustomerID, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select billing link: %w", err)
	}
	return link, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, ownerUID, customerID string) error {
	query := `
		INSERT INTO billing_links (owner_uid, customer_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_uid)
		DO UPDATE SET customer_id = EXCLUDED.customer_id, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, ownerUID, customerID); err != nil {
		return fmt.Errorf("failed to upsert billing link: %w", err)
	}
	return nil
}
