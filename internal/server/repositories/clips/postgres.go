// Package clips provides the PostgreSQL-backed ownership ledger for
// uploaded clips.
package clips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
)

// PostgresRepository implements clip storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const clipColumns = `owner_uid, doc_id, object_id, kind, delivery_hint, duration_seconds,
	width, height, size_bytes, title, status, created_at, updated_at`

func scanClip(row interface{ Scan(...any) error }) (*models.ClipRecord, error) {
	c := &models.ClipRecord{}
	err := row.Scan(&c.OwnerUID, &c.DocID, &c.ObjectID, &c.Kind, &c.DeliveryHint, &c.DurationSeconds,
		&c.Width, &c.Height, &c.SizeBytes, &c.Title, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, clip *models.ClipRecord) (*models.ClipRecord, error) {
	query := `
		INSERT INTO clips (owner_uid, doc_id, object_id, kind, delivery_hint, duration_seconds,
			width, height, size_bytes, title, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner_uid, doc_id)
		DO UPDATE SET
			kind = EXCLUDED.kind,
			delivery_hint = COALESCE(EXCLUDED.delivery_hint, clips.delivery_hint),
			duration_seconds = COALESCE(EXCLUDED.duration_seconds, clips.duration_seconds),
			width = COALESCE(EXCLUDED.width, clips.width),
			height = COALESCE(EXCLUDED.height, clips.height),
			size_bytes = COALESCE(EXCLUDED.size_bytes, clips.size_bytes),
			title = COALESCE(EXCLUDED.title, clips.title),
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING ` + clipColumns

	row := r.db.QueryRowContext(ctx, query,
		clip.OwnerUID, clip.DocID, clip.ObjectID, clip.Kind, clip.DeliveryHint, clip.DurationSeconds,
		clip.Width, clip.Height, clip.SizeBytes, clip.Title, clip.Status)

	saved, err := scanClip(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert clip: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) GetByDocID(ctx context.Context, ownerUID, docID string) (*models.ClipRecord, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE owner_uid = $1 AND doc_id = $2`

	clip, err := scanClip(r.db.QueryRowContext(ctx, query, ownerUID, docID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select clip: %w", err)
	}
	return clip, nil
}

func (r *PostgresRepository) SelectPage(ctx context.Context, ownerUID, kind string, after *PageKey, limit int) ([]*models.ClipRecord, error) {
	query := `
		SELECT ` + clipColumns + ` FROM clips
		WHERE owner_uid = $1
			AND ($2 = '' OR kind = $2)
			AND ($3::timestamptz IS NULL OR (created_at, doc_id) < ($3, $4))
		ORDER BY created_at DESC, doc_id DESC
		LIMIT $5`

	var afterCreated sql.NullTime
	afterDoc := ""
	if after != nil {
		afterCreated = sql.NullTime{Time: after.CreatedAt, Valid: true}
		afterDoc = after.DocID
	}

	rows, err := r.db.QueryContext(ctx, query, ownerUID, kind, afterCreated, afterDoc, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select clips: %w", err)
	}
	defer rows.Close()

	var result []*models.ClipRecord
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, clip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, ownerUID, kind string) (int64, error) {
	query := `SELECT count(*) FROM clips WHERE owner_uid = $1 AND ($2 = '' OR kind = $2)`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, ownerUID, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clips: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerUID, docID string) error {
	query := `DELETE FROM clips WHERE owner_uid = $1 AND doc_id = $2`

	result, err := r.db.ExecContext(ctx, query, ownerUID, docID)
	if err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SelectBatch(ctx context.Context, afterOwnerUID, afterDocID string, limit int) ([]*models.ClipRecord, error) {
	query := `
		SELECT ` + clipColumns + ` FROM clips
		WHERE (owner_uid, doc_id) > ($1, $2)
		ORDER BY owner_uid, doc_id
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, afterOwnerUID, afterDocID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select clip batch: %w", err)
	}
	defer rows.Close()

	var result []*models.ClipRecord
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, clip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
