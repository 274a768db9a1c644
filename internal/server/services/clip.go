package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/logging"
	"github.com/sketchmotion/sketchmotion/internal/ownership"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/clips"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/repomanager"
)

// MediaStore is the storage provider surface the clip service depends on.
type MediaStore interface {
	SignedDeliveryURL(objectID string, ttl time.Duration) (string, error)
	Destroy(ctx context.Context, objectID string, invalidate bool) error
	Exists(ctx context.Context, objectID string) (bool, error)
}

// RegisterParams carries the metadata a client reports after a successful
// direct upload. Nil fields are "not provided" and merge with stored values.
type RegisterParams struct {
	ObjectID        string
	Kind            string
	DeliveryHint    *string
	DurationSeconds *float64
	Width           *int64
	Height          *int64
	SizeBytes       *int64
	Title           *string
}

// ClipPage is one page of an owner's ledger, newest-created first.
type ClipPage struct {
	Items      []*models.ClipRecord
	NextCursor string
	TotalCount int64
}

const (
	listPageSize      = 50
	snapshotSize      = 100
	sweepBatchSize    = 100
	subscriberBacklog = 4
)

// ClipService owns the ownership ledger and the secure delivery gateway:
// registration upserts, the live list feed, signed playback URLs, two-step
// deletes, and the reconciliation sweep.
type ClipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       MediaStore
	logger      logging.Logger
	deliveryTTL time.Duration

	mu     sync.Mutex
	subs   map[string]map[int64]chan []*models.ClipRecord
	nextID int64
}

func NewClipService(db *sql.DB, m repomanager.RepositoryManager, store MediaStore, logger logging.Logger, deliveryTTL time.Duration) *ClipService {
	return &ClipService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger,
		deliveryTTL: deliveryTTL,
		subs:        make(map[string]map[int64]chan []*models.ClipRecord),
	}
}

func validKind(kind string) bool {
	return kind == "" || kind == models.ClipKindVideo || kind == models.ClipKindImage
}

// Register merge-upserts a ledger record for an uploaded object. Idempotent:
// re-registering the same object lands on the same row, createdAt untouched.
// The object must live under the caller's own folder.
func (s *ClipService) Register(ctx context.Context, uid string, p RegisterParams) (*models.ClipRecord, error) {
	if p.ObjectID == "" {
		return nil, fmt.Errorf("missing publicId: %w", common.ErrInvalidRequest)
	}
	if !validKind(p.Kind) {
		return nil, fmt.Errorf("unknown kind %q: %w", p.Kind, common.ErrInvalidRequest)
	}
	if !ownership.Owns(uid, p.ObjectID) {
		return nil, common.ErrForbidden
	}

	kind := p.Kind
	if kind == "" {
		kind = models.ClipKindVideo
	}

	clip := &models.ClipRecord{
		DocID:           models.DocIDForObject(p.ObjectID),
		OwnerUID:        uid,
		ObjectID:        p.ObjectID,
		Kind:            kind,
		DeliveryHint:    p.DeliveryHint,
		DurationSeconds: p.DurationSeconds,
		Width:           p.Width,
		Height:          p.Height,
		SizeBytes:       p.SizeBytes,
		Title:           p.Title,
		Status:          models.ClipStatusReady,
	}

	saved, err := s.repomanager.Clips(s.db).Upsert(ctx, clip)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, uid)
	return saved, nil
}

// List returns one page of the owner's clips plus the total count. An empty
// cursor starts from the newest record.
func (s *ClipService) List(ctx context.Context, uid, kind, cursor string) (*ClipPage, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("unknown kind %q: %w", kind, common.ErrInvalidRequest)
	}

	after, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Clips(s.db)

	items, err := repo.SelectPage(ctx, uid, kind, after, listPageSize+1)
	if err != nil {
		return nil, err
	}

	page := &ClipPage{Items: items}
	if len(items) > listPageSize {
		page.Items = items[:listPageSize]
		last := page.Items[len(page.Items)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.DocID)
	}
	if page.Items == nil {
		page.Items = []*models.ClipRecord{}
	}

	page.TotalCount, err = repo.Count(ctx, uid, kind)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Subscribe returns a feed of ledger snapshots for uid: the current state
// immediately, then a fresh snapshot after every change to that owner's
// clips. The returned cancel func must be called when the consumer is done.
func (s *ClipService) Subscribe(ctx context.Context, uid string) (<-chan []*models.ClipRecord, func(), error) {
	snapshot, err := s.snapshot(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []*models.ClipRecord, subscriberBacklog)
	ch <- snapshot

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.subs[uid] == nil {
		s.subs[uid] = make(map[int64]chan []*models.ClipRecord)
	}
	s.subs[uid][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if owner, ok := s.subs[uid]; ok {
			delete(owner, id)
			if len(owner) == 0 {
				delete(s.subs, uid)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *ClipService) snapshot(ctx context.Context, uid string) ([]*models.ClipRecord, error) {
	items, err := s.repomanager.Clips(s.db).SelectPage(ctx, uid, "", nil, snapshotSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.ClipRecord{}
	}
	return items, nil
}

// notifyOwner pushes a fresh snapshot to every live subscriber of uid.
// Slow subscribers with a full backlog are skipped; they still hold an
// older snapshot and will catch up on the next change.
func (s *ClipService) notifyOwner(ctx context.Context, uid string) {
	s.mu.Lock()
	owner := s.subs[uid]
	targets := make([]chan []*models.ClipRecord, 0, len(owner))
	for _, ch := range owner {
		targets = append(targets, ch)
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	snapshot, err := s.snapshot(ctx, uid)
	if err != nil {
		s.logger.Warn(ctx, "snapshot for subscribers failed", "uid", uid, "error", err.Error())
		return
	}

	for _, ch := range targets {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// PlaybackURL mints a fresh signed delivery URL for objectID. The
// structural ownership check runs before any provider interaction.
func (s *ClipService) PlaybackURL(ctx context.Context, uid, objectID string) (string, error) {
	if objectID == "" {
		return "", fmt.Errorf("missing publicId: %w", common.ErrInvalidRequest)
	}
	if !ownership.Owns(uid, objectID) {
		return "", common.ErrForbidden
	}
	return s.store.SignedDeliveryURL(objectID, s.deliveryTTL)
}

// Delete removes a clip: ledger ownership check, irreversible provider
// destroy with cache invalidation, then ledger delete. The two steps are not
// transactional; if the ledger delete fails after a successful destroy the
// record is left dangling, logged, and picked up by SweepDanglingRecords.
func (s *ClipService) Delete(ctx context.Context, uid, objectID, docID string) error {
	if objectID == "" || docID == "" {
		return fmt.Errorf("missing publicId or docId: %w", common.ErrInvalidRequest)
	}

	repo := s.repomanager.Clips(s.db)

	rec, err := repo.GetByDocID(ctx, uid, docID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Never reveal whether the doc exists under another owner.
			return common.ErrForbidden
		}
		return err
	}
	if rec.ObjectID != objectID {
		return common.ErrForbidden
	}

	if err := s.store.Destroy(ctx, objectID, true); err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if err := repo.Delete(ctx, uid, docID); err != nil && !errors.Is(err, common.ErrNotFound) {
		// The object is already gone upstream; surface success and leave the
		// row for the reconciliation sweep.
		s.logger.Error(ctx, "ledger delete failed after destroy, record dangling",
			"uid", uid, "docId", docID, "error", err.Error())
	}

	s.notifyOwner(ctx, uid)
	return nil
}

// SweepDanglingRecords walks the whole ledger and removes records whose
// object no longer exists at the provider. This is the reconciliation pass
// for the delete inconsistency window. Returns the number of rows removed.
func (s *ClipService) SweepDanglingRecords(ctx context.Context) (int, error) {
	repo := s.repomanager.Clips(s.db)

	removed := 0
	afterOwner, afterDoc := "", ""
	for {
		batch, err := repo.SelectBatch(ctx, afterOwner, afterDoc, sweepBatchSize)
		if err != nil {
			return removed, err
		}
		if len(batch) == 0 {
			return removed, nil
		}

		for _, rec := range batch {
			exists, err := s.store.Exists(ctx, rec.ObjectID)
			if err != nil {
				s.logger.Warn(ctx, "sweep probe failed", "objectId", rec.ObjectID, "error", err.Error())
				continue
			}
			if exists {
				continue
			}

			if err := repo.Delete(ctx, rec.OwnerUID, rec.DocID); err != nil {
				s.logger.Warn(ctx, "sweep delete failed", "docId", rec.DocID, "error", err.Error())
				continue
			}
			removed++
			s.logger.Info(ctx, "removed dangling ledger record", "uid", rec.OwnerUID, "docId", rec.DocID)
			s.notifyOwner(ctx, rec.OwnerUID)
		}

		last := batch[len(batch)-1]
		afterOwner, afterDoc = last.OwnerUID, last.DocID
	}
}

const cursorSeparator = "|"

func encodeCursor(createdAt time.Time, docID string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + docID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (*clips.PageKey, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("bad cursor: %w", common.ErrInvalidRequest)
	}

	parts := strings.SplitN(string(raw), cursorSeparator, 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bad cursor: %w", common.ErrInvalidRequest)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("bad cursor: %w", common.ErrInvalidRequest)
	}

	return &clips.PageKey{CreatedAt: createdAt, DocID: parts[1]}, nil
}
