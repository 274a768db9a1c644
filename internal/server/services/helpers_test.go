package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/dbx"
	"github.com/sketchmotion/sketchmotion/internal/logging"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/billinglinks"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/clips"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/jobs"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClipsRepo is an in-memory ledger with the same merge-upsert semantics
// as the Postgres implementation.
type fakeClipsRepo struct {
	mu      sync.Mutex
	records map[string]*models.ClipRecord

	upserts    int
	deletes    int
	failDelete bool

	clock time.Time
}

func newFakeClipsRepo() *fakeClipsRepo {
	return &fakeClipsRepo{
		records: make(map[string]*models.ClipRecord),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeClipsRepo) key(uid, docID string) string { return uid + "\x00" + docID }

func (f *fakeClipsRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeClipsRepo) Upsert(ctx context.Context, clip *models.ClipRecord) (*models.ClipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	now := f.tick()
	stored, ok := f.records[f.key(clip.OwnerUID, clip.DocID)]
	if !ok {
		cp := *clip
		cp.CreatedAt = now
		cp.UpdatedAt = now
		f.records[f.key(clip.OwnerUID, clip.DocID)] = &cp
		out := cp
		return &out, nil
	}

	stored.Kind = clip.Kind
	stored.Status = clip.Status
	if clip.DeliveryHint != nil {
		stored.DeliveryHint = clip.DeliveryHint
	}
	if clip.DurationSeconds != nil {
		stored.DurationSeconds = clip.DurationSeconds
	}
	if clip.Width != nil {
		stored.Width = clip.Width
	}
	if clip.Height != nil {
		stored.Height = clip.Height
	}
	if clip.SizeBytes != nil {
		stored.SizeBytes = clip.SizeBytes
	}
	if clip.Title != nil {
		stored.Title = clip.Title
	}
	stored.UpdatedAt = now
	out := *stored
	return &out, nil
}

func (f *fakeClipsRepo) GetByDocID(ctx context.Context, ownerUID, docID string) (*models.ClipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[f.key(ownerUID, docID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (f *fakeClipsRepo) SelectPage(ctx context.Context, ownerUID, kind string, after *clips.PageKey, limit int) ([]*models.ClipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.ClipRecord
	for _, rec := range f.records {
		if rec.OwnerUID != ownerUID {
			continue
		}
		if kind != "" && rec.Kind != kind {
			continue
		}
		cp := *rec
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].DocID > all[j].DocID
	})

	var out []*models.ClipRecord
	for _, rec := range all {
		if after != nil {
			if rec.CreatedAt.After(after.CreatedAt) {
				continue
			}
			if rec.CreatedAt.Equal(after.CreatedAt) && rec.DocID >= after.DocID {
				continue
			}
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeClipsRepo) Count(ctx context.Context, ownerUID, kind string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, rec := range f.records {
		if rec.OwnerUID == ownerUID && (kind == "" || rec.Kind == kind) {
			n++
		}
	}
	return n, nil
}

func (f *fakeClipsRepo) Delete(ctx context.Context, ownerUID, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.failDelete {
		return fmt.Errorf("db error")
	}
	if _, ok := f.records[f.key(ownerUID, docID)]; !ok {
		return common.ErrNotFound
	}
	delete(f.records, f.key(ownerUID, docID))
	return nil
}

func (f *fakeClipsRepo) SelectBatch(ctx context.Context, afterOwnerUID, afterDocID string, limit int) ([]*models.ClipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.ClipRecord
	for _, rec := range f.records {
		cp := *rec
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].OwnerUID != all[j].OwnerUID {
			return all[i].OwnerUID < all[j].OwnerUID
		}
		return all[i].DocID < all[j].DocID
	})

	var out []*models.ClipRecord
	for _, rec := range all {
		if rec.OwnerUID < afterOwnerUID ||
			(rec.OwnerUID == afterOwnerUID && rec.DocID <= afterDocID) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeBillingLinksRepo is an in-memory uid -> customer mapping.
type fakeBillingLinksRepo struct {
	mu    sync.Mutex
	links map[string]string
}

func newFakeBillingLinksRepo() *fakeBillingLinksRepo {
	return &fakeBillingLinksRepo{links: make(map[string]string)}
}

func (f *fakeBillingLinksRepo) Get(ctx context.Context, ownerUID string) (*models.BillingLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.links[ownerUID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.BillingLink{OwnerUID: ownerUID, CustomerID: id}, nil
}

func (f *fakeBillingLinksRepo) Upsert(ctx context.Context, ownerUID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[ownerUID] = customerID
	return nil
}

type fakeJobsRepo struct {
	created []*models.RenderJob
	err     error
}

func (f *fakeJobsRepo) Create(ctx context.Context, job *models.RenderJob) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, job)
	return nil
}

type fakeRepoManager struct {
	clipsRepo   *fakeClipsRepo
	billingRepo *fakeBillingLinksRepo
	jobsRepo    *fakeJobsRepo
}

func (m *fakeRepoManager) Clips(db dbx.DBTX) clips.Repository                 { return m.clipsRepo }
func (m *fakeRepoManager) BillingLinks(db dbx.DBTX) billinglinks.Repository   { return m.billingRepo }
func (m *fakeRepoManager) Jobs(db dbx.DBTX) jobs.Repository                   { return m.jobsRepo }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

// fakeMediaStore records provider interactions.
type fakeMediaStore struct {
	mu sync.Mutex

	destroyed   []string
	destroyErr  error
	missing     map[string]bool
	existsErr   error
	urlCalls    int
	deliveryURL string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{missing: make(map[string]bool), deliveryURL: "https://cdn.example.com/signed"}
}

func (f *fakeMediaStore) SignedDeliveryURL(objectID string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlCalls++
	return f.deliveryURL, nil
}

func (f *fakeMediaStore) Destroy(ctx context.Context, objectID string, invalidate bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, objectID)
	f.missing[objectID] = true
	return nil
}

func (f *fakeMediaStore) Exists(ctx context.Context, objectID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return !f.missing[objectID], nil
}

type fakeBillingProvider struct {
	createCalls int
	createErr   error
	portalCalls int
	portalErr   error

	lastUID       string
	lastEmail     string
	lastCustomer  string
	lastReturnURL string
}

func (f *fakeBillingProvider) CreateCustomer(ctx context.Context, uid, email string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.lastUID, f.lastEmail = uid, email
	return fmt.Sprintf("cus_%s_%d", uid, f.createCalls), nil
}

func (f *fakeBillingProvider) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	f.portalCalls++
	if f.portalErr != nil {
		return "", f.portalErr
	}
	f.lastCustomer, f.lastReturnURL = customerID, returnURL
	return "https://billing.example.com/session/" + customerID, nil
}
