package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sketchmotion/sketchmotion/internal/billingportal"
	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/logging"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/repomanager"
)

// BillingService resolves a user's external billing customer and opens
// hosted portal sessions.
type BillingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provider    billingportal.Provider
	returnURL   string
	logger      logging.Logger
}

func NewBillingService(db *sql.DB, m repomanager.RepositoryManager, provider billingportal.Provider, returnURL string, logger logging.Logger) *BillingService {
	return &BillingService{
		db:          db,
		repomanager: m,
		provider:    provider,
		returnURL:   returnURL,
		logger:      logger,
	}
}

// OpenPortal returns the redirect URL of a hosted billing session for uid,
// creating and persisting the billing customer on first use.
//
// Two concurrent first-time calls may each create a customer; the mapping
// upsert is last-write-wins and the stray customer is harmless, so no
// locking is attempted.
func (s *BillingService) OpenPortal(ctx context.Context, uid, email string) (string, error) {
	if s.returnURL == "" {
		return "", fmt.Errorf("billing return url missing: %w", common.ErrMisconfigured)
	}

	repo := s.repomanager.BillingLinks(s.db)

	var customerID string
	link, err := repo.Get(ctx, uid)
	switch {
	case err == nil:
		customerID = link.CustomerID
	case errors.Is(err, common.ErrNotFound):
		customerID, err = s.provider.CreateCustomer(ctx, uid, email)
		if err != nil {
			return "", err
		}
		if err := repo.Upsert(ctx, uid, customerID); err != nil {
			return "", err
		}
		s.logger.Info(ctx, "created billing customer", "uid", uid)
	default:
		return "", err
	}

	return s.provider.PortalURL(ctx, customerID, s.returnURL)
}
