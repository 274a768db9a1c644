// Package billingportal bridges verified users to the hosted billing
// provider: lazy customer creation and short-lived portal sessions.
package billingportal

import (
	"context"
	"fmt"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Provider is the external billing capability. The provider owns customer
// records and portal sessions; this process only stores the uid mapping.
type Provider interface {
	// CreateCustomer registers a new billing customer tagged with uid.
	CreateCustomer(ctx context.Context, uid, email string) (string, error)

	// PortalURL mints a hosted billing management session and returns its
	// redirect URL. Never cached; sessions are time-boxed by the provider.
	PortalURL(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripeProvider implements Provider on the Stripe API. The client is
// constructed once at startup and injected; no package-level singletons.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(apiKey string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("billing api key missing: %w", common.ErrMisconfigured)
	}
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api}, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, uid, email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("uid", uid)

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing customer: %v: %w", err, common.ErrUpstream)
	}
	return cust.ID, nil
}

func (p *StripeProvider) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing portal session: %v: %w", err, common.ErrUpstream)
	}
	return sess.URL, nil
}
