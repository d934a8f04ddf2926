package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"

	"dakotahome/models"
)

const productName = "Dakota Country Home Stay"

// CreateSessionFunc issues the session-creation call to the payment
// provider. Injectable so tests can count calls without network access.
type CreateSessionFunc func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

// Initiator requests hosted embedded-checkout sessions from Stripe.
// Configuration problems and provider errors are both captured into the
// result's error variant — nothing is raised past this boundary — and no
// retry is attempted: the caller decides whether to re-invoke.
type Initiator struct {
	Key    string
	Domain string

	// CreateSession defaults to the Stripe SDK; injectable for tests.
	CreateSession CreateSessionFunc

	logger *zap.Logger
}

func NewInitiator(key, domain string, logger *zap.Logger) *Initiator {
	return &Initiator{
		Key:           key,
		Domain:        domain,
		CreateSession: session.New,
		logger:        logger,
	}
}

// Create requests one checkout session for the given amount. Metadata
// values must already be strings: the provider does not guarantee
// structured metadata types, so the booking's dates and guest count
// round-trip as string-valued entries.
func (i *Initiator) Create(ctx context.Context, amountCents int64, customerEmail string, metadata map[string]string, description string) models.CheckoutResult {
	if i.Key == "" {
		// Configuration error, distinct from a transient provider failure.
		// Detected before any network attempt.
		return models.CheckoutResult{Err: "payment not configured"}
	}
	if amountCents <= 0 {
		return models.CheckoutResult{Err: fmt.Sprintf("invalid amount: %d cents", amountCents)}
	}

	if description == "" {
		description = "Vacation rental booking"
	}
	currency := "usd"

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		UIMode:        stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		CustomerEmail: stripe.String(customerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(productName),
						Description: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ReturnURL: stripe.String(i.Domain + "?session_id={CHECKOUT_SESSION_ID}&status=complete"),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	s, err := i.CreateSession(params)
	if err != nil {
		msg := err.Error()
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			msg = stripeErr.Msg
		}
		i.logger.Warn("checkout session creation failed",
			zap.Int64("amount_cents", amountCents), zap.Error(err))
		return models.CheckoutResult{Err: msg}
	}

	return models.CheckoutResult{Session: &models.CheckoutSession{
		SessionID:    s.ID,
		ClientSecret: s.ClientSecret,
		Status:       "created",
		AmountCents:  amountCents,
		Currency:     currency,
	}}
}
