package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// MaxAmount is the largest whole-unit amount a link can carry. Stripe caps
// unit_amount at 99,999,999 minor units.
const MaxAmount int64 = 999_999

var (
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// LinkRequest describes one hosted payment link. Amount is in whole currency units.
type LinkRequest struct {
	UserID      string
	Email       string
	PackageType string
	PaymentType string
	ProductName string
	Amount      int64
	RedirectURL string
}

// PaymentLinkCreator creates hosted payment links
type PaymentLinkCreator interface {
	CreatePaymentLink(ctx context.Context, req LinkRequest) (string, error)
}

// EventVerifier authenticates webhook deliveries
type EventVerifier interface {
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

type StripeService struct {
	api           *client.API
	webhookSecret string
	currency      string
}

// NewStripeService builds a client for secretKey. backends may be nil to use
// the live Stripe endpoints.
func NewStripeService(secretKey, webhookSecret, currency string, backends *stripe.Backends) *StripeService {
	api := &client.API{}
	api.Init(secretKey, backends)

	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeService{
		api:           api,
		webhookSecret: webhookSecret,
		currency:      currency,
	}
}

// CreatePaymentLink creates a one-off Price and a PaymentLink for it that
// redirects to req.RedirectURL after completion
func (s *StripeService) CreatePaymentLink(ctx context.Context, req LinkRequest) (string, error) {
	if req.Amount <= 0 || req.Amount > MaxAmount {
		return "", fmt.Errorf("%w: %d", ErrAmountOutOfRange, req.Amount)
	}

	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(s.currency),
		UnitAmount: stripe.Int64(req.Amount * 100),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(req.ProductName),
		},
	}
	priceParams.Context = ctx

	price, err := s.api.Prices.New(priceParams)
	if err != nil {
		return "", fmt.Errorf("stripe create price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String(string(stripe.PaymentLinkAfterCompletionTypeRedirect)),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(req.RedirectURL),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("userId", req.UserID)
	linkParams.AddMetadata("packageType", req.PackageType)
	linkParams.AddMetadata("email", req.Email)
	linkParams.AddMetadata("paymentType", req.PaymentType)

	link, err := s.api.PaymentLinks.New(linkParams)
	if err != nil {
		return "", fmt.Errorf("stripe create payment link: %w", err)
	}
	return link.URL, nil
}

// ConstructEvent verifies the Stripe-Signature header and parses the event.
// Failures wrap ErrInvalidSignature or ErrInvalidPayload.
func (s *StripeService) ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	return event, nil
}
