package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeClient implements usecase.PaymentProvider on Stripe Checkout.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	currency      string
	tolerance     time.Duration
	log           *zap.Logger
}

func NewStripeClient(config utils.PaymentConfig, backends *stripe.Backends, log *zap.Logger) *StripeClient {
	currency := strings.ToLower(config.Currency)
	if currency == "" {
		currency = "eur"
	}

	return &StripeClient{
		api:           client.New(config.SecretKey, backends),
		webhookSecret: config.WebhookSecret,
		currency:      currency,
		tolerance:     webhook.DefaultTolerance,
		log:           log.With(zap.String("gateway", "stripe")),
	}
}

func (c *StripeClient) CreateSession(ctx context.Context, intent usecase.CheckoutIntent, successURL, cancelURL string) (*usecase.CheckoutSession, error) {
	amount := ToMinorUnits(intent.AmountToCharge)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount to charge must be positive", usecase.ErrInvalidAmount)
	}

	md, err := EncodeIntent(intent)
	if err != nil {
		return nil, err
	}

	name := intent.Description
	if name == "" {
		name = "Booking"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(intent.ClientEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(c.currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: md,
		},
	}
	params.Context = ctx
	for k, v := range md {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.log.Error("Stripe checkout session failed", zap.Error(err), zap.Int64("amount", amount))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	c.log.Debug("Stripe checkout session created", zap.String("session_id", session.ID), zap.Int64("amount", amount))
	return c.toSession(session)
}

func (c *StripeClient) RetrieveSession(ctx context.Context, id string) (*usecase.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("checkout session %s: %w", id, usecase.ErrNotFound)
		}
		return nil, fmt.Errorf("retrieve checkout session %s: %w", id, err)
	}

	return c.toSession(session)
}

// VerifyWebhook checks the Stripe-Signature header before the body is parsed.
// Events other than checkout sessions come back without a Session.
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (*usecase.PaymentEvent, error) {
	if c.webhookSecret == "" || signature == "" {
		return nil, usecase.ErrSignatureInvalid
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                c.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		c.log.Warn("Stripe webhook signature rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", usecase.ErrSignatureInvalid, err)
	}

	out := &usecase.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}

	// signature is good from here on, so failures are about the payload
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", usecase.ErrInvalidPayload, err)
	}

	out.Session, err = c.toSession(&session)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecase.ErrInvalidPayload, err)
	}
	return out, nil
}

func (c *StripeClient) toSession(s *stripe.CheckoutSession) (*usecase.CheckoutSession, error) {
	out := &usecase.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   FromMinorUnits(s.AmountTotal),
		Currency:      string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}

	if len(s.Metadata) > 0 {
		intent, err := DecodeIntent(s.Metadata)
		if err != nil {
			c.log.Error("Checkout session carries unreadable metadata",
				zap.Error(err), zap.String("session_id", s.ID))
			return nil, fmt.Errorf("session %s metadata: %w", s.ID, err)
		}
		out.Intent = intent
	}

	return out, nil
}

// ToMinorUnits converts a currency amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
