package usecase

import (
	"context"
	"time"

	"booking-platform/internal/data/entity"

	"github.com/google/uuid"
)

// CheckoutIntent is everything needed to materialize a booking once the
// provider confirms payment. It travels inside the checkout session and is
// only flattened to provider metadata by the gateway.
type CheckoutIntent struct {
	// Set when paying against an existing booking (payment links).
	BookingID    *uuid.UUID
	PaymentToken string

	ModelID     uuid.UUID
	BoatID      *uuid.UUID
	ClientName  string
	ClientEmail string
	ClientPhone *string
	StartDate   time.Time
	EndDate     time.Time
	Guests      int
	AddOns      []entity.AddOn
	Billing     entity.BillingDetails
	Discount    float64

	TotalPrice     float64
	Deposit        float64
	AmountToCharge float64
	PaymentOption  string
	Source         string
	Description    string
}

const (
	PaymentOptionDeposit = "deposit"
	PaymentOptionFull    = "full"
)

type CheckoutSession struct {
	ID              string
	URL             string
	Status          string // open, complete, expired
	PaymentStatus   string // paid, unpaid, no_payment_required
	AmountTotal     float64
	Currency        string
	PaymentIntentID string
	Intent          *CheckoutIntent
}

func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required"
}

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// PaymentEvent is a verified provider webhook event.
type PaymentEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

type PaymentProvider interface {
	CreateSession(ctx context.Context, intent CheckoutIntent, successURL, cancelURL string) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (*CheckoutSession, error)
	// VerifyWebhook must fail with ErrSignatureInvalid before looking at the body.
	// A signed body that cannot be decoded fails with ErrInvalidPayload.
	VerifyWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// Notifier delivers best-effort side effects. Callers log errors and move on.
type Notifier interface {
	PaymentReceived(ctx context.Context, booking *entity.Booking, amount float64) error
	InvoiceRequested(ctx context.Context, booking *entity.Booking) error
}
