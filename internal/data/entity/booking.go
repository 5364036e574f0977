package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusMaintenance BookingStatus = "maintenance"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid      PaymentStatus = "unpaid"
	PaymentStatusDepositPaid PaymentStatus = "deposit_paid"
	PaymentStatusFullyPaid   PaymentStatus = "fully_paid"
)

const (
	SourceWebsite     = "website"
	SourceStaff       = "staff"
	SourcePaymentLink = "payment_link"
)

// PaymentEpsilon absorbs rounding when comparing amount paid against total price.
const PaymentEpsilon = 0.05

type AddOn struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type BillingDetails struct {
	TaxID     *string `json:"tax_id,omitempty"`
	LegalName *string `json:"legal_name,omitempty"`
	Address   *string `json:"address,omitempty"`
}

type Booking struct {
	BaseNoDelete
	Reference         string          `db:"reference"`
	ModelID           uuid.UUID       `db:"model_id"`
	BoatID            *uuid.UUID      `db:"boat_id"` // nil until a unit is assigned
	ClientName        string          `db:"client_name"`
	ClientEmail       string          `db:"client_email"`
	ClientPhone       *string         `db:"client_phone"`
	StartDate         time.Time       `db:"start_date"`
	EndDate           time.Time       `db:"end_date"`
	Guests            int             `db:"guests"`
	TotalPrice        float64         `db:"total_price"`
	AmountPaid        float64         `db:"amount_paid"`
	Discount          float64         `db:"discount"`
	PaymentStatus     PaymentStatus   `db:"payment_status"`
	Status            BookingStatus   `db:"status"`
	Source            string          `db:"source"`
	Notes             *string         `db:"notes"`
	AddOns            []AddOn         `db:"add_ons"`
	PriceBreakdown    *PriceBreakdown `db:"price_breakdown"`
	Billing           BillingDetails  `db:"billing"`
	CheckoutSessionID *string         `db:"checkout_session_id"`
	CreatedBy         *uuid.UUID      `db:"created_by"`
	// Unledgered holds payments already counted in AmountPaid whose ledger
	// row could not be written, keyed by external reference.
	Unledgered map[string]float64 `db:"unledgered"`
}

// HasUnledgered reports whether the payment with this reference is still
// waiting for its ledger row.
func (b *Booking) HasUnledgered(ref string) bool {
	_, ok := b.Unledgered[ref]
	return ok
}

// Remaining returns the outstanding balance, never negative.
func (b *Booking) Remaining() float64 {
	remaining := RoundMoney(b.TotalPrice - b.AmountPaid)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DerivePaymentStatus is the single authority for payment_status.
func DerivePaymentStatus(amountPaid, totalPrice float64) PaymentStatus {
	switch {
	case totalPrice > 0 && amountPaid >= totalPrice-PaymentEpsilon:
		return PaymentStatusFullyPaid
	case amountPaid > 0 && amountPaid < totalPrice:
		return PaymentStatusDepositPaid
	default:
		return PaymentStatusUnpaid
	}
}

// PromoteOnPayment moves a pending booking to confirmed once money is in.
// Any other status is left alone.
func PromoteOnPayment(status BookingStatus, amountPaid float64) BookingStatus {
	if amountPaid > 0 && status == BookingStatusPending {
		return BookingStatusConfirmed
	}
	return status
}

func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func AddOnsTotal(addOns []AddOn) float64 {
	var total float64
	for _, a := range addOns {
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += a.Price * float64(qty)
	}
	return RoundMoney(total)
}
