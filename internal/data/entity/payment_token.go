package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentToken grants unauthenticated payment against one booking.
type PaymentToken struct {
	BaseSimple
	Token           string     `db:"token"`
	BookingID       uuid.UUID  `db:"booking_id"`
	ExpiresAt       time.Time  `db:"expires_at"`
	RequestedAmount *float64   `db:"requested_amount"`
	UsedAt          *time.Time `db:"used_at"`
	CreatedBy       *uuid.UUID `db:"created_by"`
}

func (t *PaymentToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *PaymentToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsValid reports used_at IS NULL AND now < expires_at.
func (t *PaymentToken) IsValid(now time.Time) bool {
	return !t.IsUsed() && !t.IsExpired(now)
}

// Short returns a prefix safe to put in logs.
func (t *PaymentToken) Short() string {
	if len(t.Token) <= 8 {
		return t.Token
	}
	return t.Token[:8]
}
