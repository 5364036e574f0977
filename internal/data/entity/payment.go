package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPaid     TransactionStatus = "paid"
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodPaymentLink PaymentMethod = "payment_link"
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodOther       PaymentMethod = "other"
)

// PaymentTransaction is one recorded money movement against a booking.
type PaymentTransaction struct {
	BaseNoDelete
	BookingID   uuid.UUID         `db:"booking_id"`
	Amount      float64           `db:"amount"`
	Status      TransactionStatus `db:"status"`
	Method      PaymentMethod     `db:"method"`
	ExternalRef *string           `db:"external_ref"`
	PaidAt      time.Time         `db:"paid_at"`
	Metadata    map[string]any    `db:"metadata"`
	RecordedBy  *uuid.UUID        `db:"recorded_by"`
}
