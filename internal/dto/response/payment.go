package response

import (
	"time"

	"booking-platform/internal/data/entity"

	"github.com/samber/lo"
)

type TransactionResponse struct {
	ID          string                   `json:"id"`
	BookingID   string                   `json:"booking_id"`
	Amount      float64                  `json:"amount"`
	Status      entity.TransactionStatus `json:"status"`
	Method      entity.PaymentMethod     `json:"method"`
	ExternalRef *string                  `json:"external_ref,omitempty"`
	PaidAt      time.Time                `json:"paid_at"`
	Metadata    map[string]any           `json:"metadata,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// TransactionMutationResponse returns the corrected ledger entry together
// with the booking balance it produced.
type TransactionMutationResponse struct {
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Booking     BookingResponse      `json:"booking"`
}

type PaymentLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	BookingID string    `json:"booking_id"`
	Amount    float64   `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PaymentLinkValidationResponse struct {
	BookingID        string    `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	ClientName       string    `json:"client_name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TotalPrice       float64   `json:"total_price"`
	AmountPaid       float64   `json:"amount_paid"`
	Remaining        float64   `json:"remaining"`
	PayableAmount    float64   `json:"payable_amount"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func TransactionToResponse(t *entity.PaymentTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		BookingID:   t.BookingID.String(),
		Amount:      t.Amount,
		Status:      t.Status,
		Method:      t.Method,
		ExternalRef: t.ExternalRef,
		PaidAt:      t.PaidAt,
		Metadata:    t.Metadata,
		CreatedAt:   t.CreatedAt,
	}
}

func TransactionsToResponse(txs []*entity.PaymentTransaction) []TransactionResponse {
	return lo.Map(txs, func(t *entity.PaymentTransaction, _ int) TransactionResponse {
		return TransactionToResponse(t)
	})
}
