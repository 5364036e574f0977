package request

type CreateTransactionRequest struct {
	BookingID   string         `json:"booking_id" validate:"required,uuid"`
	Amount      float64        `json:"amount" validate:"required,gt=0"`
	Status      string         `json:"status" validate:"omitempty,oneof=paid pending failed refunded"`
	Method      string         `json:"method" validate:"required,oneof=card payment_link cash transfer other"`
	ExternalRef *string        `json:"external_ref,omitempty" validate:"omitempty,max=255"`
	PaidAt      *string        `json:"paid_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdateTransactionRequest is a staff correction of amount, method or date.
type UpdateTransactionRequest struct {
	Amount   *float64       `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Status   *string        `json:"status,omitempty" validate:"omitempty,oneof=paid pending failed refunded"`
	Method   *string        `json:"method,omitempty" validate:"omitempty,oneof=card payment_link cash transfer other"`
	PaidAt   *string        `json:"paid_at,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GeneratePaymentLinkRequest struct {
	BookingID string   `json:"booking_id" validate:"required,uuid"`
	Amount    *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type ProcessPaymentLinkRequest struct {
	Token string `json:"token" validate:"required,hexadecimal,len=64"`
}
