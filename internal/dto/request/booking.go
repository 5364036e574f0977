package request

import "strings"

type AddOnRequest struct {
	ID       string  `json:"id" validate:"required,max=64"`
	Name     string  `json:"name" validate:"required,max=120"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

type BillingRequest struct {
	TaxID     *string `json:"tax_id,omitempty" validate:"omitempty,max=64"`
	LegalName *string `json:"legal_name,omitempty" validate:"omitempty,max=200"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// QuoteRequest is built from query parameters.
type QuoteRequest struct {
	ModelID   string `json:"model_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// CheckoutRequest is the self-service booking intent. Dates accept
// RFC3339 or YYYY-MM-DD.
type CheckoutRequest struct {
	ModelID       string          `json:"model_id" validate:"required,uuid"`
	StartDate     string          `json:"start_date" validate:"required"`
	EndDate       string          `json:"end_date" validate:"required"`
	Guests        int             `json:"guests" validate:"required,min=1"`
	ClientName    string          `json:"client_name" validate:"required,min=2,max=200"`
	ClientEmail   string          `json:"client_email" validate:"required,email"`
	ClientPhone   *string         `json:"client_phone,omitempty" validate:"omitempty,max=50"`
	AddOns        []AddOnRequest  `json:"add_ons,omitempty" validate:"omitempty,dive"`
	Billing       *BillingRequest `json:"billing,omitempty"`
	PaymentOption string          `json:"payment_option" validate:"required,oneof=deposit full"`
}

type CreateBookingRequest struct {
	ModelID     string          `json:"model_id" validate:"required,uuid"`
	BoatID      *string         `json:"boat_id,omitempty" validate:"omitempty,uuid"`
	ClientName  string          `json:"client_name" validate:"required,min=2,max=200"`
	ClientEmail string          `json:"client_email" validate:"required,email"`
	ClientPhone *string         `json:"client_phone,omitempty" validate:"omitempty,max=50"`
	StartDate   string          `json:"start_date" validate:"required"`
	EndDate     string          `json:"end_date" validate:"required"`
	Guests      int             `json:"guests" validate:"required,min=1"`
	TotalPrice  *float64        `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	Discount    float64         `json:"discount" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending confirmed maintenance"`
	Source      string          `json:"source" validate:"omitempty,max=30"`
	Notes       *string         `json:"notes,omitempty"`
	AddOns      []AddOnRequest  `json:"add_ons,omitempty" validate:"omitempty,dive"`
	Billing     *BillingRequest `json:"billing,omitempty"`
}

// UpdateBookingRequest patches only the fields that are set.
type UpdateBookingRequest struct {
	BoatID        *string         `json:"boat_id,omitempty" validate:"omitempty,uuid"`
	ClientName    *string         `json:"client_name,omitempty" validate:"omitempty,min=2,max=200"`
	ClientEmail   *string         `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientPhone   *string         `json:"client_phone,omitempty" validate:"omitempty,max=50"`
	StartDate     *string         `json:"start_date,omitempty"`
	EndDate       *string         `json:"end_date,omitempty"`
	Guests        *int            `json:"guests,omitempty" validate:"omitempty,min=1"`
	TotalPrice    *float64        `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	Discount      *float64        `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Status        *string         `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled maintenance"`
	PaymentStatus *string         `json:"payment_status,omitempty" validate:"omitempty,oneof=unpaid deposit_paid fully_paid"`
	Notes         *string         `json:"notes,omitempty"`
	AddOns        *[]AddOnRequest `json:"add_ons,omitempty" validate:"omitempty,dive"`
	Billing       *BillingRequest `json:"billing,omitempty"`
}

type ListBookingsRequest struct {
	PaginatedRequest
	Status  string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled maintenance"`
	ModelID string `json:"model_id" validate:"omitempty,uuid"`
	Search  string `json:"search" validate:"omitempty,max=100"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// NormalizeEmail trims and lowercases an address before it is validated.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *CheckoutRequest) Normalize() {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.ClientEmail = NormalizeEmail(r.ClientEmail)
}

func (r *CreateBookingRequest) Normalize() {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.ClientEmail = NormalizeEmail(r.ClientEmail)
}

func (r *UpdateBookingRequest) Normalize() {
	if r.ClientName != nil {
		name := strings.TrimSpace(*r.ClientName)
		r.ClientName = &name
	}
	if r.ClientEmail != nil {
		email := NormalizeEmail(*r.ClientEmail)
		r.ClientEmail = &email
	}
}
