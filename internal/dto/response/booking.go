package response

import (
	"time"

	"booking-platform/internal/data/entity"

	"github.com/samber/lo"
)

type BookingResponse struct {
	ID                string                 `json:"id"`
	Reference         string                 `json:"reference"`
	ModelID           string                 `json:"model_id"`
	BoatID            *string                `json:"boat_id,omitempty"`
	ClientName        string                 `json:"client_name"`
	ClientEmail       string                 `json:"client_email"`
	ClientPhone       *string                `json:"client_phone,omitempty"`
	StartDate         time.Time              `json:"start_date"`
	EndDate           time.Time              `json:"end_date"`
	Guests            int                    `json:"guests"`
	TotalPrice        float64                `json:"total_price"`
	AmountPaid        float64                `json:"amount_paid"`
	Remaining         float64                `json:"remaining"`
	Discount          float64                `json:"discount"`
	PaymentStatus     entity.PaymentStatus   `json:"payment_status"`
	Status            entity.BookingStatus   `json:"status"`
	Source            string                 `json:"source"`
	Notes             *string                `json:"notes,omitempty"`
	AddOns            []entity.AddOn         `json:"add_ons"`
	PriceBreakdown    *entity.PriceBreakdown `json:"price_breakdown,omitempty"`
	Billing           entity.BillingDetails  `json:"billing"`
	CheckoutSessionID *string                `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	Transactions []TransactionResponse `json:"transactions"`
	PaymentLinks []PaymentLinkResponse `json:"payment_links"`
}

type CheckoutResponse struct {
	SessionID      string  `json:"session_id"`
	URL            string  `json:"url"`
	TotalPrice     float64 `json:"total_price"`
	Deposit        float64 `json:"deposit"`
	AmountToCharge float64 `json:"amount_to_charge"`
}

// CheckoutStatusResponse backs the success page. Paid is true whenever the
// provider says so, even before the booking row exists.
type CheckoutStatusResponse struct {
	SessionID string           `json:"session_id"`
	Paid      bool             `json:"paid"`
	Status    string           `json:"status"`
	Booking   *BookingResponse `json:"booking,omitempty"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	addOns := b.AddOns
	if addOns == nil {
		addOns = []entity.AddOn{}
	}

	var boatID *string
	if b.BoatID != nil {
		boatID = lo.ToPtr(b.BoatID.String())
	}

	return BookingResponse{
		ID:                b.ID.String(),
		Reference:         b.Reference,
		ModelID:           b.ModelID.String(),
		BoatID:            boatID,
		ClientName:        b.ClientName,
		ClientEmail:       b.ClientEmail,
		ClientPhone:       b.ClientPhone,
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		Guests:            b.Guests,
		TotalPrice:        b.TotalPrice,
		AmountPaid:        b.AmountPaid,
		Remaining:         b.Remaining(),
		Discount:          b.Discount,
		PaymentStatus:     b.PaymentStatus,
		Status:            b.Status,
		Source:            b.Source,
		Notes:             b.Notes,
		AddOns:            addOns,
		PriceBreakdown:    b.PriceBreakdown,
		Billing:           b.Billing,
		CheckoutSessionID: b.CheckoutSessionID,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	return lo.Map(bookings, func(b *entity.Booking, _ int) BookingResponse {
		return BookingToResponse(b)
	})
}
