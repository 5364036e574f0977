package adaptor

import (
	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	Catalog     *CatalogHandler
	Checkout    *CheckoutHandler
	Webhook     *WebhookHandler
	PaymentLink *PaymentLinkHandler
	Booking     *BookingHandler
	Transaction *TransactionHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		Catalog:     NewCatalogHandler(service.Catalog, log),
		Checkout:    NewCheckoutHandler(service.Checkout, log),
		Webhook:     NewWebhookHandler(service.Materializer, config.Payment.WebhookBodyLimit, log),
		PaymentLink: NewPaymentLinkHandler(service.PaymentLink, log),
		Booking:     NewBookingHandler(service.Booking, log),
		Transaction: NewTransactionHandler(service.Transaction, log),
	}
}
