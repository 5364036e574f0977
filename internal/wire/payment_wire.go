package wire

import (
	"booking-platform/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wirePayment mounts the public payment surface. The webhook is
// authenticated by its signature only.
func wirePayment(
	r chi.Router,
	checkoutHandler *adaptor.CheckoutHandler,
	webhookHandler *adaptor.WebhookHandler,
	linkHandler *adaptor.PaymentLinkHandler,
) {
	r.Post("/checkout", checkoutHandler.CreateCheckout)
	r.Get("/checkout/sessions/{id}", checkoutHandler.Status)

	r.Post("/webhooks/stripe", webhookHandler.Stripe)

	r.Get("/payments/link/{token}", linkHandler.Validate)
	r.Post("/payments/link/process", linkHandler.Process)
}
