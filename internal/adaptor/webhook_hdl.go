package adaptor

import (
	"errors"
	"io"
	"net/http"

	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

type WebhookHandler struct {
	service   usecase.MaterializerService
	bodyLimit int64
	log       *zap.Logger
}

func NewWebhookHandler(service usecase.MaterializerService, bodyLimit int64, log *zap.Logger) *WebhookHandler {
	if bodyLimit <= 0 {
		bodyLimit = maxBodyBytes
	}
	return &WebhookHandler{
		service:   service,
		bodyLimit: bodyLimit,
		log:       log.With(zap.String("handler", "webhook")),
	}
}

// Stripe handles POST /api/webhooks/stripe. The raw body is needed for
// signature verification so it is never decoded here. A 5xx makes the
// provider retry; processed, duplicate and ignored events all get 200.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.bodyLimit))
	if err != nil {
		h.log.Warn("Webhook body unreadable", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, usecase.ErrSignatureInvalid) {
			utils.ResponseBadRequest(w, "Invalid signature", nil)
			return
		}
		if errors.Is(err, usecase.ErrInvalidPayload) {
			h.log.Warn("Signed webhook with unreadable payload", zap.Error(err))
			utils.ResponseBadRequest(w, "Invalid payload", nil)
			return
		}
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Webhook processing failed")
		return
	}

	utils.ResponseSuccess(w, "received", map[string]string{
		"event_id": result.EventID,
		"outcome":  result.Outcome,
	})
}
