package adaptor

import (
	"net/http"

	"booking-platform/internal/dto/request"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentLinkHandler struct {
	service usecase.PaymentLinkService
	log     *zap.Logger
}

func NewPaymentLinkHandler(service usecase.PaymentLinkService, log *zap.Logger) *PaymentLinkHandler {
	return &PaymentLinkHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment_link")),
	}
}

// Generate handles POST /api/admin/payment-links (staff)
func (h *PaymentLinkHandler) Generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.GeneratePaymentLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	link, err := h.service.Generate(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "generate payment link")
		return
	}

	utils.ResponseCreated(w, "Payment link created", link)
}

// Validate handles GET /api/payments/link/{token} (public)
func (h *PaymentLinkHandler) Validate(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.Validate(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleServiceError(w, h.log, err, "validate payment link")
		return
	}

	utils.ResponseSuccess(w, "success", link)
}

// Process handles POST /api/payments/link/process (public)
func (h *PaymentLinkHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req request.ProcessPaymentLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.Process(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "process payment link")
		return
	}

	utils.ResponseCreated(w, "Checkout session created", checkout)
}
