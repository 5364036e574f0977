package adaptor

import (
	"net/http"

	"booking-platform/internal/dto/request"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service usecase.CheckoutService
	log     *zap.Logger
}

func NewCheckoutHandler(service usecase.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkout")),
	}
}

// CreateCheckout handles POST /api/checkout (public)
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.CreateCheckout(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create checkout")
		return
	}

	utils.ResponseCreated(w, "Checkout session created", checkout)
}

// Status handles GET /api/checkout/sessions/{id} (public, success page)
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "checkout status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}
