package adaptor

import (
	"net/http"

	"booking-platform/internal/dto/request"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	service usecase.TransactionService
	log     *zap.Logger
}

func NewTransactionHandler(service usecase.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log.With(zap.String("handler", "transaction")),
	}
}

// ListTransactions handles GET /api/admin/bookings/{id}/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list transactions")
		return
	}

	utils.ResponseSuccess(w, "success", txs)
}

// CreateTransaction handles POST /api/admin/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.CreateTransaction(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create transaction")
		return
	}

	utils.ResponseCreated(w, "Transaction recorded", result)
}

// UpdateTransaction handles PATCH /api/admin/transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.UpdateTransaction(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction updated", result)
}

// DeleteTransaction handles DELETE /api/admin/transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.service.DeleteTransaction(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete transaction")
		return
	}

	utils.ResponseSuccess(w, "Transaction deleted", result)
}
