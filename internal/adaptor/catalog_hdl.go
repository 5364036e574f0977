package adaptor

import (
	"net/http"

	"booking-platform/internal/dto/request"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// ListModels handles GET /api/models?kind=houseboat
func (h *CatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.ListModels(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		handleServiceError(w, h.log, err, "list models")
		return
	}

	utils.ResponseSuccess(w, "success", models)
}

// Quote handles GET /api/quote?model_id=&start_date=&end_date=
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Quote(r.Context(), stayFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "quote")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// Availability handles GET /api/availability?model_id=&start_date=&end_date=
func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	avail, err := h.service.CheckAvailability(r.Context(), stayFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", avail)
}

func stayFromQuery(r *http.Request) *request.QuoteRequest {
	query := r.URL.Query()
	return &request.QuoteRequest{
		ModelID:   query.Get("model_id"),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}
}
