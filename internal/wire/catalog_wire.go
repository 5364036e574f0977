package wire

import (
	"booking-platform/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, catalogHandler *adaptor.CatalogHandler) {
	r.Get("/models", catalogHandler.ListModels)
	r.Get("/quote", catalogHandler.Quote)
	r.Get("/availability", catalogHandler.Availability)
}
