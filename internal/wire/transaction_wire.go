package wire

import (
	"booking-platform/internal/adaptor"
	"booking-platform/internal/data/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTransaction(
	r chi.Router,
	txHandler *adaptor.TransactionHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/admin/transactions", func(r chi.Router) {
		r.Use(staffOnly(repo, log))

		r.Post("/", txHandler.CreateTransaction)
		r.Patch("/{id}", txHandler.UpdateTransaction)
		r.Delete("/{id}", txHandler.DeleteTransaction)
	})
}
