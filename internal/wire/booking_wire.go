package wire

import (
	"booking-platform/internal/adaptor"
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	txHandler *adaptor.TransactionHandler,
	linkHandler *adaptor.PaymentLinkHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/admin/bookings", func(r chi.Router) {
		r.Use(staffOnly(repo, log))

		r.Get("/", bookingHandler.ListBookings)
		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Patch("/{id}", bookingHandler.UpdateBooking)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/{id}/transactions", txHandler.ListTransactions)
		r.With(middleware.Admin(log)).Delete("/{id}", bookingHandler.DeleteBooking)
	})

	r.With(staffOnly(repo, log)).Post("/admin/payment-links", linkHandler.Generate)
}
