package wire

import (
	"booking-platform/internal/adaptor"
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(staffOnly(repo, log))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		// staff accounts are provisioned by admins only
		r.With(middleware.Admin(log)).Post("/admin/users", authHandler.CreateUser)
	})
}
