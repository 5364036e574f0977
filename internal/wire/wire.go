package wire

import (
	"net/http"

	"booking-platform/internal/adaptor"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/middleware"
	"booking-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the router and the services behind it.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services and handlers and mounts every route.
func Wiring(
	repo *repository.Repository,
	provider usecase.PaymentProvider,
	locker lock.Locker,
	notifier usecase.Notifier,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, provider, locker, notifier, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(config.App.SiteURL))

	r.Route("/api", func(r chi.Router) {
		wireCatalog(r, handler.Catalog)
		wirePayment(r, handler.Checkout, handler.Webhook, handler.PaymentLink)
		wireAuth(r, handler.Auth, repo, logger)
		wireBooking(r, handler.Booking, handler.Transaction, handler.PaymentLink, repo, logger)
		wireTransaction(r, handler.Transaction, repo, logger)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// staffOnly mounts session auth for staff routes.
func staffOnly(repo *repository.Repository, log *zap.Logger) func(http.Handler) http.Handler {
	return middleware.AuthSession(repo.Session, repo.User, log)
}
