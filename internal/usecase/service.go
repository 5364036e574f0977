package usecase

import (
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	Catalog      CatalogService
	Availability AvailabilityService
	Checkout     CheckoutService
	Materializer MaterializerService
	PaymentLink  PaymentLinkService
	Reconcile    ReconcileService
	Booking      BookingService
	Transaction  TransactionService
}

func NewService(
	repo *repository.Repository,
	provider PaymentProvider,
	locker lock.Locker,
	notifier Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	availability := NewAvailabilityService(repo, log)
	reconcile := NewReconcileService(repo, log)
	links := NewPaymentLinkService(repo, reconcile, provider, config, log)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		Catalog:      NewCatalogService(repo, availability, log),
		Availability: availability,
		Checkout:     NewCheckoutService(repo, availability, provider, config, log),
		Materializer: NewMaterializerService(repo, availability, reconcile, links, provider, notifier, locker, config, log),
		PaymentLink:  links,
		Reconcile:    reconcile,
		Booking:      NewBookingService(repo, availability, reconcile, locker, config, log),
		Transaction:  NewTransactionService(repo, reconcile, log),
	}
}
