package repository

import (
	"booking-platform/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User           UserRepository
	Session        SessionRepository
	BoatModel      BoatModelRepository
	Boat           BoatRepository
	Booking        BookingRepository
	Transaction    TransactionRepository
	PaymentToken   PaymentTokenRepository
	ProcessedEvent ProcessedEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:           NewUserRepository(db, log),
		Session:        NewSessionRepository(db, log),
		BoatModel:      NewBoatModelRepository(db, log),
		Boat:           NewBoatRepository(db, log),
		Booking:        NewBookingRepository(db, log),
		Transaction:    NewTransactionRepository(db, log),
		PaymentToken:   NewPaymentTokenRepository(db, log),
		ProcessedEvent: NewProcessedEventRepository(db, log),
	}
}
