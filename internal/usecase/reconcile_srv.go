package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRecord is one automated money movement to put in the ledger.
type PaymentRecord struct {
	BookingID   uuid.UUID
	Amount      float64
	Method      entity.PaymentMethod
	ExternalRef string
	PaidAt      time.Time
	Metadata    map[string]any
	RecordedBy  *uuid.UUID
}

// ledgerKey is the reference a payment is tracked under while its ledger row
// is missing.
func (rec PaymentRecord) ledgerKey(txID uuid.UUID) string {
	if rec.ExternalRef != "" {
		return rec.ExternalRef
	}
	return txID.String()
}

type ReconcileService interface {
	// Reconcile recomputes amount_paid and payment_status from the paid
	// transactions of the booking plus payments still waiting for their
	// ledger row. Safe to call any number of times.
	Reconcile(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	// RecordPayment writes the ledger entry then reconciles. A duplicate
	// external reference is treated as already recorded. Any other ledger
	// failure parks the payment on the booking as unledgered so it stays
	// counted through later reconciles until the ledger row lands.
	RecordPayment(ctx context.Context, rec PaymentRecord) (*entity.Booking, error)
}

type reconcileService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewReconcileService(repo *repository.Repository, log *zap.Logger) ReconcileService {
	return &reconcileService{
		repo: repo,
		log:  log.With(zap.String("service", "reconcile")),
		now:  time.Now,
	}
}

func (s *reconcileService) Reconcile(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.RecomputePaymentState(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reconcile booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking reconciled",
		zap.String("booking_id", bookingID.String()),
		zap.Float64("amount_paid", booking.AmountPaid),
		zap.Float64("total_price", booking.TotalPrice),
		zap.String("payment_status", string(booking.PaymentStatus)),
		zap.String("status", string(booking.Status)),
		zap.Int("unledgered", len(booking.Unledgered)),
	)

	return booking, nil
}

func (s *reconcileService) RecordPayment(ctx context.Context, rec PaymentRecord) (*entity.Booking, error) {
	if rec.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}

	now := s.now()
	paidAt := rec.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	tx := &entity.PaymentTransaction{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:  rec.BookingID,
		Amount:     entity.RoundMoney(rec.Amount),
		Status:     entity.TransactionStatusPaid,
		Method:     rec.Method,
		PaidAt:     paidAt,
		Metadata:   rec.Metadata,
		RecordedBy: rec.RecordedBy,
	}
	if rec.ExternalRef != "" {
		ref := rec.ExternalRef
		tx.ExternalRef = &ref
	}

	err := s.repo.Transaction.Create(ctx, tx)
	switch {
	case err == nil:
		metrics.PaymentsRecorded.WithLabelValues(string(rec.Method)).Inc()
		metrics.PaymentsAmount.WithLabelValues(string(rec.Method)).Add(tx.Amount)
	case errors.Is(err, repository.ErrDuplicate):
		s.log.Info("Payment already in ledger",
			zap.String("booking_id", rec.BookingID.String()),
			zap.String("external_ref", rec.ExternalRef),
		)
	default:
		key := rec.ledgerKey(tx.ID)
		s.log.Error("Ledger write failed, keeping payment as unledgered",
			zap.Error(err),
			zap.String("booking_id", rec.BookingID.String()),
			zap.Float64("amount", tx.Amount),
			zap.String("ledger_key", key),
		)
		if err := s.repo.Booking.AddUnledgeredPayment(ctx, rec.BookingID, key, tx.Amount); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("booking %s: %w", rec.BookingID, ErrNotFound)
			}
			return nil, fmt.Errorf("keep unledgered payment for booking %s: %w", rec.BookingID, err)
		}
		metrics.PaymentsAmount.WithLabelValues("unledgered").Add(tx.Amount)
	}

	return s.Reconcile(ctx, rec.BookingID)
}
