package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionService is the staff view of the payment ledger. Every
// mutation ends with a reconcile of the owning booking.
type TransactionService interface {
	ListTransactions(ctx context.Context, bookingID string) ([]response.TransactionResponse, error)
	CreateTransaction(ctx context.Context, actor entity.Actor, req *request.CreateTransactionRequest) (*response.TransactionMutationResponse, error)
	UpdateTransaction(ctx context.Context, actor entity.Actor, id string, req *request.UpdateTransactionRequest) (*response.TransactionMutationResponse, error)
	DeleteTransaction(ctx context.Context, actor entity.Actor, id string) (*response.TransactionMutationResponse, error)
}

type transactionService struct {
	repo      *repository.Repository
	reconcile ReconcileService
	log       *zap.Logger
	now       func() time.Time
}

func NewTransactionService(repo *repository.Repository, reconcile ReconcileService, log *zap.Logger) TransactionService {
	return &transactionService{
		repo:      repo,
		reconcile: reconcile,
		log:       log.With(zap.String("service", "transaction")),
		now:       time.Now,
	}
}

func (s *transactionService) ListTransactions(ctx context.Context, id string) ([]response.TransactionResponse, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.Transaction.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return response.TransactionsToResponse(txs), nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, actor entity.Actor, req *request.CreateTransactionRequest) (*response.TransactionMutationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	bookingID, err := parseBookingID(req.BookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	paidAt, err := s.parsePaidAt(req.PaidAt)
	if err != nil {
		return nil, err
	}

	status := entity.TransactionStatusPaid
	if req.Status != "" {
		status = entity.TransactionStatus(req.Status)
	}

	now := s.now()
	tx := &entity.PaymentTransaction{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:   bookingID,
		Amount:      entity.RoundMoney(req.Amount),
		Status:      status,
		Method:      entity.PaymentMethod(req.Method),
		ExternalRef: req.ExternalRef,
		PaidAt:      paidAt,
		Metadata:    req.Metadata,
		RecordedBy:  actor.Ref(),
	}

	if err := s.repo.Transaction.Create(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: external reference already recorded", ErrConflict)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.log.Info("Manual transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Float64("amount", tx.Amount),
		zap.String("method", string(tx.Method)),
		zap.String("by", actor.UserID.String()),
	)

	return s.mutationResult(ctx, tx)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, actor entity.Actor, id string, req *request.UpdateTransactionRequest) (*response.TransactionMutationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	tx, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		tx.Amount = entity.RoundMoney(*req.Amount)
	}
	if req.Status != nil {
		tx.Status = entity.TransactionStatus(*req.Status)
	}
	if req.Method != nil {
		tx.Method = entity.PaymentMethod(*req.Method)
	}
	if req.PaidAt != nil {
		paidAt, err := s.parsePaidAt(req.PaidAt)
		if err != nil {
			return nil, err
		}
		tx.PaidAt = paidAt
	}
	if req.Metadata != nil {
		tx.Metadata = req.Metadata
	}
	tx.UpdatedAt = s.now()

	if err := s.repo.Transaction.Update(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	s.log.Info("Transaction corrected",
		zap.String("transaction_id", id),
		zap.String("booking_id", tx.BookingID.String()),
		zap.Float64("amount", tx.Amount),
		zap.String("status", string(tx.Status)),
		zap.String("by", actor.UserID.String()),
	)

	return s.mutationResult(ctx, tx)
}

func (s *transactionService) DeleteTransaction(ctx context.Context, actor entity.Actor, id string) (*response.TransactionMutationResponse, error) {
	tx, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Transaction.Delete(ctx, tx.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("delete transaction: %w", err)
	}

	s.log.Warn("Transaction deleted",
		zap.String("transaction_id", id),
		zap.String("booking_id", tx.BookingID.String()),
		zap.Float64("amount", tx.Amount),
		zap.String("by", actor.UserID.String()),
	)

	booking, err := s.reconcile.Reconcile(ctx, tx.BookingID)
	if err != nil {
		return nil, err
	}
	return &response.TransactionMutationResponse{Booking: response.BookingToResponse(booking)}, nil
}

func (s *transactionService) loadTransaction(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid transaction ID %s", ErrValidation, id)
	}

	tx, err := s.repo.Transaction.FindByID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", id, err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return tx, nil
}

func (s *transactionService) parsePaidAt(value *string) (time.Time, error) {
	if value == nil || *value == "" {
		return s.now(), nil
	}
	paidAt, err := utils.ParseDateTime(*value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid paid_at", ErrValidation)
	}
	return paidAt, nil
}

func (s *transactionService) mutationResult(ctx context.Context, tx *entity.PaymentTransaction) (*response.TransactionMutationResponse, error) {
	booking, err := s.reconcile.Reconcile(ctx, tx.BookingID)
	if err != nil {
		return nil, err
	}

	txResp := response.TransactionToResponse(tx)
	return &response.TransactionMutationResponse{
		Transaction: &txResp,
		Booking:     response.BookingToResponse(booking),
	}, nil
}
