package repository

import (
	"context"
	"errors"
	"fmt"

	"booking-platform/internal/data/entity"
	"booking-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.PaymentTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error)
	FindByExternalRef(ctx context.Context, ref string) (*entity.PaymentTransaction, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.PaymentTransaction, error)
	Update(ctx context.Context, tx *entity.PaymentTransaction) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SumPaid totals every transaction with status paid for the booking.
	SumPaid(ctx context.Context, bookingID uuid.UUID) (float64, error)
}

const transactionColumns = `id, booking_id, amount, status, method, external_ref, paid_at, metadata,
		recorded_by, created_at, updated_at`

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_transaction")),
	}
}

func scanTransaction(row scanner) (*entity.PaymentTransaction, error) {
	var t entity.PaymentTransaction
	err := row.Scan(
		&t.ID,
		&t.BookingID,
		&t.Amount,
		&t.Status,
		&t.Method,
		&t.ExternalRef,
		&t.PaidAt,
		&t.Metadata,
		&t.RecordedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	metadata := tx.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.BookingID,
		tx.Amount,
		tx.Status,
		tx.Method,
		tx.ExternalRef,
		tx.PaidAt,
		metadata,
		tx.RecordedBy,
		tx.CreatedAt,
		tx.UpdatedAt,
	)

	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, ErrDuplicate) {
			r.log.Info("Transaction already recorded",
				zap.String("booking_id", tx.BookingID.String()),
				zap.Stringp("external_ref", tx.ExternalRef),
			)
		} else {
			r.log.Error("Failed to create payment transaction",
				zap.Error(err),
				zap.String("booking_id", tx.BookingID.String()),
				zap.Float64("amount", tx.Amount),
			)
		}
		return fmt.Errorf("create transaction for booking %s: %w", tx.BookingID.String(), err)
	}

	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find transaction by ID %s: %w", id.String(), err)
	}

	return tx, nil
}

func (r *transactionRepository) FindByExternalRef(ctx context.Context, ref string) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE external_ref = $1`

	tx, err := scanTransaction(r.db.QueryRow(ctx, query, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by external ref",
			zap.Error(err),
			zap.String("external_ref", ref),
		)
		return nil, fmt.Errorf("find transaction by external ref %s: %w", ref, err)
	}

	return tx, nil
}

func (r *transactionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE booking_id = $1
		ORDER BY paid_at, created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find transactions by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find transactions by booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var txs []*entity.PaymentTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func (r *transactionRepository) Update(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		UPDATE payment_transactions
		SET amount = $2, status = $3, method = $4, paid_at = $5, metadata = $6, updated_at = $7
		WHERE id = $1
	`

	metadata := tx.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	result, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.Amount,
		tx.Status,
		tx.Method,
		tx.PaidAt,
		metadata,
		tx.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update transaction",
			zap.Error(err),
			zap.String("transaction_id", tx.ID.String()),
		)
		return fmt.Errorf("update transaction %s: %w", tx.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payment_transactions WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete transaction",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return fmt.Errorf("delete transaction %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *transactionRepository) SumPaid(ctx context.Context, bookingID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::float8
		FROM payment_transactions
		WHERE booking_id = $1 AND status = 'paid'
	`

	var sum float64
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&sum); err != nil {
		r.log.Error("Failed to sum paid transactions",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("sum paid transactions for booking %s: %w", bookingID.String(), err)
	}

	return sum, nil
}
