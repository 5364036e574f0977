package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentTokenRepository interface {
	Create(ctx context.Context, token *entity.PaymentToken) error
	FindByToken(ctx context.Context, token string) (*entity.PaymentToken, error)
	FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.PaymentToken, error)
	// MarkUsed sets used_at only if it is still null. Returns false when
	// another redemption got there first.
	MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error)
}

const paymentTokenColumns = `id, token, booking_id, expires_at, requested_amount, used_at, created_by, created_at`

type paymentTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentTokenRepository(db database.PgxIface, log *zap.Logger) PaymentTokenRepository {
	return &paymentTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_token")),
	}
}

func scanPaymentToken(row scanner) (*entity.PaymentToken, error) {
	var t entity.PaymentToken
	err := row.Scan(
		&t.ID,
		&t.Token,
		&t.BookingID,
		&t.ExpiresAt,
		&t.RequestedAmount,
		&t.UsedAt,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *paymentTokenRepository) Create(ctx context.Context, token *entity.PaymentToken) error {
	query := `
		INSERT INTO payment_tokens (` + paymentTokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.Token,
		token.BookingID,
		token.ExpiresAt,
		token.RequestedAmount,
		token.UsedAt,
		token.CreatedBy,
		token.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment token",
			zap.Error(err),
			zap.String("booking_id", token.BookingID.String()),
			zap.String("token", token.Short()),
		)
		return fmt.Errorf("create payment token for booking %s: %w", token.BookingID.String(), mapPgError(err))
	}

	return nil
}

func (r *paymentTokenRepository) FindByToken(ctx context.Context, token string) (*entity.PaymentToken, error) {
	query := `SELECT ` + paymentTokenColumns + ` FROM payment_tokens WHERE token = $1`

	t, err := scanPaymentToken(r.db.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment token", zap.Error(err))
		return nil, fmt.Errorf("find payment token: %w", err)
	}

	return t, nil
}

func (r *paymentTokenRepository) FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.PaymentToken, error) {
	query := `
		SELECT ` + paymentTokenColumns + `
		FROM payment_tokens
		WHERE booking_id = $1 AND used_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find payment tokens by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find payment tokens by booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var tokens []*entity.PaymentToken
	for rows.Next() {
		t, err := scanPaymentToken(rows)
		if err != nil {
			r.log.Error("Failed to scan payment token row", zap.Error(err))
			return nil, fmt.Errorf("scan payment token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}

func (r *paymentTokenRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error) {
	query := `UPDATE payment_tokens SET used_at = $2 WHERE token = $1 AND used_at IS NULL`

	result, err := r.db.Exec(ctx, query, token, usedAt)
	if err != nil {
		r.log.Error("Failed to mark payment token used", zap.Error(err))
		return false, fmt.Errorf("mark payment token used: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
