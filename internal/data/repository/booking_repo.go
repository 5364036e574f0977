package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingFilter struct {
	Status  *entity.BookingStatus
	ModelID *uuid.UUID
	BoatID  *uuid.UUID
	Search  string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByReference(ctx context.Context, reference string) (*entity.Booking, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*entity.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	Update(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Availability and payment state
	FindActiveByBoatIDs(ctx context.Context, boatIDs []uuid.UUID, start, end time.Time) ([]*entity.Booking, error)
	RecomputePaymentState(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	AddUnledgeredPayment(ctx context.Context, id uuid.UUID, ref string, amount float64) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error
}

const bookingColumns = `id, reference, model_id, boat_id, client_name, client_email, client_phone,
		start_date, end_date, guests, total_price, amount_paid, discount, payment_status, status,
		source, notes, add_ons, price_breakdown, billing, checkout_session_id, created_by,
		created_at, updated_at, unledgered`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func scanBooking(row scanner) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ModelID,
		&b.BoatID,
		&b.ClientName,
		&b.ClientEmail,
		&b.ClientPhone,
		&b.StartDate,
		&b.EndDate,
		&b.Guests,
		&b.TotalPrice,
		&b.AmountPaid,
		&b.Discount,
		&b.PaymentStatus,
		&b.Status,
		&b.Source,
		&b.Notes,
		&b.AddOns,
		&b.PriceBreakdown,
		&b.Billing,
		&b.CheckoutSessionID,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Unledgered,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	addOns := booking.AddOns
	if addOns == nil {
		addOns = []entity.AddOn{}
	}
	unledgered := booking.Unledgered
	if unledgered == nil {
		unledgered = map[string]float64{}
	}

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.ModelID,
		booking.BoatID,
		booking.ClientName,
		booking.ClientEmail,
		booking.ClientPhone,
		booking.StartDate,
		booking.EndDate,
		booking.Guests,
		booking.TotalPrice,
		booking.AmountPaid,
		booking.Discount,
		booking.PaymentStatus,
		booking.Status,
		booking.Source,
		booking.Notes,
		addOns,
		booking.PriceBreakdown,
		booking.Billing,
		booking.CheckoutSessionID,
		booking.CreatedBy,
		booking.CreatedAt,
		booking.UpdatedAt,
		unledgered,
	)

	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, ErrConflict) {
			r.log.Warn("Booking insert rejected by constraint",
				zap.Error(err),
				zap.String("reference", booking.Reference),
			)
		} else {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("reference", booking.Reference),
			)
		}
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	return nil
}

func (r *bookingRepository) findOne(ctx context.Context, where string, arg any) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where

	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking",
			zap.Error(err),
			zap.String("where", where),
			zap.Any("arg", arg),
		)
		return nil, fmt.Errorf("find booking where %s: %w", where, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	return r.findOne(ctx, "reference = $1", reference)
}

func (r *bookingRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*entity.Booking, error) {
	return r.findOne(ctx, "checkout_session_id = $1", sessionID)
}

func buildBookingWhere(filter BookingFilter) (string, []any) {
	conds := []string{"1 = 1"}
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.ModelID != nil {
		add("model_id = $%d", *filter.ModelID)
	}
	if filter.BoatID != nil {
		add("boat_id = $%d", *filter.BoatID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(client_name ILIKE $%d OR client_email ILIKE $%d OR reference ILIKE $%d)", n, n, n))
	}
	if filter.From != nil {
		add("end_date > $%d", *filter.From)
	}
	if filter.To != nil {
		add("start_date < $%d", *filter.To)
	}

	return strings.Join(conds, " AND "), args
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter) ([]*entity.Booking, error) {
	where, args := buildBookingWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE %s
		ORDER BY start_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, bookingColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := buildBookingWhere(filter)
	query := `SELECT COUNT(*) FROM bookings WHERE ` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

// Update writes the editable fields. amount_paid and payment_status are
// owned by RecomputePaymentState and SetPaymentStatus and are never written
// here, so a payment landing mid-edit is not overwritten.
func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET model_id = $2, boat_id = $3, client_name = $4, client_email = $5, client_phone = $6,
		    start_date = $7, end_date = $8, guests = $9, total_price = $10, discount = $11,
		    status = $12, notes = $13, add_ons = $14, price_breakdown = $15, billing = $16,
		    updated_at = $17
		WHERE id = $1
	`

	addOns := booking.AddOns
	if addOns == nil {
		addOns = []entity.AddOn{}
	}

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.ModelID,
		booking.BoatID,
		booking.ClientName,
		booking.ClientEmail,
		booking.ClientPhone,
		booking.StartDate,
		booking.EndDate,
		booking.Guests,
		booking.TotalPrice,
		booking.Discount,
		booking.Status,
		booking.Notes,
		addOns,
		booking.PriceBreakdown,
		booking.Billing,
		booking.UpdatedAt,
	)

	if err != nil {
		err = mapPgError(err)
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", booking.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

// FindActiveByBoatIDs returns non-cancelled bookings on the given boats that
// intersect [start, end). Ordered by boat then start for stable scans.
func (r *bookingRepository) FindActiveByBoatIDs(ctx context.Context, boatIDs []uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	if len(boatIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE boat_id = ANY($1)
		  AND status <> 'cancelled'
		  AND start_date < $3
		  AND end_date > $2
		ORDER BY boat_id, start_date
	`

	rows, err := r.db.Query(ctx, query, boatIDs, start, end)
	if err != nil {
		r.log.Error("Failed to find active bookings by boats",
			zap.Error(err),
			zap.Int("boats", len(boatIDs)),
		)
		return nil, fmt.Errorf("find active bookings by boats: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// recomputePaymentQuery derives the payment state from the paid ledger plus
// unledgered entries that still have no ledger row on this booking. Settled
// entries are dropped. Runs after the row lock so the snapshot sees every
// committed transaction.
const recomputePaymentQuery = `
	WITH ledger AS (
		SELECT COALESCE(SUM(amount), 0) AS paid
		FROM payment_transactions
		WHERE booking_id = $1 AND status = 'paid'
	),
	pending AS (
		SELECT COALESCE(jsonb_object_agg(p.key, p.value), '{}'::jsonb) AS refs,
		       COALESCE(SUM((p.value #>> '{}')::numeric), 0) AS amount
		FROM bookings b
		CROSS JOIN LATERAL jsonb_each(b.unledgered) AS p(key, value)
		WHERE b.id = $1
		  AND NOT EXISTS (
		      SELECT 1 FROM payment_transactions t
		      WHERE t.booking_id = $1 AND t.external_ref = p.key
		  )
	),
	totals AS (
		SELECT ROUND(ledger.paid + pending.amount, 2) AS paid, pending.refs
		FROM ledger, pending
	)
	UPDATE bookings
	SET amount_paid = totals.paid,
	    unledgered = totals.refs,
	    payment_status = CASE
	        WHEN bookings.total_price > 0 AND totals.paid >= bookings.total_price - $2 THEN 'fully_paid'
	        WHEN totals.paid > 0 AND totals.paid < bookings.total_price THEN 'deposit_paid'
	        ELSE 'unpaid'
	    END,
	    status = CASE
	        WHEN totals.paid > 0 AND bookings.status = 'pending' THEN 'confirmed'
	        ELSE bookings.status
	    END,
	    updated_at = NOW()
	FROM totals
	WHERE bookings.id = $1
	RETURNING ` + bookingColumns

// RecomputePaymentState rewrites amount_paid, payment_status and status in a
// single statement under a row lock. Concurrent recomputes serialize on the
// lock and the last one sees every committed payment.
func (r *bookingRepository) RecomputePaymentState(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin payment recompute",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("begin payment recompute for booking %s: %w", id.String(), err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to lock booking for payment recompute",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}

	booking, err := scanBooking(tx.QueryRow(ctx, recomputePaymentQuery, id, entity.PaymentEpsilon))
	if err != nil {
		r.log.Error("Failed to recompute booking payment state",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("recompute payment state for booking %s: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment recompute for booking %s: %w", id.String(), err)
	}

	return booking, nil
}

// AddUnledgeredPayment marks a payment as counted without a ledger row. An
// entry already present under the same reference is kept as is.
func (r *bookingRepository) AddUnledgeredPayment(ctx context.Context, id uuid.UUID, ref string, amount float64) error {
	query := `
		UPDATE bookings
		SET unledgered = jsonb_set(unledgered, ARRAY[$2::text],
		        COALESCE(unledgered -> $2::text, to_jsonb($3::numeric))),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, ref, amount)
	if err != nil {
		r.log.Error("Failed to add unledgered payment",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("external_ref", ref),
			zap.Float64("amount", amount),
		)
		return fmt.Errorf("add unledgered payment %s to booking %s: %w", ref, id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to set booking payment status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("payment_status", string(status)),
		)
		return fmt.Errorf("set booking %s payment status: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		err = mapPgError(err)
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	return nil
}
