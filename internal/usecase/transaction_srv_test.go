package usecase

import (
	"context"
	"testing"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := f.store.addBooking(entity.Booking{
		ModelID: uuid.New(), TotalPrice: 626, Status: entity.BookingStatusPending,
		StartDate: day("2026-10-16"), EndDate: day("2026-10-19"),
	})

	created, err := f.svc.Transaction.CreateTransaction(ctx, staffActor, &request.CreateTransactionRequest{
		BookingID: booking.ID.String(),
		Amount:    188,
		Method:    string(entity.PaymentMethodCash),
		PaidAt:    lo.ToPtr("2026-10-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Transaction)
	assert.Equal(t, 188.0, created.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, created.Booking.PaymentStatus)
	assert.Equal(t, entity.BookingStatusConfirmed, created.Booking.Status)

	rest, err := f.svc.Transaction.CreateTransaction(ctx, staffActor, &request.CreateTransactionRequest{
		BookingID: booking.ID.String(),
		Amount:    438,
		Method:    string(entity.PaymentMethodTransfer),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFullyPaid, rest.Booking.PaymentStatus)

	updated, err := f.svc.Transaction.UpdateTransaction(ctx, staffActor, rest.Transaction.ID, &request.UpdateTransactionRequest{
		Amount: lo.ToPtr(400.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 588.0, updated.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, updated.Booking.PaymentStatus)

	refunded, err := f.svc.Transaction.UpdateTransaction(ctx, staffActor, rest.Transaction.ID, &request.UpdateTransactionRequest{
		Status: lo.ToPtr(string(entity.TransactionStatusRefunded)),
	})
	require.NoError(t, err)
	assert.Equal(t, 188.0, refunded.Booking.AmountPaid)

	deleted, err := f.svc.Transaction.DeleteTransaction(ctx, staffActor, created.Transaction.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted.Transaction)
	assert.Zero(t, deleted.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusUnpaid, deleted.Booking.PaymentStatus)

	list, err := f.svc.Transaction.ListTransactions(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBalanceFollowsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := f.store.addBooking(entity.Booking{
		ModelID: uuid.New(), TotalPrice: 1000, Status: entity.BookingStatusPending,
		StartDate: day("2026-10-16"), EndDate: day("2026-10-19"),
	})
	pay := func(amount float64) *response.TransactionMutationResponse {
		t.Helper()
		out, err := f.svc.Transaction.CreateTransaction(ctx, staffActor, &request.CreateTransactionRequest{
			BookingID: booking.ID.String(),
			Amount:    amount,
			Method:    string(entity.PaymentMethodTransfer),
		})
		require.NoError(t, err)
		return out
	}

	first := pay(300)
	assert.Equal(t, 300.0, first.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, first.Booking.PaymentStatus)

	second := pay(700)
	assert.Equal(t, 1000.0, second.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusFullyPaid, second.Booking.PaymentStatus)

	deleted, err := f.svc.Transaction.DeleteTransaction(ctx, staffActor, second.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, deleted.Booking.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, deleted.Booking.PaymentStatus)

	stored := f.store.booking(booking.ID)
	assert.Equal(t, 300.0, stored.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, stored.PaymentStatus)
}

func TestCreateTransactionErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := f.store.addBooking(entity.Booking{ModelID: uuid.New(), TotalPrice: 626})
	ref := "bank-2026-001"

	_, err := f.svc.Transaction.CreateTransaction(ctx, staffActor, &request.CreateTransactionRequest{
		BookingID: booking.ID.String(), Amount: 100, Method: "cash", ExternalRef: &ref,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *request.CreateTransactionRequest
		err  error
	}{
		{"duplicate reference", &request.CreateTransactionRequest{BookingID: booking.ID.String(), Amount: 100, Method: "cash", ExternalRef: &ref}, ErrConflict},
		{"unknown booking", &request.CreateTransactionRequest{BookingID: uuid.NewString(), Amount: 100, Method: "cash"}, ErrNotFound},
		{"zero amount", &request.CreateTransactionRequest{BookingID: booking.ID.String(), Method: "cash"}, ErrValidation},
		{"unknown method", &request.CreateTransactionRequest{BookingID: booking.ID.String(), Amount: 10, Method: "barter"}, ErrValidation},
		{"bad date", &request.CreateTransactionRequest{BookingID: booking.ID.String(), Amount: 10, Method: "cash", PaidAt: lo.ToPtr("yesterday")}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Transaction.CreateTransaction(ctx, staffActor, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Equal(t, 100.0, f.store.booking(booking.ID).AmountPaid)
}

func TestUpdateDeleteUnknownTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Transaction.UpdateTransaction(ctx, staffActor, uuid.NewString(), &request.UpdateTransactionRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Transaction.DeleteTransaction(ctx, staffActor, "nope")
	assert.ErrorIs(t, err, ErrValidation)
}
