package usecase

import (
	"context"
	"testing"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayable(f *fixture, total, paid float64) *entity.Booking {
	model, boats := f.store.addModel(6, 150, 200, "Aurora")
	booking := f.store.addBooking(entity.Booking{
		ModelID: model.ID, BoatID: &boats[0].ID,
		ClientName: "Marta Reis", ClientEmail: "marta@example.com",
		StartDate: day("2026-10-16"), EndDate: day("2026-10-19"),
		TotalPrice: total, AmountPaid: paid,
	})
	if paid > 0 {
		f.store.addTransaction(entity.PaymentTransaction{BookingID: booking.ID, Amount: paid, Method: entity.PaymentMethodCard})
	}
	return booking
}

func seedToken(f *fixture, bookingID uuid.UUID, expires time.Time, requested *float64) string {
	value := uuid.NewString()
	f.store.mu.Lock()
	f.store.tokens[value] = entity.PaymentToken{
		BaseSimple:      entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		Token:           value,
		BookingID:       bookingID,
		ExpiresAt:       expires,
		RequestedAmount: requested,
	}
	f.store.mu.Unlock()
	return value
}

func TestGeneratePaymentLink(t *testing.T) {
	ctx := context.Background()
	staff := entity.Actor{UserID: uuid.New(), Role: entity.RoleStaff}

	t.Run("deposit when nothing paid", func(t *testing.T) {
		f := newFixture()
		booking := seedPayable(f, 626, 0)

		got, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String()})

		require.NoError(t, err)
		assert.Equal(t, 188.0, got.Amount)
		assert.Len(t, got.Token, 64)
		assert.Equal(t, "https://boats.test/pay/"+got.Token, got.URL)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), got.ExpiresAt, time.Minute)

		stored := f.store.token(got.Token)
		assert.Equal(t, staff.UserID, *stored.CreatedBy)
		assert.Nil(t, stored.RequestedAmount)
	})

	t.Run("balance after a deposit", func(t *testing.T) {
		f := newFixture()
		booking := seedPayable(f, 626, 188)

		got, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String()})

		require.NoError(t, err)
		assert.Equal(t, 438.0, got.Amount)
	})

	t.Run("explicit amount is stored", func(t *testing.T) {
		f := newFixture()
		booking := seedPayable(f, 626, 0)
		amount := 50.0

		got, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String(), Amount: &amount})

		require.NoError(t, err)
		assert.Equal(t, 50.0, got.Amount)
		assert.Equal(t, 50.0, *f.store.token(got.Token).RequestedAmount)
	})

	t.Run("settled booking", func(t *testing.T) {
		f := newFixture()
		booking := seedPayable(f, 626, 626)

		_, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String()})

		assert.ErrorIs(t, err, ErrAlreadySettled)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture()
		booking := seedPayable(f, 626, 0)
		require.NoError(t, f.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled))

		_, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String()})

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.PaymentLink.Generate(ctx, staff, &request.GeneratePaymentLinkRequest{BookingID: uuid.NewString()})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestValidatePaymentLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 188)
	now := time.Now()

	tooMuch := 1000.0
	part := 100.0
	valid := seedToken(f, booking.ID, now.Add(time.Hour), nil)
	capped := seedToken(f, booking.ID, now.Add(time.Hour), &tooMuch)
	partial := seedToken(f, booking.ID, now.Add(time.Hour), &part)
	expired := seedToken(f, booking.ID, now.Add(-time.Second), nil)
	used := seedToken(f, booking.ID, now.Add(time.Hour), nil)
	_, err := f.repo.PaymentToken.MarkUsed(ctx, used, now)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		payable float64
		err     error
	}{
		{"remaining balance", valid, 438, nil},
		{"requested above remaining", capped, 438, nil},
		{"requested below remaining", partial, 100, nil},
		{"expired", expired, 0, ErrTokenExpired},
		{"used", used, 0, ErrTokenUsed},
		{"unknown", "nope", 0, ErrTokenNotFound},
		{"empty", "", 0, ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.PaymentLink.Validate(ctx, tt.token)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.payable, got.PayableAmount)
			assert.Equal(t, 438.0, got.Remaining)
			assert.Equal(t, booking.Reference, got.BookingReference)
		})
	}
}

func TestValidateExpiredBeforeUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 0)
	token := seedToken(f, booking.ID, time.Now().Add(-time.Minute), nil)
	_, err := f.repo.PaymentToken.MarkUsed(ctx, token, time.Now())
	require.NoError(t, err)

	_, err = f.svc.PaymentLink.Validate(ctx, token)

	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateSettledBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 626)
	token := seedToken(f, booking.ID, time.Now().Add(time.Hour), nil)

	_, err := f.svc.PaymentLink.Validate(ctx, token)

	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.True(t, IsTokenError(err))
}

func TestRedeemIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 188)
	token := seedToken(f, booking.ID, time.Now().Add(time.Hour), nil)

	updated, err := f.svc.PaymentLink.Redeem(ctx, token, 0, "cs_link_1")

	require.NoError(t, err)
	assert.Equal(t, 626.0, updated.AmountPaid)
	assert.Equal(t, entity.PaymentStatusFullyPaid, updated.PaymentStatus)
	assert.NotNil(t, f.store.token(token).UsedAt)

	_, err = f.svc.PaymentLink.Redeem(ctx, token, 0, "cs_link_2")
	assert.ErrorIs(t, err, ErrTokenUsed)
	assert.Equal(t, 626.0, f.store.booking(booking.ID).AmountPaid)
}

func TestRedeemRecordsChargedAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 0)
	part := 100.0
	token := seedToken(f, booking.ID, time.Now().Add(time.Hour), &part)

	updated, err := f.svc.PaymentLink.Redeem(ctx, token, 100, "cs_link_1")

	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.AmountPaid)
	assert.Equal(t, entity.PaymentStatusDepositPaid, updated.PaymentStatus)
	assert.Equal(t, entity.BookingStatusConfirmed, updated.Status)

	txs := f.store.transactionsFor(booking.ID)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.PaymentMethodPaymentLink, txs[0].Method)
}

func TestProcessPaymentLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	booking := seedPayable(f, 626, 188)
	link, err := f.svc.PaymentLink.Generate(ctx, entity.SystemActor, &request.GeneratePaymentLinkRequest{BookingID: booking.ID.String()})
	require.NoError(t, err)

	got, err := f.svc.PaymentLink.Process(ctx, &request.ProcessPaymentLinkRequest{Token: link.Token})

	require.NoError(t, err)
	assert.Equal(t, 438.0, got.AmountToCharge)
	require.Len(t, f.provider.created, 1)
	intent := f.provider.created[0]
	assert.Equal(t, booking.ID, *intent.BookingID)
	assert.Equal(t, link.Token, intent.PaymentToken)
	assert.Equal(t, entity.SourcePaymentLink, intent.Source)

	// opening checkout does not consume the link
	assert.Nil(t, f.store.token(link.Token).UsedAt)

	_, err = f.svc.PaymentLink.Process(ctx, &request.ProcessPaymentLinkRequest{Token: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}
