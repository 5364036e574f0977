package usecase

import (
	"testing"
	"time"
	_ "time/tzdata"

	"booking-platform/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTariff = Tariff{WeekdayRate: 150, WeekendRate: 200}

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		weekday int
		weekend int
		total   float64
		deposit float64
	}{
		// 2026-10-16 is a Friday
		{"friday to monday", "2026-10-16", "2026-10-19", 1, 2, 150 + 400 + 76, 188},
		{"weekday only", "2026-10-12", "2026-10-15", 3, 0, 450 + 76, 158},
		{"full week", "2026-10-12", "2026-10-19", 5, 2, 750 + 400 + 76, 368},
		{"same day", "2026-10-16", "2026-10-16", 0, 0, 76, 23},
		{"reversed", "2026-10-19", "2026-10-16", 0, 0, 76, 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePrice(day(tt.in), day(tt.out), testTariff)

			assert.Equal(t, tt.weekday, got.WeekdayNights)
			assert.Equal(t, tt.weekend, got.WeekendNights)
			assert.Equal(t, PreparationFee, got.PreparationFee)
			assert.InDelta(t, tt.total, got.Total, 0.001)
			assert.InDelta(t, tt.deposit, got.Deposit, 0.001)
		})
	}
}

func TestComputePriceNightsAddUp(t *testing.T) {
	start := day("2026-01-01")
	for offset := 0; offset < 14; offset++ {
		for length := 0; length < 10; length++ {
			in := start.AddDate(0, 0, offset)
			out := in.AddDate(0, 0, length)

			got := ComputePrice(in, out, testTariff)

			require.Equal(t, length, got.Nights(), "stay %s +%d", in.Format("2006-01-02"), length)
			want := float64(got.WeekdayNights)*testTariff.WeekdayRate +
				float64(got.WeekendNights)*testTariff.WeekendRate + PreparationFee
			require.InDelta(t, want, got.Total, 0.001)
		}
	}
}

func TestNightsBetweenIgnoresTimeOfDay(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)

	// clocks go forward on 2026-03-29
	in := time.Date(2026, 3, 28, 15, 0, 0, 0, lisbon)
	out := time.Date(2026, 3, 30, 11, 0, 0, 0, lisbon)
	assert.Equal(t, 2, NightsBetween(in, out))

	late := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)
	early := time.Date(2026, 10, 17, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, NightsBetween(late, early))
}

func TestIsWeekendNight(t *testing.T) {
	assert.False(t, IsWeekendNight(day("2026-10-15"))) // Thursday
	assert.True(t, IsWeekendNight(day("2026-10-16")))  // Friday
	assert.True(t, IsWeekendNight(day("2026-10-17")))  // Saturday
	assert.False(t, IsWeekendNight(day("2026-10-18"))) // Sunday
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		total float64
		want  float64
	}{
		{0, 0},
		{-10, 0},
		{0.01, 1},
		{100, 30},
		{101, 31},
		{626, 188},
		{1000, 300},
		{99.99, 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Deposit(tt.total), "deposit of %v", tt.total)
	}
}

func TestBookingTotal(t *testing.T) {
	breakdown := entity.PriceBreakdown{Total: 626}
	addOns := []entity.AddOn{
		{ID: "sup", Name: "Paddle board", Price: 25, Quantity: 2},
		{ID: "bbq", Name: "Barbecue kit", Price: 15},
	}

	assert.InDelta(t, 626.0+50+15, BookingTotal(breakdown, addOns, 0), 0.001)
	assert.InDelta(t, 626.0+50+15-100, BookingTotal(breakdown, addOns, 100), 0.001)
	assert.Zero(t, BookingTotal(breakdown, nil, 1000))
}

func TestAmountToCharge(t *testing.T) {
	assert.Equal(t, 188.0, AmountToCharge(626, PaymentOptionDeposit))
	assert.Equal(t, 626.0, AmountToCharge(626, PaymentOptionFull))
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		paid, total float64
		want        entity.PaymentStatus
	}{
		{0, 626, entity.PaymentStatusUnpaid},
		{188, 626, entity.PaymentStatusDepositPaid},
		{625.96, 626, entity.PaymentStatusFullyPaid},
		{626, 626, entity.PaymentStatusFullyPaid},
		{700, 626, entity.PaymentStatusFullyPaid},
		{0, 0, entity.PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, entity.DerivePaymentStatus(tt.paid, tt.total), "paid %v of %v", tt.paid, tt.total)
	}
}

func TestPromoteOnPayment(t *testing.T) {
	assert.Equal(t, entity.BookingStatusConfirmed, entity.PromoteOnPayment(entity.BookingStatusPending, 10))
	assert.Equal(t, entity.BookingStatusPending, entity.PromoteOnPayment(entity.BookingStatusPending, 0))
	assert.Equal(t, entity.BookingStatusCancelled, entity.PromoteOnPayment(entity.BookingStatusCancelled, 10))
	assert.Equal(t, entity.BookingStatusMaintenance, entity.PromoteOnPayment(entity.BookingStatusMaintenance, 10))
}
