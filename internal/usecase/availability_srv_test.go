package usecase

import (
	"context"
	"testing"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		s1, e1 string
		s2, e2 string
		want   bool
	}{
		{"same range", "2026-10-12", "2026-10-15", "2026-10-12", "2026-10-15", true},
		{"inside", "2026-10-12", "2026-10-20", "2026-10-14", "2026-10-16", true},
		{"partial", "2026-10-12", "2026-10-15", "2026-10-14", "2026-10-18", true},
		{"checkout on checkin", "2026-10-12", "2026-10-15", "2026-10-15", "2026-10-18", false},
		{"checkin on checkout", "2026-10-15", "2026-10-18", "2026-10-12", "2026-10-15", false},
		{"apart", "2026-10-01", "2026-10-03", "2026-10-12", "2026-10-15", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.s1), day(tt.e1), day(tt.s2), day(tt.e2))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Overlaps(day(tt.s2), day(tt.e2), day(tt.s1), day(tt.e1)), "symmetric")
		})
	}
}

func TestFindAvailableUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("first free boat in listing order", func(t *testing.T) {
		f := newFixture()
		model, boats := f.store.addModel(6, 150, 200, "Aurora", "Borealis", "Cygnus")
		f.store.addBooking(entity.Booking{
			ModelID: model.ID, BoatID: &boats[0].ID,
			StartDate: day("2026-10-12"), EndDate: day("2026-10-15"),
		})

		got, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-13"), day("2026-10-14"))

		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Equal(t, boats[1].ID, *got.BoatID)
	})

	t.Run("touching stays share a boat", func(t *testing.T) {
		f := newFixture()
		model, boats := f.store.addModel(6, 150, 200, "Aurora")
		f.store.addBooking(entity.Booking{
			ModelID: model.ID, BoatID: &boats[0].ID,
			StartDate: day("2026-10-12"), EndDate: day("2026-10-15"),
		})

		got, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-15"), day("2026-10-17"))

		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Equal(t, boats[0].ID, *got.BoatID)
	})

	t.Run("cancelled bookings free the boat", func(t *testing.T) {
		f := newFixture()
		model, boats := f.store.addModel(6, 150, 200, "Aurora")
		f.store.addBooking(entity.Booking{
			ModelID: model.ID, BoatID: &boats[0].ID, Status: entity.BookingStatusCancelled,
			StartDate: day("2026-10-12"), EndDate: day("2026-10-15"),
		})

		got, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-12"), day("2026-10-15"))

		require.NoError(t, err)
		assert.True(t, got.Available)
	})

	t.Run("excluded booking is ignored", func(t *testing.T) {
		f := newFixture()
		model, boats := f.store.addModel(6, 150, 200, "Aurora")
		own := f.store.addBooking(entity.Booking{
			ModelID: model.ID, BoatID: &boats[0].ID,
			StartDate: day("2026-10-12"), EndDate: day("2026-10-15"),
		})

		busy, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-13"), day("2026-10-16"))
		require.NoError(t, err)
		assert.False(t, busy.Available)
		assert.Nil(t, busy.BoatID)

		moved, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-13"), day("2026-10-16"), own.ID)
		require.NoError(t, err)
		assert.True(t, moved.Available)
	})

	t.Run("model without boats", func(t *testing.T) {
		f := newFixture()
		model, _ := f.store.addModel(6, 150, 200)

		got, err := f.svc.Availability.FindAvailableUnit(ctx, model.ID, day("2026-10-12"), day("2026-10-15"))

		require.NoError(t, err)
		assert.False(t, got.Available)
	})
}

func TestIsUnitFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	model, boats := f.store.addModel(6, 150, 200, "Aurora", "Borealis")
	f.store.addBooking(entity.Booking{
		ModelID: model.ID, BoatID: &boats[0].ID,
		StartDate: day("2026-10-12"), EndDate: day("2026-10-15"),
	})

	free, err := f.svc.Availability.IsUnitFree(ctx, boats[0].ID, day("2026-10-14"), day("2026-10-16"))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = f.svc.Availability.IsUnitFree(ctx, boats[1].ID, day("2026-10-14"), day("2026-10-16"))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCatalogQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	model, _ := f.store.addModel(6, 150, 200, "Aurora")

	t.Run("prices and checks availability", func(t *testing.T) {
		got, err := f.svc.Catalog.Quote(ctx, &request.QuoteRequest{
			ModelID: model.ID.String(), StartDate: "2026-10-16", EndDate: "2026-10-19",
		})

		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Equal(t, 626.0, got.Breakdown.Total)
		assert.Equal(t, 188.0, got.Breakdown.Deposit)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := f.svc.Catalog.Quote(ctx, &request.QuoteRequest{
			ModelID: model.ID.String(), StartDate: "2026-10-19", EndDate: "2026-10-16",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := f.svc.Catalog.Quote(ctx, &request.QuoteRequest{
			ModelID: "4b4a4d9e-8a53-4c5e-9d2f-1c0b1f9e7a11", StartDate: "2026-10-16", EndDate: "2026-10-19",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCatalogListModels(t *testing.T) {
	f := newFixture()
	f.store.addModel(6, 150, 200, "Aurora")
	f.store.addModel(4, 100, 120)

	all, err := f.svc.Catalog.ListModels(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := f.svc.Catalog.ListModels(context.Background(), string(entity.ModelKindRestaurant))
	require.NoError(t, err)
	assert.Empty(t, none)
}
