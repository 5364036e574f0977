package usecase

import (
	"math"
	"time"

	"booking-platform/internal/data/entity"
)

// PreparationFee is charged once per stay regardless of length.
const PreparationFee = 76.0

// DepositPercent of the total is the minimum upfront payment.
const DepositPercent = 30

type Tariff struct {
	WeekdayRate float64
	WeekendRate float64
}

func TariffOf(model *entity.BoatModel) Tariff {
	return Tariff{WeekdayRate: model.WeekdayRate, WeekendRate: model.WeekendRate}
}

// ComputePrice splits the stay into weekday and weekend nights. A night is
// weekend when it starts on a Friday or Saturday. The checkout date is not a
// night. Zero or negative stays price at the preparation fee alone.
func ComputePrice(checkIn, checkOut time.Time, tariff Tariff) entity.PriceBreakdown {
	breakdown := entity.PriceBreakdown{
		WeekdayRate:    tariff.WeekdayRate,
		WeekendRate:    tariff.WeekendRate,
		PreparationFee: PreparationFee,
	}

	nights := NightsBetween(checkIn, checkOut)
	day := dateOf(checkIn)
	for i := 0; i < nights; i++ {
		if IsWeekendNight(day) {
			breakdown.WeekendNights++
		} else {
			breakdown.WeekdayNights++
		}
		day = day.AddDate(0, 0, 1)
	}

	breakdown.Total = entity.RoundMoney(
		float64(breakdown.WeekdayNights)*tariff.WeekdayRate +
			float64(breakdown.WeekendNights)*tariff.WeekendRate +
			PreparationFee,
	)
	breakdown.Deposit = Deposit(breakdown.Total)

	return breakdown
}

// NightsBetween counts calendar dates, ignoring time of day.
func NightsBetween(checkIn, checkOut time.Time) int {
	days := dateOf(checkOut).Sub(dateOf(checkIn)).Hours() / 24
	return int(math.Round(days))
}

func IsWeekendNight(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// Deposit is DepositPercent of total rounded up to a whole currency unit.
// Computed on integer cents so 100 * 0.3 never turns into 31.
func Deposit(total float64) float64 {
	if total <= 0 {
		return 0
	}
	cents := int64(math.Round(total * 100))
	return float64((cents*DepositPercent + 9999) / 10000)
}

// BookingTotal adds add-ons and subtracts the discount, floored at zero.
func BookingTotal(breakdown entity.PriceBreakdown, addOns []entity.AddOn, discount float64) float64 {
	total := breakdown.Total + entity.AddOnsTotal(addOns) - discount
	if total < 0 {
		return 0
	}
	return entity.RoundMoney(total)
}

// AmountToCharge picks the pay-now amount for a checkout option.
func AmountToCharge(total float64, option string) float64 {
	if option == PaymentOptionDeposit {
		return Deposit(total)
	}
	return total
}

// dateOf keeps the calendar date as seen in the instant's own location and
// re-anchors it at UTC midnight so day arithmetic is DST-free.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
