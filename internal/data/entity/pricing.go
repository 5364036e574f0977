package entity

// PriceBreakdown is recorded into the booking at creation time.
type PriceBreakdown struct {
	WeekdayNights  int     `json:"weekday_nights"`
	WeekdayRate    float64 `json:"weekday_rate"`
	WeekendNights  int     `json:"weekend_nights"`
	WeekendRate    float64 `json:"weekend_rate"`
	PreparationFee float64 `json:"preparation_fee"`
	Total          float64 `json:"total"`
	Deposit        float64 `json:"deposit"`
}

func (p PriceBreakdown) Nights() int {
	return p.WeekdayNights + p.WeekendNights
}
