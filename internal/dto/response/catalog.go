package response

import (
	"booking-platform/internal/data/entity"
)

type ModelResponse struct {
	ID          string           `json:"id"`
	Kind        entity.ModelKind `json:"kind"`
	Name        string           `json:"name"`
	Capacity    int              `json:"capacity"`
	WeekdayRate float64          `json:"weekday_rate"`
	WeekendRate float64          `json:"weekend_rate"`
}

type QuoteResponse struct {
	ModelID   string                `json:"model_id"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Breakdown entity.PriceBreakdown `json:"breakdown"`
	Available bool                  `json:"available"`
}

type AvailabilityResponse struct {
	ModelID   string  `json:"model_id"`
	Available bool    `json:"available"`
	BoatID    *string `json:"boat_id,omitempty"`
}

func ModelToResponse(m *entity.BoatModel) ModelResponse {
	return ModelResponse{
		ID:          m.ID.String(),
		Kind:        m.Kind,
		Name:        m.Name,
		Capacity:    m.Capacity,
		WeekdayRate: m.WeekdayRate,
		WeekendRate: m.WeekendRate,
	}
}
