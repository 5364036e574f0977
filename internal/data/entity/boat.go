package entity

import "github.com/google/uuid"

type ModelKind string

const (
	ModelKindHouseboat  ModelKind = "houseboat"
	ModelKindRestaurant ModelKind = "restaurant"
	ModelKindExcursion  ModelKind = "excursion"
)

// BoatModel is a class of rentable asset sharing capacity and tariff.
type BoatModel struct {
	BaseNoDelete
	Kind        ModelKind `db:"kind"`
	Name        string    `db:"name"`
	Capacity    int       `db:"capacity"`
	WeekdayRate float64   `db:"weekday_rate"`
	WeekendRate float64   `db:"weekend_rate"`
	IsActive    bool      `db:"is_active"`
}

// Boat is one physical unit. Availability is tracked per boat.
type Boat struct {
	BaseNoDelete
	ModelID  uuid.UUID `db:"model_id"`
	Name     string    `db:"name"`
	IsActive bool      `db:"is_active"`
}
