package entity

import "time"

// ProcessedEvent is the idempotency marker for one provider event.
type ProcessedEvent struct {
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	Attempts    int        `db:"attempts"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}
