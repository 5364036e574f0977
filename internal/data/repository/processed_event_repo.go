package repository

import (
	"context"
	"errors"
	"fmt"

	"booking-platform/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProcessedEventRepository interface {
	// Claim records the event id. It reports false when the event was already
	// completed, so the caller must skip it. An event that was claimed but never
	// completed (crash mid-way) can be claimed again and the attempt is counted.
	Claim(ctx context.Context, eventID, eventType string) (claimed bool, attempts int, err error)
	MarkCompleted(ctx context.Context, eventID string) error
}

type processedEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProcessedEventRepository(db database.PgxIface, log *zap.Logger) ProcessedEventRepository {
	return &processedEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "processed_event")),
	}
}

func (r *processedEventRepository) Claim(ctx context.Context, eventID, eventType string) (bool, int, error) {
	query := `
		INSERT INTO processed_events (event_id, event_type, attempts, created_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (event_id) DO UPDATE
		    SET attempts = processed_events.attempts + 1
		    WHERE processed_events.completed_at IS NULL
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, eventID, eventType).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, 0, nil
	}
	if err != nil {
		r.log.Error("Failed to claim event",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, 0, fmt.Errorf("claim event %s: %w", eventID, err)
	}

	return true, attempts, nil
}

func (r *processedEventRepository) MarkCompleted(ctx context.Context, eventID string) error {
	query := `UPDATE processed_events SET completed_at = NOW() WHERE event_id = $1`

	if _, err := r.db.Exec(ctx, query, eventID); err != nil {
		r.log.Error("Failed to mark event completed",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("mark event %s completed: %w", eventID, err)
	}

	return nil
}
