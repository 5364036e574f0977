package repository

import (
	"context"
	"errors"
	"fmt"

	"booking-platform/internal/data/entity"
	"booking-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BoatModelRepository interface {
	Create(ctx context.Context, model *entity.BoatModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BoatModel, error)
	FindAll(ctx context.Context, kind *entity.ModelKind, activeOnly bool) ([]*entity.BoatModel, error)
}

type BoatRepository interface {
	Create(ctx context.Context, boat *entity.Boat) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Boat, error)
	// FindByModelID returns active boats in listing order (oldest first).
	FindByModelID(ctx context.Context, modelID uuid.UUID) ([]*entity.Boat, error)
}

type boatModelRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBoatModelRepository(db database.PgxIface, log *zap.Logger) BoatModelRepository {
	return &boatModelRepository{
		db:  db,
		log: log.With(zap.String("repository", "boat_model")),
	}
}

func (r *boatModelRepository) Create(ctx context.Context, model *entity.BoatModel) error {
	query := `
		INSERT INTO boat_models (id, kind, name, capacity, weekday_rate, weekend_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		model.ID,
		model.Kind,
		model.Name,
		model.Capacity,
		model.WeekdayRate,
		model.WeekendRate,
		model.IsActive,
		model.CreatedAt,
		model.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create boat model",
			zap.Error(err),
			zap.String("name", model.Name),
		)
		return fmt.Errorf("create boat model %s: %w", model.Name, mapPgError(err))
	}

	return nil
}

func (r *boatModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BoatModel, error) {
	query := `
		SELECT id, kind, name, capacity, weekday_rate, weekend_rate, is_active, created_at, updated_at
		FROM boat_models
		WHERE id = $1
	`

	var m entity.BoatModel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Kind,
		&m.Name,
		&m.Capacity,
		&m.WeekdayRate,
		&m.WeekendRate,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find boat model by ID",
			zap.Error(err),
			zap.String("model_id", id.String()),
		)
		return nil, fmt.Errorf("find boat model by ID %s: %w", id.String(), err)
	}

	return &m, nil
}

func (r *boatModelRepository) FindAll(ctx context.Context, kind *entity.ModelKind, activeOnly bool) ([]*entity.BoatModel, error) {
	query := `
		SELECT id, kind, name, capacity, weekday_rate, weekend_rate, is_active, created_at, updated_at
		FROM boat_models
		WHERE ($1::text IS NULL OR kind = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY kind, name
	`

	var kindArg *string
	if kind != nil {
		k := string(*kind)
		kindArg = &k
	}

	rows, err := r.db.Query(ctx, query, kindArg, activeOnly)
	if err != nil {
		r.log.Error("Failed to list boat models", zap.Error(err))
		return nil, fmt.Errorf("list boat models: %w", err)
	}
	defer rows.Close()

	var models []*entity.BoatModel
	for rows.Next() {
		var m entity.BoatModel
		if err := rows.Scan(
			&m.ID,
			&m.Kind,
			&m.Name,
			&m.Capacity,
			&m.WeekdayRate,
			&m.WeekendRate,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan boat model row", zap.Error(err))
			return nil, fmt.Errorf("scan boat model row: %w", err)
		}
		models = append(models, &m)
	}

	return models, rows.Err()
}

type boatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBoatRepository(db database.PgxIface, log *zap.Logger) BoatRepository {
	return &boatRepository{
		db:  db,
		log: log.With(zap.String("repository", "boat")),
	}
}

func (r *boatRepository) Create(ctx context.Context, boat *entity.Boat) error {
	query := `
		INSERT INTO boats (id, model_id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		boat.ID,
		boat.ModelID,
		boat.Name,
		boat.IsActive,
		boat.CreatedAt,
		boat.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create boat",
			zap.Error(err),
			zap.String("model_id", boat.ModelID.String()),
		)
		return fmt.Errorf("create boat %s: %w", boat.Name, mapPgError(err))
	}

	return nil
}

func (r *boatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Boat, error) {
	query := `
		SELECT id, model_id, name, is_active, created_at, updated_at
		FROM boats
		WHERE id = $1
	`

	var b entity.Boat
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.ModelID,
		&b.Name,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find boat by ID",
			zap.Error(err),
			zap.String("boat_id", id.String()),
		)
		return nil, fmt.Errorf("find boat by ID %s: %w", id.String(), err)
	}

	return &b, nil
}

func (r *boatRepository) FindByModelID(ctx context.Context, modelID uuid.UUID) ([]*entity.Boat, error) {
	query := `
		SELECT id, model_id, name, is_active, created_at, updated_at
		FROM boats
		WHERE model_id = $1 AND is_active
		ORDER BY created_at, name
	`

	rows, err := r.db.Query(ctx, query, modelID)
	if err != nil {
		r.log.Error("Failed to find boats by model",
			zap.Error(err),
			zap.String("model_id", modelID.String()),
		)
		return nil, fmt.Errorf("find boats by model %s: %w", modelID.String(), err)
	}
	defer rows.Close()

	var boats []*entity.Boat
	for rows.Next() {
		var b entity.Boat
		if err := rows.Scan(
			&b.ID,
			&b.ModelID,
			&b.Name,
			&b.IsActive,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan boat row", zap.Error(err))
			return nil, fmt.Errorf("scan boat row: %w", err)
		}
		boats = append(boats, &b)
	}

	return boats, rows.Err()
}
