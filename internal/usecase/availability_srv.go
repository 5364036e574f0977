package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Availability is the resolver's answer. BoatID is set only when Available.
type Availability struct {
	Available bool
	BoatID    *uuid.UUID
}

type AvailabilityService interface {
	// FindAvailableUnit returns the first boat of the model, in listing order,
	// with no active booking overlapping [start, end). Bookings listed in
	// exclude are ignored, which lets staff move an existing booking.
	FindAvailableUnit(ctx context.Context, modelID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (*Availability, error)
	IsUnitFree(ctx context.Context, boatID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (bool, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

// Overlaps is the half-open interval test: [s1,e1) and [s2,e2) overlap iff
// s1 < e2 and e1 > s2. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

func (s *availabilityService) FindAvailableUnit(ctx context.Context, modelID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (*Availability, error) {
	boats, err := s.repo.Boat.FindByModelID(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("load boats for model %s: %w", modelID, err)
	}
	if len(boats) == 0 {
		s.log.Debug("Model has no boats", zap.String("model_id", modelID.String()))
		return &Availability{Available: false}, nil
	}

	boatIDs := lo.Map(boats, func(b *entity.Boat, _ int) uuid.UUID { return b.ID })
	busy, err := s.busyByBoat(ctx, boatIDs, start, end, exclude)
	if err != nil {
		return nil, err
	}

	for _, boat := range boats {
		if !busy[boat.ID] {
			id := boat.ID
			return &Availability{Available: true, BoatID: &id}, nil
		}
	}

	s.log.Info("No boat available",
		zap.String("model_id", modelID.String()),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("boats", len(boats)),
	)
	return &Availability{Available: false}, nil
}

func (s *availabilityService) IsUnitFree(ctx context.Context, boatID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (bool, error) {
	busy, err := s.busyByBoat(ctx, []uuid.UUID{boatID}, start, end, exclude)
	if err != nil {
		return false, err
	}
	return !busy[boatID], nil
}

func (s *availabilityService) busyByBoat(ctx context.Context, boatIDs []uuid.UUID, start, end time.Time, exclude []uuid.UUID) (map[uuid.UUID]bool, error) {
	bookings, err := s.repo.Booking.FindActiveByBoatIDs(ctx, boatIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("load active bookings: %w", err)
	}

	busy := make(map[uuid.UUID]bool, len(boatIDs))
	for _, b := range bookings {
		if b.BoatID == nil || b.Status == entity.BookingStatusCancelled || lo.Contains(exclude, b.ID) {
			continue
		}
		if Overlaps(start, end, b.StartDate, b.EndDate) {
			busy[*b.BoatID] = true
		}
	}

	return busy, nil
}

func modelLockKey(modelID uuid.UUID) string {
	return "lock:model:" + modelID.String()
}
