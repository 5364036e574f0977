package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListModels(ctx context.Context, kind string) ([]response.ModelResponse, error)
	Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error)
	CheckAvailability(ctx context.Context, req *request.QuoteRequest) (*response.AvailabilityResponse, error)
}

type catalogService struct {
	repo         *repository.Repository
	availability AvailabilityService
	log          *zap.Logger
}

func NewCatalogService(repo *repository.Repository, availability AvailabilityService, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:         repo,
		availability: availability,
		log:          log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ListModels(ctx context.Context, kind string) ([]response.ModelResponse, error) {
	var kindFilter *entity.ModelKind
	if kind != "" {
		k := entity.ModelKind(kind)
		kindFilter = &k
	}

	models, err := s.repo.BoatModel.FindAll(ctx, kindFilter, true)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	return lo.Map(models, func(m *entity.BoatModel, _ int) response.ModelResponse {
		return response.ModelToResponse(m)
	}), nil
}

func (s *catalogService) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	model, start, end, err := s.resolveStay(ctx, req)
	if err != nil {
		return nil, err
	}

	breakdown := ComputePrice(start, end, TariffOf(model))

	avail, err := s.availability.FindAvailableUnit(ctx, model.ID, start, end)
	if err != nil {
		return nil, err
	}

	return &response.QuoteResponse{
		ModelID:   model.ID.String(),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Breakdown: breakdown,
		Available: avail.Available,
	}, nil
}

func (s *catalogService) CheckAvailability(ctx context.Context, req *request.QuoteRequest) (*response.AvailabilityResponse, error) {
	model, start, end, err := s.resolveStay(ctx, req)
	if err != nil {
		return nil, err
	}

	avail, err := s.availability.FindAvailableUnit(ctx, model.ID, start, end)
	if err != nil {
		return nil, err
	}

	resp := &response.AvailabilityResponse{
		ModelID:   model.ID.String(),
		Available: avail.Available,
	}
	if avail.BoatID != nil {
		resp.BoatID = lo.ToPtr(avail.BoatID.String())
	}
	return resp, nil
}

func (s *catalogService) resolveStay(ctx context.Context, req *request.QuoteRequest) (*entity.BoatModel, time.Time, time.Time, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, time.Time{}, time.Time{}, validationError(errs)
	}

	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: invalid model ID", ErrValidation)
	}

	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	model, err := s.repo.BoatModel.FindByID(ctx, modelID)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("load model %s: %w", modelID, err)
	}
	if model == nil || !model.IsActive {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("model %s: %w", modelID, ErrNotFound)
	}

	return model, start, end, nil
}

// parseStay parses both ends and requires end strictly after start, so the
// pricing fallback for empty stays is never used for a real booking.
func parseStay(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := utils.ParseDateTime(startValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start_date", ErrValidation)
	}
	end, err := utils.ParseDateTime(endValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end_date", ErrValidation)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	return start, end, nil
}

func addOnsFromRequest(in []request.AddOnRequest) []entity.AddOn {
	return lo.Map(in, func(a request.AddOnRequest, _ int) entity.AddOn {
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		return entity.AddOn{ID: a.ID, Name: a.Name, Price: a.Price, Quantity: qty}
	})
}

func billingFromRequest(in *request.BillingRequest) entity.BillingDetails {
	if in == nil {
		return entity.BillingDetails{}
	}
	return entity.BillingDetails{TaxID: in.TaxID, LegalName: in.LegalName, Address: in.Address}
}
