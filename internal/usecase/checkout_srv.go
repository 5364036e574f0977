package usecase

import (
	"context"
	"fmt"
	"strings"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"
	"booking-platform/pkg/metrics"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// CreateCheckout prices the stay, picks a boat and opens a provider
	// session. Nothing is written to the booking store.
	CreateCheckout(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error)
	// Status backs the success page and never fails just because the
	// booking has not been materialized yet.
	Status(ctx context.Context, sessionID string) (*response.CheckoutStatusResponse, error)
}

type checkoutService struct {
	repo         *repository.Repository
	availability AvailabilityService
	provider     PaymentProvider
	config       *utils.Config
	log          *zap.Logger
}

func NewCheckoutService(
	repo *repository.Repository,
	availability AvailabilityService,
	provider PaymentProvider,
	config *utils.Config,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{
		repo:         repo,
		availability: availability,
		provider:     provider,
		config:       config,
		log:          log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) CreateCheckout(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid model ID", ErrValidation)
	}

	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	model, err := s.repo.BoatModel.FindByID(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelID, err)
	}
	if model == nil || !model.IsActive {
		return nil, fmt.Errorf("model %s: %w", modelID, ErrNotFound)
	}
	if req.Guests > model.Capacity {
		return nil, fmt.Errorf("%w: %s takes at most %d guests", ErrValidation, model.Name, model.Capacity)
	}

	avail, err := s.availability.FindAvailableUnit(ctx, model.ID, start, end)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, ErrNoAvailability
	}

	addOns := addOnsFromRequest(req.AddOns)
	breakdown := ComputePrice(start, end, TariffOf(model))
	total := BookingTotal(breakdown, addOns, 0)
	deposit := Deposit(total)
	amount := AmountToCharge(total, req.PaymentOption)

	intent := CheckoutIntent{
		ModelID:        model.ID,
		BoatID:         avail.BoatID,
		ClientName:     strings.TrimSpace(req.ClientName),
		ClientEmail:    strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone:    req.ClientPhone,
		StartDate:      start,
		EndDate:        end,
		Guests:         req.Guests,
		AddOns:         addOns,
		Billing:        billingFromRequest(req.Billing),
		TotalPrice:     total,
		Deposit:        deposit,
		AmountToCharge: amount,
		PaymentOption:  req.PaymentOption,
		Source:         entity.SourceWebsite,
		Description: fmt.Sprintf("%s, %s to %s", model.Name,
			start.Format("2006-01-02"), end.Format("2006-01-02")),
	}

	site := strings.TrimRight(s.config.App.SiteURL, "/")
	session, err := s.provider.CreateSession(ctx, intent,
		site+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		site+"/checkout/cancel",
	)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("booking", "error").Inc()
		s.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("model_id", model.ID.String()),
			zap.Float64("amount", amount),
		)
		return nil, providerError(err)
	}
	metrics.CheckoutSessions.WithLabelValues("booking", "created").Inc()

	s.log.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("model_id", model.ID.String()),
		zap.Stringer("boat_id", avail.BoatID),
		zap.Float64("total", total),
		zap.Float64("amount", amount),
		zap.String("option", req.PaymentOption),
	)

	return &response.CheckoutResponse{
		SessionID:      session.ID,
		URL:            session.URL,
		TotalPrice:     total,
		Deposit:        deposit,
		AmountToCharge: amount,
	}, nil
}

func (s *checkoutService) Status(ctx context.Context, sessionID string) (*response.CheckoutStatusResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	resp := &response.CheckoutStatusResponse{SessionID: sessionID, Status: "processing"}

	booking, err := s.repo.Booking.FindByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		s.log.Warn("Checkout status: booking lookup failed", zap.Error(err), zap.String("session_id", sessionID))
	}
	if booking != nil {
		b := response.BookingToResponse(booking)
		resp.Booking = &b
		resp.Paid = true
		resp.Status = "confirmed"
		return resp, nil
	}

	session, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		// the processor redirected here, so the webhook will catch up
		s.log.Warn("Checkout status: provider lookup failed", zap.Error(err), zap.String("session_id", sessionID))
		return resp, nil
	}

	if session.IsPaid() {
		resp.Paid = true
		resp.Status = "paid"
	} else if session.Status == "expired" {
		resp.Status = "expired"
	} else {
		resp.Status = "unpaid"
	}

	return resp, nil
}
