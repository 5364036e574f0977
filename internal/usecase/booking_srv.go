package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	ListBookings(ctx context.Context, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)
	CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, actor entity.Actor, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, actor entity.Actor, bookingID string) error
}

type bookingService struct {
	repo         *repository.Repository
	availability AvailabilityService
	reconcile    ReconcileService
	locker       lock.Locker
	lockTTL      time.Duration
	config       *utils.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewBookingService(
	repo *repository.Repository,
	availability AvailabilityService,
	reconcile ReconcileService,
	locker lock.Locker,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	ttl := time.Duration(config.Payment.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &bookingService{
		repo:         repo,
		availability: availability,
		reconcile:    reconcile,
		locker:       locker,
		lockTTL:      ttl,
		config:       config,
		log:          log.With(zap.String("service", "booking")),
		now:          time.Now,
	}
}

func parseBookingID(id string) (uuid.UUID, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid booking ID %s", ErrValidation, id)
	}
	return bookingID, nil
}

func (s *bookingService) loadBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	filter := repository.BookingFilter{
		Search: req.Search,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}
	if req.Status != "" {
		filter.Status = lo.ToPtr(entity.BookingStatus(req.Status))
	}
	if req.ModelID != "" {
		modelID, err := uuid.Parse(req.ModelID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid model ID", ErrValidation)
		}
		filter.ModelID = &modelID
	}
	if req.From != "" {
		from, err := utils.ParseDateTime(req.From)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from", ErrValidation)
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := utils.ParseDateTime(req.To)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to", ErrValidation)
		}
		filter.To = &to
	}

	var (
		bookings []*entity.Booking
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.repo.Booking.FindAll(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Booking.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*response.BookingDetailResponse, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var (
		txs    []*entity.PaymentTransaction
		tokens []*entity.PaymentToken
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.repo.Transaction.FindByBookingID(gctx, bookingID)
		return err
	})
	g.Go(func() error {
		var err error
		tokens, err = s.repo.PaymentToken.FindActiveByBookingID(gctx, bookingID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load booking detail", zap.Error(err), zap.String("booking_id", id))
		return nil, fmt.Errorf("load booking detail %s: %w", id, err)
	}

	site := strings.TrimRight(s.config.App.SiteURL, "/")
	links := lo.Map(tokens, func(t *entity.PaymentToken, _ int) response.PaymentLinkResponse {
		amount := booking.Remaining()
		if t.RequestedAmount != nil && *t.RequestedAmount < amount {
			amount = *t.RequestedAmount
		}
		return response.PaymentLinkResponse{
			Token:     t.Token,
			URL:       site + "/pay/" + t.Token,
			BookingID: booking.ID.String(),
			Amount:    amount,
			ExpiresAt: t.ExpiresAt,
		}
	})

	return &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
		Transactions:    response.TransactionsToResponse(txs),
		PaymentLinks:    links,
	}, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
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
	if model == nil {
		return nil, fmt.Errorf("model %s: %w", modelID, ErrNotFound)
	}
	if req.Guests > model.Capacity {
		return nil, fmt.Errorf("%w: %s takes at most %d guests", ErrValidation, model.Name, model.Capacity)
	}

	release, err := s.locker.Acquire(ctx, modelLockKey(model.ID), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock model %s: %w", model.ID, err)
	}
	defer func() { _ = release(context.WithoutCancel(ctx)) }()

	boatID, err := s.pickBoat(ctx, model.ID, req.BoatID, start, end)
	if err != nil {
		return nil, err
	}

	addOns := addOnsFromRequest(req.AddOns)
	breakdown := ComputePrice(start, end, TariffOf(model))
	total := BookingTotal(breakdown, addOns, req.Discount)
	if req.TotalPrice != nil {
		total = entity.RoundMoney(*req.TotalPrice)
	}

	status := entity.BookingStatusPending
	if req.Status != "" {
		status = entity.BookingStatus(req.Status)
	}

	now := s.now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:      utils.GenerateBookingRef(),
		ModelID:        model.ID,
		BoatID:         boatID,
		ClientName:     strings.TrimSpace(req.ClientName),
		ClientEmail:    strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone:    req.ClientPhone,
		StartDate:      start,
		EndDate:        end,
		Guests:         req.Guests,
		TotalPrice:     total,
		Discount:       req.Discount,
		PaymentStatus:  entity.DerivePaymentStatus(0, total),
		Status:         status,
		Source:         orDefault(req.Source, entity.SourceStaff),
		Notes:          req.Notes,
		AddOns:         addOns,
		PriceBreakdown: &breakdown,
		Billing:        billingFromRequest(req.Billing),
		CreatedBy:      actor.Ref(),
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrNoAvailability
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created by staff",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("by", actor.UserID.String()),
		zap.Float64("total_price", total),
		zap.String("status", string(status)),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// pickBoat honours an explicit boat when it belongs to the model and is free,
// otherwise resolves the first free one.
func (s *bookingService) pickBoat(ctx context.Context, modelID uuid.UUID, requested *string, start, end time.Time, exclude ...uuid.UUID) (*uuid.UUID, error) {
	if requested != nil && *requested != "" {
		boatID, err := uuid.Parse(*requested)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid boat ID", ErrValidation)
		}

		boat, err := s.repo.Boat.FindByID(ctx, boatID)
		if err != nil {
			return nil, fmt.Errorf("load boat %s: %w", boatID, err)
		}
		if boat == nil || boat.ModelID != modelID {
			return nil, fmt.Errorf("boat %s: %w", boatID, ErrNotFound)
		}

		free, err := s.availability.IsUnitFree(ctx, boatID, start, end, exclude...)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, ErrNoAvailability
		}
		return &boatID, nil
	}

	avail, err := s.availability.FindAvailableUnit(ctx, modelID, start, end, exclude...)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, ErrNoAvailability
	}
	return avail.BoatID, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor entity.Actor, id string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, modelLockKey(booking.ModelID), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock model %s: %w", booking.ModelID, err)
	}
	defer func() { _ = release(context.WithoutCancel(ctx)) }()

	start, end := booking.StartDate, booking.EndDate
	if req.StartDate != nil || req.EndDate != nil {
		startValue := booking.StartDate.Format(time.RFC3339)
		endValue := booking.EndDate.Format(time.RFC3339)
		if req.StartDate != nil {
			startValue = *req.StartDate
		}
		if req.EndDate != nil {
			endValue = *req.EndDate
		}
		start, end, err = parseStay(startValue, endValue)
		if err != nil {
			return nil, err
		}
	}

	datesChanged := !start.Equal(booking.StartDate) || !end.Equal(booking.EndDate)
	status := booking.Status
	if req.Status != nil {
		status = entity.BookingStatus(*req.Status)
	}
	reactivated := booking.Status == entity.BookingStatusCancelled && status != entity.BookingStatusCancelled

	if status != entity.BookingStatusCancelled && (datesChanged || req.BoatID != nil || reactivated || booking.BoatID == nil) {
		requested := req.BoatID
		if requested == nil && booking.BoatID != nil {
			requested = lo.ToPtr(booking.BoatID.String())
		}
		boatID, err := s.pickBoat(ctx, booking.ModelID, requested, start, end, booking.ID)
		if errors.Is(err, ErrNoAvailability) && req.BoatID == nil {
			// current boat is taken for the new dates, try the others
			boatID, err = s.pickBoat(ctx, booking.ModelID, nil, start, end, booking.ID)
		}
		if err != nil {
			return nil, err
		}
		booking.BoatID = boatID
	}

	booking.StartDate, booking.EndDate = start, end
	booking.Status = status
	if req.ClientName != nil {
		booking.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.ClientEmail != nil {
		booking.ClientEmail = strings.ToLower(strings.TrimSpace(*req.ClientEmail))
	}
	if req.ClientPhone != nil {
		booking.ClientPhone = utils.StringPtr(*req.ClientPhone)
	}
	if req.Guests != nil {
		booking.Guests = *req.Guests
	}
	if req.Notes != nil {
		booking.Notes = utils.StringPtr(*req.Notes)
	}
	if req.Billing != nil {
		booking.Billing = billingFromRequest(req.Billing)
	}
	if req.Discount != nil {
		booking.Discount = *req.Discount
	}
	if req.AddOns != nil {
		booking.AddOns = addOnsFromRequest(*req.AddOns)
	}

	switch {
	case req.TotalPrice != nil:
		booking.TotalPrice = entity.RoundMoney(*req.TotalPrice)
	case datesChanged || req.AddOns != nil || req.Discount != nil:
		model, err := s.repo.BoatModel.FindByID(ctx, booking.ModelID)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", booking.ModelID, err)
		}
		if model != nil {
			breakdown := ComputePrice(start, end, TariffOf(model))
			booking.PriceBreakdown = &breakdown
			booking.TotalPrice = BookingTotal(breakdown, booking.AddOns, booking.Discount)
		}
	}

	booking.UpdatedAt = s.now()

	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrNoAvailability
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}

	// the balance is re-read under the row lock so a payment that landed
	// while staff edited is kept
	booking, err = s.reconcile.Reconcile(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if req.PaymentStatus != nil {
		override := entity.PaymentStatus(*req.PaymentStatus)
		if err := s.repo.Booking.SetPaymentStatus(ctx, bookingID, override); err != nil {
			return nil, fmt.Errorf("override payment status: %w", err)
		}
		booking.PaymentStatus = override
		s.log.Warn("Payment status overridden by staff",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_status", *req.PaymentStatus),
			zap.String("by", actor.UserID.String()),
		)
	}

	s.log.Info("Booking updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("by", actor.UserID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor entity.Actor, id string) (*response.BookingResponse, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is already cancelled", ErrInvalidState, booking.Reference)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, bookingID, entity.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", id),
		zap.String("by", actor.UserID.String()),
		zap.Float64("amount_paid", booking.AmountPaid),
	)

	booking.Status = entity.BookingStatusCancelled
	booking.UpdatedAt = s.now()
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, actor entity.Actor, id string) error {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete booking: %w", err)
	}

	s.log.Warn("Booking deleted", zap.String("booking_id", id), zap.String("by", actor.UserID.String()))
	return nil
}
