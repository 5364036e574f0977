package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/dto/response"
	"booking-platform/pkg/metrics"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// settledEpsilon is the remaining balance under which a booking counts as paid
// for payment link purposes.
const settledEpsilon = 0.01

type PaymentLinkService interface {
	Generate(ctx context.Context, actor entity.Actor, req *request.GeneratePaymentLinkRequest) (*response.PaymentLinkResponse, error)
	// Validate is read-only and safe to call from the public pay page.
	Validate(ctx context.Context, token string) (*response.PaymentLinkValidationResponse, error)
	// Process opens a checkout session for the payable amount. The webhook
	// redeems the token once the provider confirms.
	Process(ctx context.Context, req *request.ProcessPaymentLinkRequest) (*response.CheckoutResponse, error)
	// Redeem records amount against the token's booking and consumes the token.
	Redeem(ctx context.Context, token string, amount float64, externalRef string) (*entity.Booking, error)
}

type paymentLinkService struct {
	repo      *repository.Repository
	reconcile ReconcileService
	provider  PaymentProvider
	config    *utils.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentLinkService(
	repo *repository.Repository,
	reconcile ReconcileService,
	provider PaymentProvider,
	config *utils.Config,
	log *zap.Logger,
) PaymentLinkService {
	return &paymentLinkService{
		repo:      repo,
		reconcile: reconcile,
		provider:  provider,
		config:    config,
		log:       log.With(zap.String("service", "payment_link")),
		now:       time.Now,
	}
}

func (s *paymentLinkService) linkTTL() time.Duration {
	hours := s.config.Payment.LinkTTLHours
	if hours <= 0 {
		hours = 48
	}
	return time.Duration(hours) * time.Hour
}

func (s *paymentLinkService) linkURL(token string) string {
	return strings.TrimRight(s.config.App.SiteURL, "/") + "/pay/" + token
}

func (s *paymentLinkService) Generate(ctx context.Context, actor entity.Actor, req *request.GeneratePaymentLinkRequest) (*response.PaymentLinkResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Generate payment link validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID %s", ErrValidation, req.BookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", ErrInvalidState, booking.Reference)
	}

	remaining := booking.Remaining()
	if remaining <= settledEpsilon {
		return nil, fmt.Errorf("booking %s: %w", booking.Reference, ErrAlreadySettled)
	}

	var amount float64
	var requested *float64
	switch {
	case req.Amount != nil:
		amount = entity.RoundMoney(*req.Amount)
		requested = &amount
	case booking.AmountPaid <= 0:
		amount = math.Min(Deposit(booking.TotalPrice), remaining)
	default:
		amount = remaining
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment link amount must be positive", ErrInvalidAmount)
	}

	value, err := utils.GeneratePaymentToken()
	if err != nil {
		s.log.Error("Failed to generate payment token", zap.Error(err))
		return nil, fmt.Errorf("generate payment token: %w", err)
	}

	now := s.now()
	token := &entity.PaymentToken{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		Token:           value,
		BookingID:       booking.ID,
		ExpiresAt:       now.Add(s.linkTTL()),
		RequestedAmount: requested,
		CreatedBy:       actor.Ref(),
	}

	if err := s.repo.PaymentToken.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("save payment token: %w", err)
	}

	s.log.Info("Payment link generated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("token", token.Short()),
		zap.Float64("amount", amount),
		zap.Time("expires_at", token.ExpiresAt),
		zap.String("by", actor.UserID.String()),
	)

	return &response.PaymentLinkResponse{
		Token:     token.Token,
		URL:       s.linkURL(token.Token),
		BookingID: booking.ID.String(),
		Amount:    amount,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// check runs the validation ladder: not found, expired, used, settled.
// The payable amount never exceeds the remaining balance.
func (s *paymentLinkService) check(ctx context.Context, value string) (*entity.PaymentToken, *entity.Booking, float64, error) {
	if value == "" {
		return nil, nil, 0, ErrTokenNotFound
	}

	token, err := s.repo.PaymentToken.FindByToken(ctx, value)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load payment token: %w", err)
	}
	if token == nil {
		return nil, nil, 0, ErrTokenNotFound
	}

	if token.IsExpired(s.now()) {
		return token, nil, 0, ErrTokenExpired
	}
	if token.IsUsed() {
		return token, nil, 0, ErrTokenUsed
	}

	booking, err := s.repo.Booking.FindByID(ctx, token.BookingID)
	if err != nil {
		return token, nil, 0, fmt.Errorf("load booking %s: %w", token.BookingID, err)
	}
	if booking == nil {
		return token, nil, 0, ErrTokenNotFound
	}

	remaining := booking.Remaining()
	if remaining <= settledEpsilon {
		return token, booking, 0, ErrAlreadySettled
	}

	payable := remaining
	if token.RequestedAmount != nil && *token.RequestedAmount > 0 {
		payable = math.Min(*token.RequestedAmount, remaining)
	}

	return token, booking, entity.RoundMoney(payable), nil
}

func (s *paymentLinkService) Validate(ctx context.Context, value string) (*response.PaymentLinkValidationResponse, error) {
	token, booking, payable, err := s.check(ctx, value)
	if err != nil {
		if token != nil {
			s.log.Info("Payment link rejected",
				zap.String("token", token.Short()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	return &response.PaymentLinkValidationResponse{
		BookingID:        booking.ID.String(),
		BookingReference: booking.Reference,
		ClientName:       booking.ClientName,
		StartDate:        booking.StartDate,
		EndDate:          booking.EndDate,
		TotalPrice:       booking.TotalPrice,
		AmountPaid:       booking.AmountPaid,
		Remaining:        booking.Remaining(),
		PayableAmount:    payable,
		ExpiresAt:        token.ExpiresAt,
	}, nil
}

func (s *paymentLinkService) Process(ctx context.Context, req *request.ProcessPaymentLinkRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	token, booking, payable, err := s.check(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	bookingID := booking.ID
	intent := CheckoutIntent{
		BookingID:      &bookingID,
		PaymentToken:   token.Token,
		ModelID:        booking.ModelID,
		BoatID:         booking.BoatID,
		ClientName:     booking.ClientName,
		ClientEmail:    booking.ClientEmail,
		ClientPhone:    booking.ClientPhone,
		StartDate:      booking.StartDate,
		EndDate:        booking.EndDate,
		Guests:         booking.Guests,
		Billing:        booking.Billing,
		TotalPrice:     booking.TotalPrice,
		Deposit:        Deposit(booking.TotalPrice),
		AmountToCharge: payable,
		Source:         entity.SourcePaymentLink,
		Description:    fmt.Sprintf("Payment for booking %s", booking.Reference),
	}

	site := strings.TrimRight(s.config.App.SiteURL, "/")
	session, err := s.provider.CreateSession(ctx, intent,
		site+"/pay/success?session_id={CHECKOUT_SESSION_ID}",
		s.linkURL(token.Token),
	)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("payment_link", "error").Inc()
		s.log.Error("Failed to open payment link checkout",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("token", token.Short()),
		)
		return nil, providerError(err)
	}
	metrics.CheckoutSessions.WithLabelValues("payment_link", "created").Inc()

	s.log.Info("Payment link checkout opened",
		zap.String("booking_id", booking.ID.String()),
		zap.String("session_id", session.ID),
		zap.Float64("amount", payable),
	)

	return &response.CheckoutResponse{
		SessionID:      session.ID,
		URL:            session.URL,
		TotalPrice:     booking.TotalPrice,
		Deposit:        intent.Deposit,
		AmountToCharge: payable,
	}, nil
}

func (s *paymentLinkService) Redeem(ctx context.Context, value string, amount float64, externalRef string) (*entity.Booking, error) {
	token, booking, payable, err := s.check(ctx, value)
	if err != nil {
		return nil, err
	}

	// the charged amount is what moved; payable only caps what we ask for
	if amount <= 0 {
		amount = payable
	}

	updated, err := s.reconcile.RecordPayment(ctx, PaymentRecord{
		BookingID:   booking.ID,
		Amount:      amount,
		Method:      entity.PaymentMethodPaymentLink,
		ExternalRef: externalRef,
		Metadata: map[string]any{
			"token":  token.Short(),
			"source": entity.SourcePaymentLink,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("record payment link payment: %w", err)
	}

	// used_at is the last write so a crash above leaves the token redeemable
	marked, err := s.repo.PaymentToken.MarkUsed(ctx, token.Token, s.now())
	if err != nil {
		s.log.Error("Payment recorded but token not consumed",
			zap.Error(err),
			zap.String("token", token.Short()),
			zap.String("booking_id", booking.ID.String()),
		)
		return updated, nil
	}
	if !marked {
		s.log.Warn("Payment token consumed concurrently",
			zap.String("token", token.Short()),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	s.log.Info("Payment link redeemed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("token", token.Short()),
		zap.Float64("amount", amount),
		zap.Float64("amount_paid", updated.AmountPaid),
		zap.String("payment_status", string(updated.PaymentStatus)),
	)

	return updated, nil
}

func providerError(err error) error {
	if errors.Is(err, ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProvider, err)
}
