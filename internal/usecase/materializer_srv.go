package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/metrics"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

type WebhookResult struct {
	EventID   string
	EventType string
	Outcome   string
	BookingID *uuid.UUID
}

type MaterializerService interface {
	// HandleWebhook verifies the signature before anything else and then
	// materializes checkout events. Other event types are acknowledged.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	Materialize(ctx context.Context, event *PaymentEvent) (*WebhookResult, error)
}

type materializerService struct {
	repo         *repository.Repository
	availability AvailabilityService
	reconcile    ReconcileService
	links        PaymentLinkService
	provider     PaymentProvider
	notifier     Notifier
	locker       lock.Locker
	lockTTL      time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewMaterializerService(
	repo *repository.Repository,
	availability AvailabilityService,
	reconcile ReconcileService,
	links PaymentLinkService,
	provider PaymentProvider,
	notifier Notifier,
	locker lock.Locker,
	config *utils.Config,
	log *zap.Logger,
) MaterializerService {
	ttl := time.Duration(config.Payment.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &materializerService{
		repo:         repo,
		availability: availability,
		reconcile:    reconcile,
		links:        links,
		provider:     provider,
		notifier:     notifier,
		locker:       locker,
		lockTTL:      ttl,
		log:          log.With(zap.String("service", "materializer")),
		now:          time.Now,
	}
}

func (s *materializerService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", OutcomeRejected).Inc()
		s.log.Warn("Webhook rejected", zap.Error(err))
		if errors.Is(err, ErrSignatureInvalid) || errors.Is(err, ErrInvalidPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	result, err := s.Materialize(ctx, event)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeFailed).Inc()
		return nil, err
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, result.Outcome).Inc()
	return result, nil
}

func (s *materializerService) Materialize(ctx context.Context, event *PaymentEvent) (*WebhookResult, error) {
	result := &WebhookResult{EventID: event.ID, EventType: event.Type, Outcome: OutcomeIgnored}
	log := s.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	if event.Type != EventCheckoutCompleted && event.Type != EventAsyncPaymentSucceeded {
		log.Debug("Event type not handled")
		return result, nil
	}

	session := event.Session
	if session == nil || !session.IsPaid() {
		// async methods confirm later with async_payment_succeeded
		log.Info("Checkout completed without payment yet")
		return result, nil
	}
	if session.Intent == nil {
		log.Error("Checkout session carries no booking intent", zap.String("session_id", session.ID))
		return result, nil
	}

	claimed, attempts, err := s.repo.ProcessedEvent.Claim(ctx, event.ID, event.Type)
	if err != nil {
		return nil, fmt.Errorf("claim event %s: %w", event.ID, err)
	}
	if !claimed {
		log.Info("Event already processed")
		result.Outcome = OutcomeDuplicate
		return result, nil
	}
	if attempts > 1 {
		log.Warn("Re-driving unfinished event", zap.Int("attempts", attempts))
	}

	intent := session.Intent
	amount := entity.RoundMoney(session.AmountTotal)
	if amount <= 0 {
		amount = intent.AmountToCharge
	}

	// 1. resolve or create the booking
	booking, created, err := s.resolveBooking(ctx, session, intent, amount)
	if err != nil {
		return nil, err
	}
	result.BookingID = &booking.ID
	log = log.With(zap.String("booking_id", booking.ID.String()))
	previous := booking.PaymentStatus
	if created {
		previous = entity.PaymentStatusUnpaid
	}
	// an earlier attempt already counted this payment and told the client
	redelivered := !created && booking.HasUnledgered(session.ID)

	// 2-4. ledger, reconciliation and token consumption
	updated, payErr := s.applyPayment(ctx, log, booking, intent, session, amount, created)

	// 5. notifications, once the payment is counted on the booking
	if (payErr == nil || created) && !redelivered {
		s.notify(ctx, log, updated, amount, previous)
	}

	// the event stays open so the provider redelivers it and the ledger row
	// gets another chance
	if payErr != nil {
		return nil, fmt.Errorf("record payment for booking %s: %w", booking.ID, payErr)
	}
	if updated.HasUnledgered(session.ID) {
		log.Warn("Payment counted without ledger row, leaving event open",
			zap.Float64("amount_paid", updated.AmountPaid))
		return nil, fmt.Errorf("booking %s: %w", booking.ID, ErrLedgerPending)
	}

	if err := s.repo.ProcessedEvent.MarkCompleted(ctx, event.ID); err != nil {
		log.Error("Event handled but not marked completed", zap.Error(err))
	}

	log.Info("Payment materialized",
		zap.Bool("created", created),
		zap.Float64("amount", amount),
		zap.Float64("amount_paid", updated.AmountPaid),
		zap.String("payment_status", string(updated.PaymentStatus)),
		zap.String("status", string(updated.Status)),
	)

	result.Outcome = OutcomeProcessed
	return result, nil
}

func (s *materializerService) resolveBooking(ctx context.Context, session *CheckoutSession, intent *CheckoutIntent, amount float64) (*entity.Booking, bool, error) {
	if intent.BookingID != nil {
		booking, err := s.repo.Booking.FindByID(ctx, *intent.BookingID)
		if err != nil {
			return nil, false, fmt.Errorf("load booking %s: %w", *intent.BookingID, err)
		}
		if booking != nil {
			return booking, false, nil
		}
		s.log.Error("Paid booking no longer exists, recreating from intent",
			zap.String("booking_id", intent.BookingID.String()),
			zap.String("session_id", session.ID),
		)
	}

	existing, err := s.repo.Booking.FindByCheckoutSessionID(ctx, session.ID)
	if err != nil {
		return nil, false, fmt.Errorf("find booking by session %s: %w", session.ID, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	return s.createBooking(ctx, session, intent, amount)
}

func (s *materializerService) createBooking(ctx context.Context, session *CheckoutSession, intent *CheckoutIntent, amount float64) (*entity.Booking, bool, error) {
	release, err := s.locker.Acquire(ctx, modelLockKey(intent.ModelID), s.lockTTL)
	if err != nil {
		return nil, false, fmt.Errorf("lock model %s: %w", intent.ModelID, err)
	}
	defer func() { _ = release(context.WithoutCancel(ctx)) }()

	boatID, note := s.assignUnit(ctx, intent)

	now := s.now()
	sessionID := session.ID
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:         utils.GenerateBookingRef(),
		ModelID:           intent.ModelID,
		BoatID:            boatID,
		ClientName:        intent.ClientName,
		ClientEmail:       intent.ClientEmail,
		ClientPhone:       intent.ClientPhone,
		StartDate:         intent.StartDate,
		EndDate:           intent.EndDate,
		Guests:            intent.Guests,
		TotalPrice:        intent.TotalPrice,
		AmountPaid:        amount,
		Unledgered:        map[string]float64{session.ID: amount},
		Discount:          intent.Discount,
		PaymentStatus:     entity.DerivePaymentStatus(amount, intent.TotalPrice),
		Status:            entity.BookingStatusConfirmed,
		Source:            orDefault(intent.Source, entity.SourceWebsite),
		Notes:             note,
		AddOns:            intent.AddOns,
		Billing:           intent.Billing,
		CheckoutSessionID: &sessionID,
	}
	if model, err := s.repo.BoatModel.FindByID(ctx, intent.ModelID); err == nil && model != nil {
		breakdown := ComputePrice(intent.StartDate, intent.EndDate, TariffOf(model))
		booking.PriceBreakdown = &breakdown
	}

	err = s.repo.Booking.Create(ctx, booking)
	if errors.Is(err, repository.ErrOverlap) {
		// a staff booking slipped in without the lock; keep the money, drop the unit
		s.log.Warn("Assigned boat taken at insert, storing booking without unit",
			zap.Stringer("boat_id", booking.BoatID),
			zap.String("session_id", session.ID),
		)
		booking.BoatID = nil
		booking.Notes = unassignedNote(intent)
		err = s.repo.Booking.Create(ctx, booking)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		// concurrent delivery of the same session won the insert
		existing, findErr := s.repo.Booking.FindByCheckoutSessionID(ctx, session.ID)
		if findErr == nil && existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert booking for session %s: %w", session.ID, err)
	}

	return booking, true, nil
}

// assignUnit keeps the boat chosen at checkout if it is still free, otherwise
// picks another boat of the model. With nothing free the booking is still
// stored, without a unit, for staff to resolve.
func (s *materializerService) assignUnit(ctx context.Context, intent *CheckoutIntent) (*uuid.UUID, *string) {
	if intent.BoatID != nil {
		free, err := s.availability.IsUnitFree(ctx, *intent.BoatID, intent.StartDate, intent.EndDate)
		if err != nil {
			s.log.Error("Failed to re-check assigned boat", zap.Error(err))
		} else if free {
			return intent.BoatID, nil
		}
	}

	avail, err := s.availability.FindAvailableUnit(ctx, intent.ModelID, intent.StartDate, intent.EndDate)
	if err != nil {
		s.log.Error("Failed to re-resolve boat", zap.Error(err))
		return nil, unassignedNote(intent)
	}
	if !avail.Available {
		s.log.Warn("No boat free for paid booking",
			zap.String("model_id", intent.ModelID.String()),
			zap.Time("start", intent.StartDate),
			zap.Time("end", intent.EndDate),
		)
		return nil, unassignedNote(intent)
	}
	return avail.BoatID, nil
}

func unassignedNote(intent *CheckoutIntent) *string {
	note := fmt.Sprintf("Paid online but no boat was free for %s to %s. Assign a unit manually.",
		intent.StartDate.Format("2006-01-02"), intent.EndDate.Format("2006-01-02"))
	return &note
}

// applyPayment writes the ledger row. A booking created by this event already
// carries the amount as an unledgered entry, which the ledger row settles.
func (s *materializerService) applyPayment(ctx context.Context, log *zap.Logger, booking *entity.Booking, intent *CheckoutIntent, session *CheckoutSession, amount float64, created bool) (*entity.Booking, error) {
	ref := session.ID

	if intent.PaymentToken != "" && !created {
		updated, err := s.links.Redeem(ctx, intent.PaymentToken, amount, ref)
		if err == nil {
			return updated, nil
		}
		// money has moved regardless of the token state
		if IsTokenError(err) {
			log.Warn("Payment token not redeemable, recording payment directly", zap.Error(err))
		} else {
			log.Error("Payment token redemption failed, recording payment directly", zap.Error(err))
		}
	}

	method := entity.PaymentMethodCard
	if intent.PaymentToken != "" {
		method = entity.PaymentMethodPaymentLink
	}

	updated, err := s.reconcile.RecordPayment(ctx, PaymentRecord{
		BookingID:   booking.ID,
		Amount:      amount,
		Method:      method,
		ExternalRef: ref,
		Metadata: map[string]any{
			"session_id":        session.ID,
			"payment_intent_id": session.PaymentIntentID,
			"payment_option":    intent.PaymentOption,
			"currency":          session.Currency,
		},
	})
	if err != nil {
		log.Error("Payment not reconciled, booking kept", zap.Error(err))
		return booking, err
	}
	return updated, nil
}

// notify sends the client receipt on every payment and the finance invoice
// request only on the transition into fully paid.
func (s *materializerService) notify(ctx context.Context, log *zap.Logger, booking *entity.Booking, amount float64, previous entity.PaymentStatus) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.PaymentReceived(ctx, booking, amount); err != nil {
		log.Warn("Payment receipt notification failed", zap.Error(err))
	}

	if booking.PaymentStatus == entity.PaymentStatusFullyPaid && previous != entity.PaymentStatusFullyPaid {
		if err := s.notifier.InvoiceRequested(ctx, booking); err != nil {
			log.Warn("Invoice request notification failed", zap.Error(err))
		}
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
