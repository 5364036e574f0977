package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	QueuePaymentReceived = "booking.payment_received"
	QueueFullyPaid       = "booking.fully_paid"
)

// BookingEvent is the body published for booking payment events.
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	ClientEmail   string    `json:"client_email"`
	Amount        float64   `json:"amount"`
	AmountPaid    float64   `json:"amount_paid"`
	TotalPrice    float64   `json:"total_price"`
	PaymentStatus string    `json:"payment_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, queue string, event BookingEvent) error
}

type amqpPublisher struct {
	url string
	log *zap.Logger
}

// NewAMQPPublisher dials the broker on every publish. An empty url gives a
// publisher that drops events.
func NewAMQPPublisher(url string, log *zap.Logger) Publisher {
	if url == "" {
		return nopPublisher{}
	}
	return &amqpPublisher{
		url: url,
		log: log.With(zap.String("notify", "amqp")),
	}
}

func (p *amqpPublisher) Publish(ctx context.Context, queue string, event BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("AMQP dial failed", zap.Error(err))
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp declare %s: %w", queue, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.BookingID + ":" + queue + ":" + event.OccurredAt.Format(time.RFC3339Nano),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("AMQP publish failed", zap.Error(err), zap.String("queue", queue))
		return fmt.Errorf("amqp publish %s: %w", queue, err)
	}

	p.log.Debug("Event published", zap.String("queue", queue), zap.String("booking_id", event.BookingID))
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, BookingEvent) error { return nil }
