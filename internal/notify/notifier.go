package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-platform/internal/data/entity"

	"go.uber.org/zap"
)

// Notifier sends the client receipt and the finance invoice request and
// mirrors both as broker events. Failures are joined and returned for the
// caller to log.
type Notifier struct {
	mailer       Mailer
	publisher    Publisher
	financeEmail string
	log          *zap.Logger
	now          func() time.Time
}

func NewNotifier(mailer Mailer, publisher Publisher, financeEmail string, log *zap.Logger) *Notifier {
	return &Notifier{
		mailer:       mailer,
		publisher:    publisher,
		financeEmail: financeEmail,
		log:          log.With(zap.String("notify", "notifier")),
		now:          time.Now,
	}
}

func (n *Notifier) PaymentReceived(ctx context.Context, booking *entity.Booking, amount float64) error {
	subject := fmt.Sprintf("Payment received for booking %s", booking.Reference)

	mailErr := n.mailer.Send(ctx, booking.ClientEmail, subject, receiptBody(booking, amount))
	pubErr := n.publisher.Publish(ctx, QueuePaymentReceived, n.event(booking, amount))

	return errors.Join(mailErr, pubErr)
}

func (n *Notifier) InvoiceRequested(ctx context.Context, booking *entity.Booking) error {
	var mailErr error
	if n.financeEmail == "" {
		n.log.Warn("FINANCE_EMAIL not set, invoice request not mailed",
			zap.String("booking_id", booking.ID.String()))
	} else {
		subject := fmt.Sprintf("Invoice request: booking %s fully paid", booking.Reference)
		mailErr = n.mailer.Send(ctx, n.financeEmail, subject, invoiceBody(booking))
	}

	pubErr := n.publisher.Publish(ctx, QueueFullyPaid, n.event(booking, 0))
	return errors.Join(mailErr, pubErr)
}

func (n *Notifier) event(booking *entity.Booking, amount float64) BookingEvent {
	return BookingEvent{
		BookingID:     booking.ID.String(),
		Reference:     booking.Reference,
		ClientEmail:   booking.ClientEmail,
		Amount:        amount,
		AmountPaid:    booking.AmountPaid,
		TotalPrice:    booking.TotalPrice,
		PaymentStatus: string(booking.PaymentStatus),
		OccurredAt:    n.now().UTC(),
	}
}

func receiptBody(b *entity.Booking, amount float64) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Hello %s,\n\n", b.ClientName)
	fmt.Fprintf(&s, "We received your payment of %.2f for booking %s.\n\n", amount, b.Reference)
	fmt.Fprintf(&s, "Stay: %s to %s\n", b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&s, "Guests: %d\n", b.Guests)
	fmt.Fprintf(&s, "Total: %.2f\nPaid: %.2f\nRemaining: %.2f\n", b.TotalPrice, b.AmountPaid, b.Remaining())
	return s.String()
}

func invoiceBody(b *entity.Booking) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Booking %s is fully paid.\n\n", b.Reference)
	fmt.Fprintf(&s, "Client: %s <%s>\n", b.ClientName, b.ClientEmail)
	if b.ClientPhone != nil {
		fmt.Fprintf(&s, "Phone: %s\n", *b.ClientPhone)
	}
	fmt.Fprintf(&s, "Stay: %s to %s\n", b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&s, "Total: %.2f\n", b.TotalPrice)

	if b.Billing.LegalName != nil {
		fmt.Fprintf(&s, "Legal name: %s\n", *b.Billing.LegalName)
	}
	if b.Billing.TaxID != nil {
		fmt.Fprintf(&s, "Tax ID: %s\n", *b.Billing.TaxID)
	}
	if b.Billing.Address != nil {
		fmt.Fprintf(&s, "Address: %s\n", *b.Billing.Address)
	}
	return s.String()
}
