package gateway

import (
	"context"
	"fmt"
	"sync"

	"booking-platform/internal/usecase"

	"github.com/google/uuid"
)

// PaymentMock is an in-memory provider for tests. Sessions are created
// unpaid; Pay flips one to paid and returns the event a webhook would carry.
type PaymentMock struct {
	mock     sync.Mutex
	Sessions map[string]*usecase.CheckoutSession
	Fail     error
}

func (c *PaymentMock) CreateSession(ctx context.Context, intent usecase.CheckoutIntent, successURL, cancelURL string) (*usecase.CheckoutSession, error) {
	c.mock.Lock()
	defer c.mock.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}
	if c.Sessions == nil {
		c.Sessions = make(map[string]*usecase.CheckoutSession)
	}

	id := "cs_test_" + uuid.NewString()
	stored := intent
	session := &usecase.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.test/" + id,
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   intent.AmountToCharge,
		Currency:      "eur",
		Intent:        &stored,
	}
	c.Sessions[id] = session

	out := *session
	return &out, nil
}

func (c *PaymentMock) RetrieveSession(ctx context.Context, id string) (*usecase.CheckoutSession, error) {
	c.mock.Lock()
	defer c.mock.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	session, ok := c.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("checkout session %s: %w", id, usecase.ErrNotFound)
	}
	out := *session
	return &out, nil
}

// VerifyWebhook accepts only the signature "valid" and never parses the body.
func (c *PaymentMock) VerifyWebhook(payload []byte, signature string) (*usecase.PaymentEvent, error) {
	if signature != "valid" {
		return nil, usecase.ErrSignatureInvalid
	}

	c.mock.Lock()
	defer c.mock.Unlock()
	id := string(payload)
	session, ok := c.Sessions[id]
	if !ok {
		return &usecase.PaymentEvent{ID: "evt_" + id, Type: "unknown"}, nil
	}
	out := *session
	return &usecase.PaymentEvent{ID: "evt_" + id, Type: usecase.EventCheckoutCompleted, Session: &out}, nil
}

// Pay marks the session complete and returns its completion event.
func (c *PaymentMock) Pay(id string) (*usecase.PaymentEvent, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	session, ok := c.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("checkout session %s: %w", id, usecase.ErrNotFound)
	}
	session.Status = "complete"
	session.PaymentStatus = "paid"
	session.PaymentIntentID = "pi_" + id

	out := *session
	return &usecase.PaymentEvent{ID: "evt_" + id, Type: usecase.EventCheckoutCompleted, Session: &out}, nil
}
