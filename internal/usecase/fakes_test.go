package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/data/repository"
	"booking-platform/pkg/lock"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore backs every in-memory repository with one mutex so the fakes
// behave like a single database, constraints included.
type memStore struct {
	mu sync.Mutex

	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session
	models   map[uuid.UUID]entity.BoatModel
	boats    []entity.Boat
	bookings map[uuid.UUID]entity.Booking
	txs      map[uuid.UUID]entity.PaymentTransaction
	tokens   map[string]entity.PaymentToken
	events   map[string]entity.ProcessedEvent

	// txCreateErr makes every ledger insert fail.
	txCreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]entity.User),
		sessions: make(map[uuid.UUID]entity.Session),
		models:   make(map[uuid.UUID]entity.BoatModel),
		bookings: make(map[uuid.UUID]entity.Booking),
		txs:      make(map[uuid.UUID]entity.PaymentTransaction),
		tokens:   make(map[string]entity.PaymentToken),
		events:   make(map[string]entity.ProcessedEvent),
	}
}

func (m *memStore) repos() *repository.Repository {
	return &repository.Repository{
		User:           memUserRepo{m},
		Session:        memSessionRepo{m},
		BoatModel:      memModelRepo{m},
		Boat:           memBoatRepo{m},
		Booking:        memBookingRepo{m},
		Transaction:    memTransactionRepo{m},
		PaymentToken:   memTokenRepo{m},
		ProcessedEvent: memEventRepo{m},
	}
}

// ==================== SEED HELPERS ====================

func (m *memStore) addModel(capacity int, weekday, weekend float64, boats ...string) (*entity.BoatModel, []*entity.Boat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	model := entity.BoatModel{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Kind:         entity.ModelKindHouseboat,
		Name:         "Nomad",
		Capacity:     capacity,
		WeekdayRate:  weekday,
		WeekendRate:  weekend,
		IsActive:     true,
	}
	m.models[model.ID] = model

	out := make([]*entity.Boat, 0, len(boats))
	for _, name := range boats {
		boat := entity.Boat{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			ModelID:      model.ID,
			Name:         name,
			IsActive:     true,
		}
		m.boats = append(m.boats, boat)
		b := boat
		out = append(out, &b)
	}
	return &model, out
}

func (m *memStore) addBooking(b entity.Booking) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Reference == "" {
		b.Reference = utils.GenerateBookingRef()
	}
	if b.Status == "" {
		b.Status = entity.BookingStatusConfirmed
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = entity.DerivePaymentStatus(b.AmountPaid, b.TotalPrice)
	}
	m.bookings[b.ID] = b
	return &b
}

func (m *memStore) addTransaction(tx entity.PaymentTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Status == "" {
		tx.Status = entity.TransactionStatusPaid
	}
	m.txs[tx.ID] = tx
}

func (m *memStore) booking(id uuid.UUID) entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) onlyBooking() entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		return b
	}
	return entity.Booking{}
}

func (m *memStore) transactionsFor(bookingID uuid.UUID) []entity.PaymentTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.PaymentTransaction
	for _, tx := range m.txs {
		if tx.BookingID == bookingID {
			out = append(out, tx)
		}
	}
	return out
}

func (m *memStore) token(value string) entity.PaymentToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[value]
}

// ==================== USERS ====================

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w (users_email_key)", repository.ErrDuplicate)
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// ==================== SESSIONS ====================

type memSessionRepo struct{ *memStore }

func (r memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = *session
	return nil
}

func (r memSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil || !time.Now().Before(s.ExpiresAt) {
		return nil, nil
	}
	return &s, nil
}

func (r memSessionRepo) Revoke(_ context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return repository.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	r.sessions[id] = s
	return nil
}

func (r memSessionRepo) CleanExpiredSessions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.RevokedAt != nil || !time.Now().Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// ==================== CATALOG ====================

type memModelRepo struct{ *memStore }

func (r memModelRepo) Create(_ context.Context, model *entity.BoatModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[model.ID] = *model
	return nil
}

func (r memModelRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.BoatModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r memModelRepo) FindAll(_ context.Context, kind *entity.ModelKind, activeOnly bool) ([]*entity.BoatModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BoatModel
	for _, m := range r.models {
		if kind != nil && m.Kind != *kind {
			continue
		}
		if activeOnly && !m.IsActive {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memBoatRepo struct{ *memStore }

func (r memBoatRepo) Create(_ context.Context, boat *entity.Boat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boats = append(r.boats, *boat)
	return nil
}

func (r memBoatRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.boats {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (r memBoatRepo) FindByModelID(_ context.Context, modelID uuid.UUID) ([]*entity.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Boat
	for _, b := range r.boats {
		if b.ModelID == modelID && b.IsActive {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

// ==================== BOOKINGS ====================

type memBookingRepo struct{ *memStore }

// checkConstraints mirrors the unique checkout session index and the
// bookings_no_overlap exclusion constraint. Caller holds the mutex.
func (r memBookingRepo) checkConstraints(b *entity.Booking) error {
	for _, other := range r.bookings {
		if other.ID == b.ID {
			continue
		}
		if b.CheckoutSessionID != nil && other.CheckoutSessionID != nil && *b.CheckoutSessionID == *other.CheckoutSessionID {
			return fmt.Errorf("%w (bookings_checkout_session_id_key)", repository.ErrDuplicate)
		}
		if b.BoatID == nil || other.BoatID == nil || *b.BoatID != *other.BoatID {
			continue
		}
		if b.Status == entity.BookingStatusCancelled || other.Status == entity.BookingStatusCancelled {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, other.StartDate, other.EndDate) {
			return fmt.Errorf("%w (bookings_no_overlap)", repository.ErrOverlap)
		}
	}
	return nil
}

func (r memBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkConstraints(booking); err != nil {
		return err
	}
	stored := *booking
	stored.Unledgered = cloneRefs(booking.Unledgered)
	r.bookings[booking.ID] = stored
	return nil
}

func cloneRefs(refs map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(refs))
	for k, v := range refs {
		out[k] = v
	}
	return out
}

func (r memBookingRepo) find(match func(entity.Booking) bool) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if match(b) {
			b := b
			return &b
		}
	}
	return nil
}

func (r memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool { return b.ID == id }), nil
}

func (r memBookingRepo) FindByReference(_ context.Context, reference string) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool { return b.Reference == reference }), nil
}

func (r memBookingRepo) FindByCheckoutSessionID(_ context.Context, sessionID string) (*entity.Booking, error) {
	return r.find(func(b entity.Booking) bool {
		return b.CheckoutSessionID != nil && *b.CheckoutSessionID == sessionID
	}), nil
}

func (r memBookingRepo) filtered(filter repository.BookingFilter) []*entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.ModelID != nil && b.ModelID != *filter.ModelID {
			continue
		}
		if filter.BoatID != nil && (b.BoatID == nil || *b.BoatID != *filter.BoatID) {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(b.ClientName), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(b.ClientEmail), strings.ToLower(filter.Search)) &&
			!strings.EqualFold(b.Reference, filter.Search) {
			continue
		}
		if filter.From != nil && !b.EndDate.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.StartDate.Before(*filter.To) {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (r memBookingRepo) FindAll(_ context.Context, filter repository.BookingFilter) ([]*entity.Booking, error) {
	out := r.filtered(filter)
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r memBookingRepo) Count(_ context.Context, filter repository.BookingFilter) (int64, error) {
	return int64(len(r.filtered(filter))), nil
}

// Update leaves the payment columns alone like the SQL version does.
func (r memBookingRepo) Update(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[booking.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkConstraints(booking); err != nil {
		return err
	}
	stored := *booking
	stored.AmountPaid = current.AmountPaid
	stored.PaymentStatus = current.PaymentStatus
	stored.Unledgered = current.Unledgered
	r.bookings[booking.ID] = stored
	return nil
}

func (r memBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.bookings, id)
	for txID, tx := range r.txs {
		if tx.BookingID == id {
			delete(r.txs, txID)
		}
	}
	return nil
}

func (r memBookingRepo) FindActiveByBoatIDs(_ context.Context, boatIDs []uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.BoatID == nil || b.Status == entity.BookingStatusCancelled {
			continue
		}
		for _, id := range boatIDs {
			if *b.BoatID == id && Overlaps(start, end, b.StartDate, b.EndDate) {
				b := b
				out = append(out, &b)
				break
			}
		}
	}
	return out, nil
}

func (r memBookingRepo) RecomputePaymentState(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	var paid float64
	ledgered := make(map[string]bool)
	for _, tx := range r.txs {
		if tx.BookingID != id {
			continue
		}
		if tx.ExternalRef != nil {
			ledgered[*tx.ExternalRef] = true
		}
		if tx.Status == entity.TransactionStatusPaid {
			paid += tx.Amount
		}
	}
	pending := make(map[string]float64)
	for ref, amount := range b.Unledgered {
		if !ledgered[ref] {
			pending[ref] = amount
			paid += amount
		}
	}

	b.AmountPaid = entity.RoundMoney(paid)
	b.Unledgered = pending
	b.PaymentStatus = entity.DerivePaymentStatus(b.AmountPaid, b.TotalPrice)
	b.Status = entity.PromoteOnPayment(b.Status, b.AmountPaid)
	r.bookings[id] = b
	return &b, nil
}

func (r memBookingRepo) AddUnledgeredPayment(_ context.Context, id uuid.UUID, ref string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if _, exists := b.Unledgered[ref]; !exists {
		b.Unledgered = cloneRefs(b.Unledgered)
		b.Unledgered[ref] = amount
	}
	r.bookings[id] = b
	return nil
}

func (r memBookingRepo) SetPaymentStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	r.bookings[id] = b
	return nil
}

func (r memBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	r.bookings[id] = b
	return nil
}

// ==================== LEDGER ====================

type memTransactionRepo struct{ *memStore }

func (r memTransactionRepo) Create(_ context.Context, tx *entity.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.txCreateErr != nil {
		return r.txCreateErr
	}
	if tx.ExternalRef != nil {
		for _, other := range r.txs {
			if other.ExternalRef != nil && *other.ExternalRef == *tx.ExternalRef {
				return fmt.Errorf("%w (payment_transactions_external_ref_key)", repository.ErrDuplicate)
			}
		}
	}
	r.txs[tx.ID] = *tx
	return nil
}

func (r memTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (r memTransactionRepo) FindByExternalRef(_ context.Context, ref string) (*entity.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ExternalRef != nil && *tx.ExternalRef == ref {
			tx := tx
			return &tx, nil
		}
	}
	return nil, nil
}

func (r memTransactionRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PaymentTransaction
	for _, tx := range r.txs {
		if tx.BookingID == bookingID {
			tx := tx
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (r memTransactionRepo) Update(_ context.Context, tx *entity.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[tx.ID]; !ok {
		return repository.ErrNotFound
	}
	r.txs[tx.ID] = *tx
	return nil
}

func (r memTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.txs, id)
	return nil
}

func (r memTransactionRepo) SumPaid(_ context.Context, bookingID uuid.UUID) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, tx := range r.txs {
		if tx.BookingID == bookingID && tx.Status == entity.TransactionStatusPaid {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// ==================== PAYMENT TOKENS ====================

type memTokenRepo struct{ *memStore }

func (r memTokenRepo) Create(_ context.Context, token *entity.PaymentToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.Token]; ok {
		return repository.ErrDuplicate
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r memTokenRepo) FindByToken(_ context.Context, value string) (*entity.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memTokenRepo) FindActiveByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PaymentToken
	for _, t := range r.tokens {
		if t.BookingID == bookingID && t.IsValid(time.Now()) {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r memTokenRepo) MarkUsed(_ context.Context, value string, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.UsedAt != nil {
		return false, nil
	}
	t.UsedAt = &usedAt
	r.tokens[value] = t
	return true, nil
}

// ==================== PROCESSED EVENTS ====================

type memEventRepo struct{ *memStore }

func (r memEventRepo) Claim(_ context.Context, eventID, eventType string) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		r.events[eventID] = entity.ProcessedEvent{EventID: eventID, EventType: eventType, Attempts: 1, CreatedAt: time.Now()}
		return true, 1, nil
	}
	if e.CompletedAt != nil {
		return false, e.Attempts, nil
	}
	e.Attempts++
	r.events[eventID] = e
	return true, e.Attempts, nil
}

func (r memEventRepo) MarkCompleted(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.CompletedAt = &now
	r.events[eventID] = e
	return nil
}

// ==================== PROVIDER / NOTIFIER / LOCKER ====================

type providerFake struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	created  []CheckoutIntent
	fail     error
}

func newProviderFake() *providerFake {
	return &providerFake{sessions: make(map[string]*CheckoutSession)}
}

func (p *providerFake) CreateSession(_ context.Context, intent CheckoutIntent, _, _ string) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	in := intent
	s := &CheckoutSession{
		ID:            "cs_test_" + uuid.NewString()[:8],
		URL:           "https://checkout.test/pay",
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   intent.AmountToCharge,
		Currency:      "eur",
		Intent:        &in,
	}
	p.sessions[s.ID] = s
	p.created = append(p.created, intent)
	return s, nil
}

func (p *providerFake) RetrieveSession(_ context.Context, id string) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s
	return &out, nil
}

// VerifyWebhook treats "valid" as the only good signature and the payload as
// the session id. "valid-garbled" passes the signature but fails decoding.
func (p *providerFake) VerifyWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	if signature == "valid-garbled" {
		return nil, fmt.Errorf("%w: session metadata: bad start_date", ErrInvalidPayload)
	}
	if signature != "valid" {
		return nil, ErrSignatureInvalid
	}
	s, err := p.RetrieveSession(context.Background(), string(payload))
	if err != nil {
		return nil, err
	}
	return &PaymentEvent{ID: "evt_" + s.ID, Type: EventCheckoutCompleted, Session: s}, nil
}

// pay marks the session paid and returns the completed event.
func (p *providerFake) pay(id string) *PaymentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[id]
	s.Status = "complete"
	s.PaymentStatus = "paid"
	out := *s
	return &PaymentEvent{ID: "evt_" + id, Type: EventCheckoutCompleted, Session: &out}
}

type notifierFake struct {
	mu       sync.Mutex
	receipts []float64
	invoices []uuid.UUID
	fail     error
}

func (n *notifierFake) PaymentReceived(_ context.Context, booking *entity.Booking, amount float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, amount)
	return n.fail
}

func (n *notifierFake) InvoiceRequested(_ context.Context, booking *entity.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invoices = append(n.invoices, booking.ID)
	return n.fail
}

func (n *notifierFake) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.receipts), len(n.invoices)
}

// lockerFake is an in-process mutex per key.
type lockerFake struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
	fail     error
	// onAcquire runs once the lock is held, to interleave a concurrent write.
	onAcquire func()
}

func (l *lockerFake) Acquire(_ context.Context, key string, _ time.Duration) (lock.ReleaseFunc, error) {
	l.mu.Lock()
	if l.fail != nil {
		l.mu.Unlock()
		return nil, l.fail
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		l.mu.Unlock()
		return nil, lock.ErrNotAcquired
	}
	l.held[key] = true
	l.acquired++
	hook := l.onAcquire
	l.mu.Unlock()

	if hook != nil {
		hook()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// ==================== FIXTURE ====================

type fixture struct {
	store    *memStore
	repo     *repository.Repository
	provider *providerFake
	notifier *notifierFake
	locker   *lockerFake
	config   *utils.Config
	svc      *Service
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		repo:     store.repos(),
		provider: newProviderFake(),
		notifier: &notifierFake{},
		locker:   &lockerFake{},
		config: &utils.Config{
			App:     utils.AppConfig{SiteURL: "https://boats.test/"},
			Payment: utils.PaymentConfig{Currency: "eur", LinkTTLHours: 48, LockTTLSeconds: 5},
			Auth:    utils.AuthConfig{SessionTTLHours: 12},
		},
	}
	f.svc = NewService(f.repo, f.provider, f.locker, f.notifier, f.config, zap.NewNop())
	return f
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
