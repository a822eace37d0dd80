package ticketing_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"github.com/tixgate/event-ticketing-backend/internal/ticketing"
)

// fakeStore is an in-memory Store/Tx good enough to drive the orchestrator:
// single-threaded, so "serializable" trivially holds. failures injects an
// error for the first N WithTx calls to exercise the retry loop.
type fakeStore struct {
	events       map[uuid.UUID]*domain.Event
	promotions   map[uuid.UUID]*domain.Promotion
	transactions map[uuid.UUID]*domain.Transaction
	tickets      []domain.Ticket
	outbox       []string
	failures     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       map[uuid.UUID]*domain.Event{},
		promotions:   map[uuid.UUID]*domain.Promotion{},
		transactions: map[uuid.UUID]*domain.Transaction{},
	}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx ticketing.Tx) error) error {
	if s.failures > 0 {
		s.failures--
		return domain.ErrSerializationFailure
	}
	snapshot := s.clone()
	if err := fn(&fakeTx{store: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, e := range s.events {
		ev := *e
		c.events[id] = &ev
	}
	for id, p := range s.promotions {
		pr := *p
		c.promotions[id] = &pr
	}
	for id, t := range s.transactions {
		tx := *t
		c.transactions[id] = &tx
	}
	c.tickets = append([]domain.Ticket(nil), s.tickets...)
	c.outbox = append([]string(nil), s.outbox...)
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.events = from.events
	s.promotions = from.promotions
	s.transactions = from.transactions
	s.tickets = from.tickets
	s.outbox = from.outbox
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	e, ok := t.store.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ev := *e
	return &ev, nil
}

func (t *fakeTx) UserHasTicket(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	for _, tk := range t.store.tickets {
		if tk.UserID == userID && tk.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) GetPromotionForUpdate(ctx context.Context, referralCode string, eventID uuid.UUID) (*domain.Promotion, error) {
	for _, p := range t.store.promotions {
		if p.ReferralCode == referralCode && p.EventID == eventID && p.IsActive {
			pr := *p
			return &pr, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *fakeTx) EventHasPromotion(ctx context.Context, eventID uuid.UUID) (bool, error) {
	for _, p := range t.store.promotions {
		if p.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) AddPromotionUsage(ctx context.Context, promotionID uuid.UUID, seats int) error {
	p, ok := t.store.promotions[promotionID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.UsedCount+seats > p.UsageLimit {
		return domain.ErrPromotionLimitExceeded
	}
	p.UsedCount += seats
	return nil
}

func (t *fakeTx) CreatePromotion(ctx context.Context, promo domain.Promotion) error {
	t.store.promotions[promo.ID] = &promo
	return nil
}

func (t *fakeTx) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	t.store.transactions[txn.ID] = &txn
	return nil
}

func (t *fakeTx) CreateTickets(ctx context.Context, tickets []domain.Ticket) error {
	t.store.tickets = append(t.store.tickets, tickets...)
	return nil
}

func (t *fakeTx) DecrementAvailableSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	e, ok := t.store.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.AvailableSeat < seats {
		return domain.ErrConflict
	}
	e.AvailableSeat -= seats
	return nil
}

func (t *fakeTx) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, ok := t.store.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (t *fakeTx) UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, proof *string) error {
	txn, ok := t.store.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	txn.PaymentStatus = status
	if proof != nil {
		txn.PaymentProof = proof
	}
	return nil
}

func (t *fakeTx) AppendOutbox(ctx context.Context, aggregateType string, aggregateID uuid.UUID, eventType string, payload []byte) error {
	t.store.outbox = append(t.store.outbox, eventType)
	return nil
}

func seedEvent(s *fakeStore, price int64, seats int) uuid.UUID {
	id := uuid.New()
	s.events[id] = &domain.Event{
		ID:            id,
		Name:          "gig",
		Type:          domain.EventPaid,
		Price:         price,
		AvailableSeat: seats,
	}
	if price == 0 {
		s.events[id].Type = domain.EventFree
	}
	return id
}

func seedPromotion(s *fakeStore, eventID uuid.UUID, code string, discount int64, limit, used int, promoType domain.PromotionType) uuid.UUID {
	id := uuid.New()
	s.promotions[id] = &domain.Promotion{
		ID:           id,
		EventID:      eventID,
		ReferralCode: code,
		Discount:     discount,
		Type:         promoType,
		UsageLimit:   limit,
		UsedCount:    used,
		IsActive:     true,
	}
	return id
}

func newTestService(s *fakeStore) *ticketing.Service {
	return ticketing.NewService(s, observability.NewLogger(), nil, nil)
}

func TestPurchase_FreeEvent(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 0, 10)
	svc := newTestService(store)

	txn, tickets, err := svc.Purchase(context.Background(), uuid.New(), eventID, 3, "IGNORED")
	require.NoError(t, err)

	assert.Equal(t, int64(0), txn.TotalAmount)
	assert.Equal(t, domain.PaymentCompleted, txn.PaymentStatus)
	assert.Nil(t, txn.ReferralCode)
	assert.Len(t, tickets, 3)
	assert.Equal(t, 7, store.events[eventID].AvailableSeat)
	assert.Equal(t, []string{"ticket.purchased"}, store.outbox)
}

func TestPurchase_PaidWithDiscount(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	promoID := seedPromotion(store, eventID, "SAVE20", 20, 10, 0, domain.PromotionDiscount)
	svc := newTestService(store)

	txn, tickets, err := svc.Purchase(context.Background(), uuid.New(), eventID, 2, "SAVE20")
	require.NoError(t, err)

	assert.Equal(t, int64(160), txn.TotalAmount)
	assert.Equal(t, int64(40), txn.Discount)
	assert.Equal(t, domain.PaymentPending, txn.PaymentStatus)
	require.NotNil(t, txn.ReferralCode)
	assert.Equal(t, "SAVE20", *txn.ReferralCode)
	assert.Len(t, tickets, 2)
	assert.Equal(t, 2, store.promotions[promoID].UsedCount)
	for _, tk := range tickets {
		assert.Equal(t, txn.ID, tk.TransactionID)
		assert.Equal(t, eventID, tk.EventID)
	}
}

func TestPurchase_ReferralPromotionTracksUsageWithoutDiscount(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	promoID := seedPromotion(store, eventID, "FRIEND", 20, 10, 0, domain.PromotionReferral)
	svc := newTestService(store)

	txn, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 2, "FRIEND")
	require.NoError(t, err)

	assert.Equal(t, int64(200), txn.TotalAmount)
	assert.Equal(t, int64(0), txn.Discount)
	assert.Equal(t, 2, store.promotions[promoID].UsedCount)
}

func TestPurchase_InvalidSeatCount(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	for _, seats := range []int{0, -1} {
		_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, seats, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestPurchase_EventNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, _, err := svc.Purchase(context.Background(), uuid.New(), uuid.New(), 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchase_DuplicatePurchase(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)
	userID := uuid.New()

	_, _, err := svc.Purchase(context.Background(), userID, eventID, 1, "")
	require.NoError(t, err)

	_, _, err = svc.Purchase(context.Background(), userID, eventID, 1, "")
	assert.ErrorIs(t, err, domain.ErrDuplicatePurchase)
	assert.Equal(t, 9, store.events[eventID].AvailableSeat)
}

func TestPurchase_InsufficientSeats(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 2)
	svc := newTestService(store)

	_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 3, "")

	var insufficient *domain.InsufficientSeatsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 2, store.events[eventID].AvailableSeat)
	assert.Empty(t, store.tickets)
	assert.Empty(t, store.transactions)
}

func TestPurchase_InvalidPromoCode(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "NOSUCH")
	assert.ErrorIs(t, err, domain.ErrInvalidPromotion)
}

func TestPurchase_PromoFromAnotherEvent(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	otherEvent := seedEvent(store, 100, 10)
	seedPromotion(store, otherEvent, "OTHER", 10, 10, 0, domain.PromotionDiscount)
	svc := newTestService(store)

	_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "OTHER")
	assert.ErrorIs(t, err, domain.ErrInvalidPromotion)
}

func TestPurchase_PromotionLimitExceeded(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 20)
	promoID := seedPromotion(store, eventID, "ALMOST", 10, 10, 8, domain.PromotionDiscount)
	svc := newTestService(store)

	_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 3, "ALMOST")
	assert.ErrorIs(t, err, domain.ErrPromotionLimitExceeded)
	assert.Equal(t, 8, store.promotions[promoID].UsedCount)
	assert.Equal(t, 20, store.events[eventID].AvailableSeat)

	// 8 + 2 fits exactly.
	txn, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 2, "ALMOST")
	require.NoError(t, err)
	assert.Equal(t, int64(180), txn.TotalAmount)
	assert.Equal(t, 10, store.promotions[promoID].UsedCount)
}

func TestPurchase_RetriesSerializationConflicts(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	store.failures = 2
	svc := newTestService(store)

	txn, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), txn.TotalAmount)
}

func TestPurchase_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	store.failures = 3
	svc := newTestService(store)

	_, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrSerializationFailure)
}

func TestUploadPaymentProof(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	txn, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "")
	require.NoError(t, err)

	updated, err := svc.UploadPaymentProof(context.Background(), txn.ID, "uploads/proof.png")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentVerification, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentProof)
	assert.Equal(t, "uploads/proof.png", *updated.PaymentProof)

	// Replacing the proof while awaiting verification is allowed.
	updated, err = svc.UploadPaymentProof(context.Background(), txn.ID, "uploads/proof2.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/proof2.png", *updated.PaymentProof)
}

func TestUploadPaymentProof_MissingProof(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.UploadPaymentProof(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrMissingProof)
}

func TestUploadPaymentProof_UnknownTransaction(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.UploadPaymentProof(context.Background(), uuid.New(), "uploads/proof.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmPayment(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	txn, _, err := svc.Purchase(context.Background(), uuid.New(), eventID, 1, "")
	require.NoError(t, err)

	// PENDING cannot be confirmed before a proof arrives.
	_, err = svc.ConfirmPayment(context.Background(), txn.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentState)

	_, err = svc.UploadPaymentProof(context.Background(), txn.ID, "uploads/proof.png")
	require.NoError(t, err)

	confirmed, err := svc.ConfirmPayment(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, confirmed.PaymentStatus)

	// COMPLETED is terminal.
	_, err = svc.ConfirmPayment(context.Background(), txn.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentState)
	_, err = svc.UploadPaymentProof(context.Background(), txn.ID, "uploads/late.png")
	assert.ErrorIs(t, err, domain.ErrPaymentState)
}

func TestCreatePromotion(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	promo, err := svc.CreatePromotion(context.Background(), domain.Promotion{
		EventID:      eventID,
		Name:         "launch",
		ReferralCode: "LAUNCH",
		Discount:     15,
		Type:         domain.PromotionDiscount,
		UsageLimit:   100,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, promo.ID)
	assert.Equal(t, 0, promo.UsedCount)

	// One promotion per event.
	_, err = svc.CreatePromotion(context.Background(), domain.Promotion{
		EventID:      eventID,
		ReferralCode: "SECOND",
		Discount:     10,
		Type:         domain.PromotionDiscount,
		UsageLimit:   10,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePromotion)
}

func TestCreatePromotion_Validation(t *testing.T) {
	store := newFakeStore()
	eventID := seedEvent(store, 100, 10)
	svc := newTestService(store)

	cases := []domain.Promotion{
		{EventID: eventID, ReferralCode: "", UsageLimit: 10, Discount: 5},
		{EventID: eventID, ReferralCode: "X", UsageLimit: 0, Discount: 5},
		{EventID: eventID, ReferralCode: "X", UsageLimit: 10, Discount: -1},
	}
	for _, promo := range cases {
		_, err := svc.CreatePromotion(context.Background(), promo)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	_, err := svc.CreatePromotion(context.Background(), domain.Promotion{
		EventID:      uuid.New(),
		ReferralCode: "X",
		UsageLimit:   10,
		Discount:     5,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
