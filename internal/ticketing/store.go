package ticketing

import (
	"context"

	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

// Store is the transactional boundary of the ticketing core. WithTx must run
// fn inside a single unit of work with serializable-or-equivalent isolation;
// a commit-time conflict surfaces as domain.ErrSerializationFailure.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the writes and locked reads available inside one unit of work.
// The ForUpdate reads must prevent concurrent transactions from observing the
// same seat or usage counts and both committing.
type Tx interface {
	GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	UserHasTicket(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	GetPromotionForUpdate(ctx context.Context, referralCode string, eventID uuid.UUID) (*domain.Promotion, error)
	EventHasPromotion(ctx context.Context, eventID uuid.UUID) (bool, error)
	AddPromotionUsage(ctx context.Context, promotionID uuid.UUID, seats int) error
	CreatePromotion(ctx context.Context, promo domain.Promotion) error
	CreateTransaction(ctx context.Context, txn domain.Transaction) error
	CreateTickets(ctx context.Context, tickets []domain.Ticket) error
	DecrementAvailableSeats(ctx context.Context, eventID uuid.UUID, seats int) error
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, proof *string) error
	AppendOutbox(ctx context.Context, aggregateType string, aggregateID uuid.UUID, eventType string, payload []byte) error
}

// Bus publishes lifecycle events to the message broker after commit.
type Bus interface {
	PublishJSON(ctx context.Context, key string, body []byte) error
}

// Audit records purchase and payment events on the audit trail. Failures are
// logged, never propagated to the caller.
type Audit interface {
	LogPurchase(ctx context.Context, txn domain.Transaction, seatCount int) error
	LogPaymentStatus(ctx context.Context, txn domain.Transaction) error
}
