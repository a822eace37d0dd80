package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

// pgTx implements ticketing.Tx on top of one open pgx transaction. The
// ForUpdate reads take row locks so concurrent purchasers of the same event
// or promotion serialize on the contended rows.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	var e domain.Event
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, description, type, price, start_date, available_seat,
		       organizer_id, category_id, location_id, created_at
		FROM events WHERE id = $1 FOR UPDATE
	`, eventID).Scan(&e.ID, &e.Name, &e.Description, &e.Type, &e.Price, &e.StartDate,
		&e.AvailableSeat, &e.OrganizerID, &e.CategoryID, &e.LocationID, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *pgTx) UserHasTicket(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var held bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1 AND user_id = $2)
	`, eventID, userID).Scan(&held)
	return held, err
}

func (t *pgTx) GetPromotionForUpdate(ctx context.Context, referralCode string, eventID uuid.UUID) (*domain.Promotion, error) {
	var p domain.Promotion
	err := t.tx.QueryRow(ctx, `
		SELECT id, event_id, name, referral_code, discount, type, usage_limit, used_count, is_active, created_at
		FROM promotions
		WHERE referral_code = $1 AND event_id = $2 AND is_active
		FOR UPDATE
	`, referralCode, eventID).Scan(&p.ID, &p.EventID, &p.Name, &p.ReferralCode, &p.Discount,
		&p.Type, &p.UsageLimit, &p.UsedCount, &p.IsActive, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) EventHasPromotion(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM promotions WHERE event_id = $1)
	`, eventID).Scan(&exists)
	return exists, err
}

func (t *pgTx) AddPromotionUsage(ctx context.Context, promotionID uuid.UUID, seats int) error {
	result, err := t.tx.Exec(ctx, `
		UPDATE promotions SET used_count = used_count + $2
		WHERE id = $1 AND used_count + $2 <= usage_limit
	`, promotionID, seats)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPromotionLimitExceeded
	}
	return nil
}

func (t *pgTx) CreatePromotion(ctx context.Context, p domain.Promotion) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO promotions (id, event_id, name, referral_code, discount, type, usage_limit, used_count, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.EventID, p.Name, p.ReferralCode, p.Discount, p.Type, p.UsageLimit, p.UsedCount, p.IsActive, p.CreatedAt)
	return err
}

func (t *pgTx) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, event_id, total_amount, discount, referral_code, promotion_id, payment_status, payment_proof, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, txn.ID, txn.UserID, txn.EventID, txn.TotalAmount, txn.Discount,
		txn.ReferralCode, txn.PromotionID, txn.PaymentStatus, txn.PaymentProof, txn.CreatedAt)
	return err
}

// CreateTickets bulk-inserts one row per seat via COPY. All tickets of a
// purchase share the transaction id.
func (t *pgTx) CreateTickets(ctx context.Context, tickets []domain.Ticket) error {
	rows := make([][]interface{}, len(tickets))
	for i, tk := range tickets {
		rows[i] = []interface{}{tk.ID, tk.EventID, tk.TransactionID, tk.UserID, tk.CreatedAt}
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"tickets"},
		[]string{"id", "event_id", "transaction_id", "user_id", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (t *pgTx) DecrementAvailableSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	result, err := t.tx.Exec(ctx, `
		UPDATE events SET available_seat = available_seat - $2
		WHERE id = $1 AND available_seat >= $2
	`, eventID, seats)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (t *pgTx) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, event_id, total_amount, discount, referral_code, promotion_id, payment_status, payment_proof, created_at
		FROM transactions WHERE id = $1 FOR UPDATE
	`, id).Scan(&txn.ID, &txn.UserID, &txn.EventID, &txn.TotalAmount, &txn.Discount,
		&txn.ReferralCode, &txn.PromotionID, &txn.PaymentStatus, &txn.PaymentProof, &txn.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (t *pgTx) UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, proof *string) error {
	var err error
	if proof != nil {
		_, err = t.tx.Exec(ctx, `
			UPDATE transactions SET payment_status = $2, payment_proof = $3 WHERE id = $1
		`, id, status, *proof)
	} else {
		_, err = t.tx.Exec(ctx, `
			UPDATE transactions SET payment_status = $2 WHERE id = $1
		`, id, status)
	}
	return err
}

func (t *pgTx) AppendOutbox(ctx context.Context, aggregateType string, aggregateID uuid.UUID, eventType string, payload []byte) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, 'NEW', $6)
	`, uuid.New(), aggregateType, aggregateID, eventType, payload, uuid.New().String())
	return err
}
