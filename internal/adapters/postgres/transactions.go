package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

const txnColumns = `id, user_id, event_id, total_amount, discount, referral_code, promotion_id, payment_status, payment_proof, created_at`

func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *Repository) ListUserTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+txnColumns+` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	return txns, total, err
}

func (r *Repository) GetTransactionTickets(ctx context.Context, transactionID uuid.UUID) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, transaction_id, user_id, created_at
		FROM tickets WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.EventID, &t.TransactionID, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// ListUnremindedPending returns PENDING transactions created before the
// cutoff that have not yet received a payment reminder.
func (r *Repository) ListUnremindedPending(ctx context.Context, before time.Time, limit int) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+txnColumns+` FROM transactions
		WHERE payment_status = 'PENDING' AND created_at <= $1 AND reminded_at IS NULL
		ORDER BY created_at LIMIT $2
	`, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *Repository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE transactions SET reminded_at = $2 WHERE id = $1 AND reminded_at IS NULL
	`, id, at)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(&txn.ID, &txn.UserID, &txn.EventID, &txn.TotalAmount, &txn.Discount,
		&txn.ReferralCode, &txn.PromotionID, &txn.PaymentStatus, &txn.PaymentProof, &txn.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.EventID, &txn.TotalAmount, &txn.Discount,
			&txn.ReferralCode, &txn.PromotionID, &txn.PaymentStatus, &txn.PaymentProof, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
