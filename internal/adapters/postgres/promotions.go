package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func (r *Repository) GetPromotion(ctx context.Context, id uuid.UUID) (*domain.Promotion, error) {
	var p domain.Promotion
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, name, referral_code, discount, type, usage_limit, used_count, is_active, created_at
		FROM promotions WHERE id = $1
	`, id).Scan(&p.ID, &p.EventID, &p.Name, &p.ReferralCode, &p.Discount,
		&p.Type, &p.UsageLimit, &p.UsedCount, &p.IsActive, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListActivePromotions(ctx context.Context, limit, offset int) ([]domain.Promotion, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM promotions WHERE is_active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, name, referral_code, discount, type, usage_limit, used_count, is_active, created_at
		FROM promotions WHERE is_active ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.ReferralCode, &p.Discount,
			&p.Type, &p.UsageLimit, &p.UsedCount, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		promos = append(promos, p)
	}
	return promos, total, rows.Err()
}

// UpdatePromotion changes the mutable fields only; used_count is owned by the
// purchase path.
func (r *Repository) UpdatePromotion(ctx context.Context, id uuid.UUID, name string, discount int64, isActive bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE promotions SET name = $2, discount = $3, is_active = $4 WHERE id = $1
	`, id, name, discount, isActive)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, `DELETE FROM promotions WHERE id = $1`, id)
}
