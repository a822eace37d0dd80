package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func (r *Repository) CreateRating(ctx context.Context, rt domain.Rating) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ratings (id, event_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rt.ID, rt.EventID, rt.UserID, rt.Rating, rt.Comment, rt.CreatedAt)
	return mapError(err)
}

func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, rating int, comment *string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE ratings SET rating = $2, comment = $3 WHERE id = $1
	`, id, rating, comment)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteRating(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, `DELETE FROM ratings WHERE id = $1`, id)
}

func (r *Repository) ListEventRatings(ctx context.Context, eventID uuid.UUID) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, user_id, rating, comment, created_at
		FROM ratings WHERE event_id = $1 ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.ID, &rt.EventID, &rt.UserID, &rt.Rating, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
