package ticketing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

// CreatePromotion registers a discount code for an event. An event carries at
// most one promotion; a second attempt fails with ErrDuplicatePromotion. The
// existence check and the insert share one unit of work so two concurrent
// creations cannot both pass.
func (s *Service) CreatePromotion(ctx context.Context, promo domain.Promotion) (*domain.Promotion, error) {
	if promo.ReferralCode == "" || promo.UsageLimit <= 0 || promo.Discount < 0 {
		return nil, domain.ErrInvalidInput
	}

	promo.ID = uuid.New()
	promo.UsedCount = 0
	promo.CreatedAt = time.Now().UTC()

	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetEventForUpdate(ctx, promo.EventID); err != nil {
			return err
		}
		exists, err := tx.EventHasPromotion(ctx, promo.EventID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicatePromotion
		}
		return tx.CreatePromotion(ctx, promo)
	})
	if err != nil {
		return nil, err
	}
	return &promo, nil
}
