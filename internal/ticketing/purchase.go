package ticketing

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
)

// Purchase buys seatCount tickets for an event, optionally redeeming a
// promotion code. The availability check, promotion consumption, transaction
// and ticket creation and the seat decrement commit as one unit of work;
// serialization conflicts are retried up to purchaseAttempts times before
// being surfaced as domain.ErrConflict.
func (s *Service) Purchase(ctx context.Context, userID, eventID uuid.UUID, seatCount int, promoCode string) (*domain.Transaction, []domain.Ticket, error) {
	if seatCount <= 0 {
		return nil, nil, errors.Wrap(domain.ErrInvalidInput, "seat count must be a positive integer")
	}

	var (
		txn     domain.Transaction
		tickets []domain.Ticket
	)

	for attempt := 1; attempt <= purchaseAttempts; attempt++ {
		err := s.store.WithTx(ctx, func(tx Tx) error {
			event, err := tx.GetEventForUpdate(ctx, eventID)
			if err != nil {
				return err
			}

			held, err := tx.UserHasTicket(ctx, userID, eventID)
			if err != nil {
				return err
			}
			if held {
				return domain.ErrDuplicatePurchase
			}

			if event.AvailableSeat < seatCount {
				return &domain.InsufficientSeatsError{Available: event.AvailableSeat}
			}

			if event.Price == 0 {
				// Free events skip promotions and the payment machine.
				txn = domain.NewTransaction(userID, eventID, 0, 0, domain.PaymentCompleted)
			} else {
				var discountPerSeat int64
				if promoCode != "" {
					promo, err := tx.GetPromotionForUpdate(ctx, promoCode, eventID)
					if errors.Is(err, domain.ErrNotFound) {
						return domain.ErrInvalidPromotion
					}
					if err != nil {
						return err
					}
					if promo.UsedCount+seatCount > promo.UsageLimit {
						return domain.ErrPromotionLimitExceeded
					}
					if promo.Type == domain.PromotionDiscount {
						discountPerSeat = promo.Discount
					}
					if err := tx.AddPromotionUsage(ctx, promo.ID, seatCount); err != nil {
						return err
					}
					txn = domain.NewTransaction(userID, eventID,
						domain.TotalAmount(event.Price, discountPerSeat, seatCount),
						discountPerSeat*int64(seatCount), domain.PaymentPending)
					code := promoCode
					txn.ReferralCode = &code
					promoID := promo.ID
					txn.PromotionID = &promoID
				} else {
					txn = domain.NewTransaction(userID, eventID,
						event.Price*int64(seatCount), 0, domain.PaymentPending)
				}
			}

			tickets = domain.TicketsFor(txn, seatCount)

			if err := tx.CreateTransaction(ctx, txn); err != nil {
				return err
			}
			if err := tx.CreateTickets(ctx, tickets); err != nil {
				return err
			}
			if err := tx.DecrementAvailableSeats(ctx, eventID, seatCount); err != nil {
				return err
			}

			payload, _ := json.Marshal(map[string]interface{}{
				"transaction_id": txn.ID,
				"event_id":       eventID,
				"user_id":        userID,
				"seat_count":     seatCount,
				"total_amount":   txn.TotalAmount,
				"payment_status": txn.PaymentStatus,
			})
			return tx.AppendOutbox(ctx, "transaction", txn.ID, "ticket.purchased", payload)
		})
		if errors.Is(err, domain.ErrSerializationFailure) {
			observability.PurchaseRetries.Inc()
			s.logger.WithField("event_id", eventID).WithField("attempt", attempt).
				Warn("purchase serialization conflict, retrying")
			continue
		}
		if err != nil {
			observability.PurchasesTotal.WithLabelValues("rejected").Inc()
			return nil, nil, err
		}

		observability.PurchasesTotal.WithLabelValues("ok").Inc()
		if s.audit != nil {
			if err := s.audit.LogPurchase(ctx, txn, seatCount); err != nil {
				s.logger.Error("purchase audit failed: ", err)
			}
		}
		return &txn, tickets, nil
	}

	observability.PurchasesTotal.WithLabelValues("conflict").Inc()
	return nil, nil, errors.Wrapf(domain.ErrConflict, "purchase aborted after %d conflicting attempts", purchaseAttempts)
}
