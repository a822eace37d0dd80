package ticketing

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

// UploadPaymentProof attaches an uploaded proof file to a transaction and
// moves it to VERIFICATION. Re-uploading while already in VERIFICATION
// replaces the proof; completed transactions (including free purchases,
// created COMPLETED) reject the upload.
func (s *Service) UploadPaymentProof(ctx context.Context, transactionID uuid.UUID, proofPath string) (*domain.Transaction, error) {
	if proofPath == "" {
		return nil, domain.ErrMissingProof
	}
	txn, err := s.transition(ctx, transactionID, domain.PaymentVerification, &proofPath,
		domain.PaymentPending, domain.PaymentVerification)
	if err != nil {
		return nil, err
	}
	s.notifyPayment(ctx, "payment.verification", txn)
	return txn, nil
}

// ConfirmPayment is the administrative confirmation that completes a
// transaction. Only transactions awaiting verification can be confirmed;
// COMPLETED is terminal.
func (s *Service) ConfirmPayment(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.transition(ctx, transactionID, domain.PaymentCompleted, nil,
		domain.PaymentVerification)
	if err != nil {
		return nil, err
	}
	s.notifyPayment(ctx, "payment.completed", txn)
	return txn, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to domain.PaymentStatus, proof *string, from ...domain.PaymentStatus) (*domain.Transaction, error) {
	var updated domain.Transaction
	err := s.store.WithTx(ctx, func(tx Tx) error {
		txn, err := tx.GetTransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		allowed := false
		for _, st := range from {
			if txn.PaymentStatus == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return domain.ErrPaymentState
		}
		if err := tx.UpdatePayment(ctx, id, to, proof); err != nil {
			return err
		}
		updated = *txn
		updated.PaymentStatus = to
		if proof != nil {
			updated.PaymentProof = proof
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		if err := s.audit.LogPaymentStatus(ctx, updated); err != nil {
			s.logger.Error("payment audit failed: ", err)
		}
	}
	return &updated, nil
}

func (s *Service) notifyPayment(ctx context.Context, key string, txn *domain.Transaction) {
	payload, _ := json.Marshal(map[string]interface{}{
		"transaction_id": txn.ID,
		"event_id":       txn.EventID,
		"user_id":        txn.UserID,
		"payment_status": txn.PaymentStatus,
	})
	s.publish(ctx, key, payload)
}
