package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) []byte {
	data, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
	return data
}

// writeError maps domain sentinels onto HTTP statuses. Conflicting state,
// including a purchase that exhausted its retries, surfaces as 409 so clients
// know a retry with the same input may succeed.
func writeError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientSeatsError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidPromotion),
		errors.Is(err, domain.ErrMissingProof):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &insufficient),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicatePurchase),
		errors.Is(err, domain.ErrDuplicatePromotion),
		errors.Is(err, domain.ErrPromotionLimitExceeded),
		errors.Is(err, domain.ErrPaymentState),
		errors.Is(err, domain.ErrSerializationFailure):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
