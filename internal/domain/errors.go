package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")

	ErrDuplicatePurchase      = errors.New("ticket already purchased for this event")
	ErrInvalidPromotion       = errors.New("invalid or inactive promotion code")
	ErrPromotionLimitExceeded = errors.New("promotion usage limit exceeded")
	ErrDuplicatePromotion     = errors.New("promotion already exists for this event")
	ErrMissingProof           = errors.New("payment proof file is required")
	ErrPaymentState           = errors.New("invalid payment status transition")
)

// InsufficientSeatsError reports the seats actually remaining when a purchase
// asks for more than the event has left.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d seats are available", e.Available)
}
