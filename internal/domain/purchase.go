package domain

import (
	"time"

	"github.com/google/uuid"
)

// TotalAmount computes the price of seatCount seats after a per-seat
// discount, clamped at zero so a discount larger than the price never
// produces a negative total.
func TotalAmount(price, discountPerSeat int64, seatCount int) int64 {
	total := (price - discountPerSeat) * int64(seatCount)
	if total < 0 {
		return 0
	}
	return total
}

func NewTransaction(userID, eventID uuid.UUID, totalAmount, discount int64, status PaymentStatus) Transaction {
	return Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		EventID:       eventID,
		TotalAmount:   totalAmount,
		Discount:      discount,
		PaymentStatus: status,
		CreatedAt:     time.Now().UTC(),
	}
}

// TicketsFor issues one ticket per purchased seat, all bound to the given
// transaction.
func TicketsFor(txn Transaction, seatCount int) []Ticket {
	tickets := make([]Ticket, seatCount)
	for i := range tickets {
		tickets[i] = Ticket{
			ID:            uuid.New(),
			EventID:       txn.EventID,
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			CreatedAt:     txn.CreatedAt,
		}
	}
	return tickets
}
