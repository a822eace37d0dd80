package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, int64(200), domain.TotalAmount(100, 0, 2))
	assert.Equal(t, int64(160), domain.TotalAmount(100, 20, 2))
	assert.Equal(t, int64(0), domain.TotalAmount(100, 100, 3))
	// A discount above the price clamps at zero instead of going negative.
	assert.Equal(t, int64(0), domain.TotalAmount(100, 150, 2))
}

func TestTicketsFor(t *testing.T) {
	txn := domain.NewTransaction(uuid.New(), uuid.New(), 300, 0, domain.PaymentPending)

	tickets := domain.TicketsFor(txn, 3)
	assert.Len(t, tickets, 3)

	seen := map[uuid.UUID]bool{}
	for _, tk := range tickets {
		assert.Equal(t, txn.ID, tk.TransactionID)
		assert.Equal(t, txn.EventID, tk.EventID)
		assert.Equal(t, txn.UserID, tk.UserID)
		assert.False(t, seen[tk.ID], "ticket ids must be unique")
		seen[tk.ID] = true
	}
}
