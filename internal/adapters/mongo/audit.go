package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger appends purchase and payment lifecycle events to an audit
// collection. The relational store stays the source of truth; this trail is
// for investigation only.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    uuid.UUID `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) LogPurchase(ctx context.Context, txn domain.Transaction, seatCount int) error {
	data := map[string]interface{}{
		"transaction_id": txn.ID,
		"event_id":       txn.EventID,
		"seat_count":     seatCount,
		"total_amount":   txn.TotalAmount,
		"discount":       txn.Discount,
		"payment_status": txn.PaymentStatus,
	}
	return a.LogEvent(ctx, "ticket.purchased", txn.UserID, data)
}

func (a *AuditLogger) LogPaymentStatus(ctx context.Context, txn domain.Transaction) error {
	data := map[string]interface{}{
		"transaction_id": txn.ID,
		"event_id":       txn.EventID,
		"payment_status": txn.PaymentStatus,
	}
	return a.LogEvent(ctx, "payment.status", txn.UserID, data)
}
