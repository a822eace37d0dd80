package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/tixgate/event-ticketing-backend/internal/adapters/mongo"
	"github.com/tixgate/event-ticketing-backend/internal/adapters/rabbit"
	"github.com/tixgate/event-ticketing-backend/internal/config"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The audit consumer mirrors every broker event into the mongo audit trail,
// including the ones published by the outbox rather than the API process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database("tix"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, "audit.q", "#")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	go func() {
		for d := range deliveries {
			if err := record(ctx, audit, d); err != nil {
				logger.WithField("routing_key", d.RoutingKey).Error("audit record failed: ", err)
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()
	logger.Info("Audit consumer started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown audit consumer")
}

func record(ctx context.Context, audit *mongoadapter.AuditLogger, d amqp.Delivery) error {
	var data map[string]interface{}
	if err := json.Unmarshal(d.Body, &data); err != nil {
		data = map[string]interface{}{"raw": string(d.Body)}
	}

	userID := uuid.Nil
	if raw, ok := data["user_id"].(string); ok {
		if parsed, err := uuid.Parse(raw); err == nil {
			userID = parsed
		}
	}

	return audit.LogEvent(ctx, d.RoutingKey, userID, data)
}
