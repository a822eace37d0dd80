package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tixgate/event-ticketing-backend/internal/adapters/postgres"
	"github.com/tixgate/event-ticketing-backend/internal/adapters/rabbit"
	"github.com/tixgate/event-ticketing-backend/internal/config"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := postgres.NewRepository(pool)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	rabbitPub, err := rabbit.NewPublisher(conn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	worker := NewReminderWorker(repo, rabbitPub, logger, cfg.ReminderAfter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(ctx, time.Minute)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown reminder worker")
}

// ReminderWorker nudges users whose paid purchases are still PENDING after
// the configured grace period. Each transaction is reminded at most once.
type ReminderWorker struct {
	repo      *postgres.Repository
	rabbitPub *rabbit.Publisher
	logger    observability.Logger
	after     time.Duration
}

func NewReminderWorker(repo *postgres.Repository, rabbitPub *rabbit.Publisher, logger observability.Logger, after time.Duration) *ReminderWorker {
	return &ReminderWorker{repo: repo, rabbitPub: rabbitPub, logger: logger, after: after}
}

func (w *ReminderWorker) Run(ctx context.Context, interval time.Duration) {
	w.logger.Info("Reminder worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cutoff := now.Add(-w.after)
			txns, err := w.repo.ListUnremindedPending(ctx, cutoff, 100)
			if err != nil {
				w.logger.Error("failed to list pending transactions: ", err)
				continue
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(8)
			for _, txn := range txns {
				txn := txn
				g.Go(func() error {
					if err := w.remindWithRetry(gctx, txn); err != nil {
						w.logger.WithField("transaction_id", txn.ID).
							Error("failed to send payment reminder: ", err)
					}
					return nil
				})
			}
			g.Wait()
		}
	}
}

func (w *ReminderWorker) remindWithRetry(ctx context.Context, txn domain.Transaction) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"transaction_id": txn.ID,
		"event_id":       txn.EventID,
		"user_id":        txn.UserID,
		"total_amount":   txn.TotalAmount,
	})

	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		err := w.rabbitPub.PublishJSON(ctx, "payment.reminder", payload)
		if err != nil {
			observability.RabbitPublishRetries.Inc()
			backoff := time.Duration(1<<i) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		// Another worker may have reminded concurrently; that is fine.
		if err := w.repo.MarkReminded(ctx, txn.ID, time.Now()); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	}
	return errors.Newf("gave up after %d publish attempts", maxRetries)
}
