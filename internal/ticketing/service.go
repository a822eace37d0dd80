package ticketing

import (
	"context"

	"github.com/tixgate/event-ticketing-backend/internal/observability"
)

const purchaseAttempts = 3

// Service composes the purchase orchestrator, the promotion engine and the
// payment status tracker on top of an injected transactional store.
type Service struct {
	store  Store
	logger observability.Logger
	bus    Bus
	audit  Audit
}

func NewService(store Store, logger observability.Logger, bus Bus, audit Audit) *Service {
	return &Service{store: store, logger: logger, bus: bus, audit: audit}
}

func (s *Service) publish(ctx context.Context, key string, body []byte) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(ctx, key, body); err != nil {
		s.logger.WithField("routing_key", key).Error("publish failed: ", err)
	}
}
