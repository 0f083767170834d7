package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaidOrderHandler reacts to completed payments by syncing the order to the
// CRM. The idempotency store keeps a replayed paid event from triggering
// fulfillment twice even when the webhook and a poll race.
type PaidOrderHandler struct {
	engine *OrderSyncEngine
	idem   shared.IdempotencyStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewPaidOrderHandler creates a new PaidOrderHandler
func NewPaidOrderHandler(engine *OrderSyncEngine, idem shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *PaidOrderHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PaidOrderHandler{engine: engine, idem: idem, ttl: ttl, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaidOrderHandler) EventTypes() []string {
	return []string{order.EventTypePaid}
}

// Handle processes a paid event: unsynced orders are created in the CRM,
// synced orders get their new status pushed.
func (h *PaidOrderHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*order.PaidEvent)
	if !ok {
		return nil
	}

	key := fmt.Sprintf("fulfillment:%s", paid.TransactionID)
	fresh, err := h.idem.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		return err
	}
	if !fresh {
		h.logger.Debug("fulfillment already triggered, event skipped",
			zap.String("transaction_id", paid.TransactionID))
		return nil
	}

	if err := h.engine.RetrySync(ctx, paid.AggregateID()); err != nil {
		h.logger.Error("fulfillment sync failed",
			zap.String("order_id", paid.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

// Ensure PaidOrderHandler implements shared.EventHandler
var _ shared.EventHandler = (*PaidOrderHandler)(nil)
