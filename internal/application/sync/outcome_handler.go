package sync

import (
	"context"

	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentOutcomeHandler pushes failed and refunded payment outcomes to the
// CRM so the remote order reflects the terminal local status. Orders without
// a CRM counterpart are skipped by the push itself.
type PaymentOutcomeHandler struct {
	engine *OrderSyncEngine
	logger *zap.Logger
}

// NewPaymentOutcomeHandler creates a new PaymentOutcomeHandler
func NewPaymentOutcomeHandler(engine *OrderSyncEngine, logger *zap.Logger) *PaymentOutcomeHandler {
	return &PaymentOutcomeHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentOutcomeHandler) EventTypes() []string {
	return []string{order.EventTypePaymentFailed, order.EventTypeRefunded}
}

// Handle pushes the order's current status to the CRM. Replays are absorbed
// downstream: an identical status push is a no-op in the sync engine.
func (h *PaymentOutcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch event.EventType() {
	case order.EventTypePaymentFailed, order.EventTypeRefunded:
	default:
		return nil
	}

	if err := h.engine.PushStatus(ctx, event.AggregateID()); err != nil {
		h.logger.Error("payment outcome status push failed",
			zap.String("order_id", event.AggregateID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	return nil
}

// Ensure PaymentOutcomeHandler implements shared.EventHandler
var _ shared.EventHandler = (*PaymentOutcomeHandler)(nil)
