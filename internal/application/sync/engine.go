package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderSyncEngine pushes local orders and status changes to the CRM and
// applies inbound CRM status updates. CRM failures are recorded on the order
// (sync state + audit note) and never roll back local order state.
type OrderSyncEngine struct {
	orders   order.Repository
	crm      integration.CrmClient
	statuses *integration.StatusMapper
	mappings integration.ProductMappingRepository
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewOrderSyncEngine creates a new OrderSyncEngine
func NewOrderSyncEngine(
	orders order.Repository,
	crm integration.CrmClient,
	statuses *integration.StatusMapper,
	mappings integration.ProductMappingRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *OrderSyncEngine {
	return &OrderSyncEngine{
		orders:   orders,
		crm:      crm,
		statuses: statuses,
		mappings: mappings,
		events:   events,
		logger:   logger,
	}
}

// SyncOrder creates the order in the CRM and records the CRM-assigned ID.
// Already-synced orders are a no-op. A CRM failure marks the order
// sync_failed with an audit note and returns nil; the local order stands.
func (e *OrderSyncEngine) SyncOrder(ctx context.Context, orderID uuid.UUID) error {
	o, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return order.ErrOrderNotFound
	}
	if o.IsSynced() {
		return nil
	}

	draft, err := e.buildDraft(ctx, o)
	if err != nil {
		return err
	}
	if len(draft.Items) == 0 {
		e.logger.Warn("no order items mapped to CRM catalog, sync skipped",
			zap.String("order_id", o.ID.String()),
			zap.String("number", o.Number))
		o.MarkSyncFailed()
		o.AddNote("CRM sync skipped: no items mapped to CRM catalog")
		return e.save(ctx, o)
	}

	externalID, crmErr := e.crm.CreateOrder(ctx, draft)
	if crmErr != nil {
		e.logger.Error("CRM order creation failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(crmErr))
		o.MarkSyncFailed()
		o.AddNote(fmt.Sprintf("CRM sync failed: %s", crmErr.Error()))
		return e.save(ctx, o)
	}

	if err := o.SetExternalCrmID(externalID); err != nil {
		return err
	}
	o.MarkSynced()
	o.AddNote(fmt.Sprintf("synced to CRM as order %s", externalID))
	o.AddDomainEvent(order.NewSyncedEvent(o.ID, externalID))

	e.logger.Info("order synced to CRM",
		zap.String("order_id", o.ID.String()),
		zap.String("external_crm_id", externalID))
	return e.save(ctx, o)
}

// PushStatus pushes the order's current status to the CRM.
// Orders without a CRM counterpart and statuses without an external mapping
// are silent no-ops. A CRM failure marks the order sync_failed but never
// reverts the local status.
func (e *OrderSyncEngine) PushStatus(ctx context.Context, orderID uuid.UUID) error {
	o, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return order.ErrOrderNotFound
	}
	if !o.IsSynced() {
		return nil
	}

	external, ok := e.statuses.ToExternal(o.Status)
	if !ok {
		e.logger.Debug("no external mapping for status, push skipped",
			zap.String("order_id", o.ID.String()),
			zap.String("status", o.Status.String()))
		return nil
	}

	o.BeginStatusPush()
	if crmErr := e.crm.UpdateStatus(ctx, o.ExternalCrmID, external); crmErr != nil {
		e.logger.Error("CRM status push failed",
			zap.String("order_id", o.ID.String()),
			zap.String("external_status", external),
			zap.Error(crmErr))
		o.MarkSyncFailed()
		o.AddNote(fmt.Sprintf("CRM status push failed (%s): %s", external, crmErr.Error()))
		return e.save(ctx, o)
	}

	o.MarkSynced()
	o.AddNote(fmt.Sprintf("status %s pushed to CRM as %s", o.Status, external))
	return e.save(ctx, o)
}

// RetrySync retries a failed sync for the order: orders without a CRM
// counterpart are created, synced orders get their current status re-pushed.
func (e *OrderSyncEngine) RetrySync(ctx context.Context, orderID uuid.UUID) error {
	o, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return order.ErrOrderNotFound
	}
	if !o.IsSynced() {
		return e.SyncOrder(ctx, orderID)
	}
	return e.PushStatus(ctx, orderID)
}

// ApplyCrmStatus applies a CRM-originated status change to the local order.
// Unmapped external statuses are ignored. Replaying the same status is a
// no-op without a duplicate audit note.
func (e *OrderSyncEngine) ApplyCrmStatus(ctx context.Context, externalID, externalStatus string) error {
	o, err := e.orders.FindByExternalCrmID(ctx, externalID)
	if err != nil {
		return err
	}
	if o == nil {
		return order.ErrOrderNotFound
	}

	local, ok := e.statuses.ToLocal(externalStatus)
	if !ok {
		e.logger.Debug("no local mapping for CRM status, webhook ignored",
			zap.String("external_crm_id", externalID),
			zap.String("external_status", externalStatus))
		return nil
	}

	changed, err := o.ApplyExternalStatus(local)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	o.AddNote(fmt.Sprintf("status set to %s via CRM webhook", local))
	e.logger.Info("applied CRM status to order",
		zap.String("order_id", o.ID.String()),
		zap.String("status", local.String()))
	return e.save(ctx, o)
}

// buildDraft maps the order's billing contact and lines into a CRM order
// draft. Lines without a product mapping are excluded from the cart.
func (e *OrderSyncEngine) buildDraft(ctx context.Context, o *order.Order) (integration.OrderDraft, error) {
	draft := integration.OrderDraft{
		FirstName: o.Billing.FirstName,
		LastName:  o.Billing.LastName,
		Phone:     o.Billing.Phone,
		Email:     o.Billing.Email,
	}
	for _, item := range o.Items {
		mapping, err := e.mappings.FindByProductRef(ctx, item.ProductRef)
		if err != nil {
			return integration.OrderDraft{}, err
		}
		if mapping == nil {
			e.logger.Debug("product unmapped, excluded from CRM cart",
				zap.String("order_id", o.ID.String()),
				zap.String("product_ref", item.ProductRef))
			continue
		}
		draft.Items = append(draft.Items, integration.CartItem{
			ItemID:     mapping.CrmItemID,
			Quantity:   item.Quantity,
			PriceMinor: item.UnitPriceMinor,
		})
	}
	return draft, nil
}

func (e *OrderSyncEngine) save(ctx context.Context, o *order.Order) error {
	if err := e.orders.Save(ctx, o); err != nil {
		return err
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		if err := e.events.Publish(ctx, events...); err != nil {
			e.logger.Error("failed to publish domain events",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
		o.ClearDomainEvents()
	}
	return nil
}
