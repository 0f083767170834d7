package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the order aggregate
type Repository interface {
	// FindByID finds an order by its local ID, returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an order by its order number
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// FindByExternalCrmID finds an order by its CRM-assigned ID
	FindByExternalCrmID(ctx context.Context, externalID string) (*Order, error)

	// FindByTransactionID finds an order by its gateway charge ID
	FindByTransactionID(ctx context.Context, transactionID string) (*Order, error)

	// FindBySourceID finds an order by its gateway source ID
	FindBySourceID(ctx context.Context, sourceID string) (*Order, error)

	// Create persists a new order
	Create(ctx context.Context, o *Order) error

	// Save persists order changes with an optimistic version check.
	// Returns shared.ErrConcurrencyConflict when the stored version moved.
	Save(ctx context.Context, o *Order) error
}

// RefundRepository defines persistence operations for refund records
type RefundRepository interface {
	// FindByGatewayRefundID finds a refund by the gateway refund ID
	FindByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*RefundRecord, error)

	// FindByOrder lists refunds recorded against an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]RefundRecord, error)

	// Save creates or updates a refund record
	Save(ctx context.Context, record *RefundRecord) error
}
