package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apppayment "github.com/storesync/backend/internal/application/payment"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/payment"
)

// SyncService is the order sync surface consumed by handlers
type SyncService interface {
	SyncOrder(ctx context.Context, orderID uuid.UUID) error
	RetrySync(ctx context.Context, orderID uuid.UUID) error
	ApplyCrmStatus(ctx context.Context, externalID, externalStatus string) error
}

// PaymentService is the payment reconciliation surface consumed by handlers
type PaymentService interface {
	ChargeCard(ctx context.Context, orderID uuid.UUID, cardToken string) (*apppayment.ChargeResult, error)
	CreateSource(ctx context.Context, orderID uuid.UUID, method payment.Method, installmentTerms int) (*apppayment.SourceResult, error)
	PollSource(ctx context.Context, sourceID string) error
	HandleGatewayEvent(ctx context.Context, event apppayment.GatewayEvent) error
	Refund(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, reason string) (*order.RefundRecord, error)
}
