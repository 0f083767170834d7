package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
)

// Event types for the order aggregate
const (
	EventTypePaid          = "order.paid"
	EventTypePaymentFailed = "order.payment_failed"
	EventTypeRefunded      = "order.refunded"
	EventTypeSynced        = "order.synced"
)

// AggregateTypeOrder identifies the order aggregate in events
const AggregateTypeOrder = "Order"

// PaidEvent is published when an order payment completes
type PaidEvent struct {
	shared.BaseDomainEvent
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// NewPaidEvent creates a new PaidEvent
func NewPaidEvent(orderID uuid.UUID, transactionID string, amount decimal.Decimal, currency string) *PaidEvent {
	return &PaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaid, AggregateTypeOrder, orderID),
		TransactionID:   transactionID,
		Amount:          amount,
		Currency:        currency,
	}
}

// PaymentFailedEvent is published when an order payment fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(orderID uuid.UUID, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypeOrder, orderID),
		Reason:          reason,
	}
}

// RefundedEvent is published when a refund is recorded against an order
type RefundedEvent struct {
	shared.BaseDomainEvent
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewRefundedEvent creates a new RefundedEvent
func NewRefundedEvent(orderID uuid.UUID, amount decimal.Decimal, currency string) *RefundedEvent {
	return &RefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefunded, AggregateTypeOrder, orderID),
		Amount:          amount,
		Currency:        currency,
	}
}

// SyncedEvent is published when an order is first synced to the CRM
type SyncedEvent struct {
	shared.BaseDomainEvent
	ExternalCrmID string `json:"external_crm_id"`
}

// NewSyncedEvent creates a new SyncedEvent
func NewSyncedEvent(orderID uuid.UUID, externalCrmID string) *SyncedEvent {
	return &SyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSynced, AggregateTypeOrder, orderID),
		ExternalCrmID:   externalCrmID,
	}
}
