package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
)

// RefundStatus represents the lifecycle of a refund record
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
)

// IsValid checks if the refund status is a known value
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusSucceeded, RefundStatusFailed:
		return true
	}
	return false
}

// String returns the string representation
func (s RefundStatus) String() string {
	return string(s)
}

// RefundRecord is a local record of a refund issued against an order,
// created either from a gateway webhook or a manual refund request.
type RefundRecord struct {
	shared.BaseEntity
	OrderID         uuid.UUID
	GatewayRefundID string
	ChargeID        string
	Amount          decimal.Decimal
	Currency        string
	Status          RefundStatus
	Reason          string
	RequestedAt     time.Time
}

// NewRefundRecord creates a refund record in the pending state
func NewRefundRecord(orderID uuid.UUID, chargeID string, amount decimal.Decimal, currency, reason string) *RefundRecord {
	return &RefundRecord{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		ChargeID:    chargeID,
		Amount:      amount,
		Currency:    currency,
		Status:      RefundStatusPending,
		Reason:      reason,
		RequestedAt: time.Now(),
	}
}

// MarkSucceeded records the gateway refund ID and completes the record
func (r *RefundRecord) MarkSucceeded(gatewayRefundID string) {
	r.GatewayRefundID = gatewayRefundID
	r.Status = RefundStatusSucceeded
	r.UpdatedAt = time.Now()
}

// MarkFailed records a refund failure
func (r *RefundRecord) MarkFailed(reason string) {
	r.Status = RefundStatusFailed
	r.Reason = reason
	r.UpdatedAt = time.Now()
}
