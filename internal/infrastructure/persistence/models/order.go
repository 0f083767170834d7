package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/order"
)

// OrderModel is the persistence model for the order aggregate
type OrderModel struct {
	AggregateModel
	Number           string          `gorm:"uniqueIndex;not null"`
	Status           string          `gorm:"index;not null"`
	PaymentState     string          `gorm:"not null"`
	SyncState        string          `gorm:"index;not null"`
	ExternalCrmID    string          `gorm:"index"`
	TransactionID    string          `gorm:"index"`
	SourceID         string          `gorm:"index"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency         string          `gorm:"size:3;not null"`
	BillingFirstName string
	BillingLastName  string
	BillingPhone     string
	BillingEmail     string
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Notes            []OrderNoteModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a single order line
type OrderItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductRef     string    `gorm:"not null"`
	Quantity       int       `gorm:"not null"`
	UnitPriceMinor int64     `gorm:"not null"`
}

// TableName overrides the table name
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderNoteModel is an audit note recorded against an order
type OrderNoteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name
func (OrderNoteModel) TableName() string {
	return "order_notes"
}

// ToDomain converts the model to the domain aggregate
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		Number:        m.Number,
		Status:        order.Status(m.Status),
		PaymentState:  order.PaymentState(m.PaymentState),
		SyncState:     order.SyncState(m.SyncState),
		ExternalCrmID: m.ExternalCrmID,
		TransactionID: m.TransactionID,
		SourceID:      m.SourceID,
		Total:         m.Total,
		Currency:      m.Currency,
		Billing: order.BillingContact{
			FirstName: m.BillingFirstName,
			LastName:  m.BillingLastName,
			Phone:     m.BillingPhone,
			Email:     m.BillingEmail,
		},
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	o.Version = m.Version

	o.Items = make([]order.Item, len(m.Items))
	for i, item := range m.Items {
		o.Items[i] = order.Item{
			ProductRef:     item.ProductRef,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		}
	}

	o.Notes = make([]order.Note, len(m.Notes))
	for i, note := range m.Notes {
		o.Notes[i] = order.Note{Text: note.Text, CreatedAt: note.CreatedAt}
	}

	return o
}

// OrderModelFromDomain converts the domain aggregate to the persistence model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		Number:           o.Number,
		Status:           o.Status.String(),
		PaymentState:     o.PaymentState.String(),
		SyncState:        o.SyncState.String(),
		ExternalCrmID:    o.ExternalCrmID,
		TransactionID:    o.TransactionID,
		SourceID:         o.SourceID,
		Total:            o.Total,
		Currency:         o.Currency,
		BillingFirstName: o.Billing.FirstName,
		BillingLastName:  o.Billing.LastName,
		BillingPhone:     o.Billing.Phone,
		BillingEmail:     o.Billing.Email,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)

	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:             uuid.New(),
			OrderID:        o.ID,
			ProductRef:     item.ProductRef,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		}
	}

	m.Notes = make([]OrderNoteModel, len(o.Notes))
	for i, note := range o.Notes {
		m.Notes[i] = OrderNoteModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			Text:      note.Text,
			CreatedAt: note.CreatedAt,
		}
	}

	return m
}

// RefundRecordModel is the persistence model for refund records
type RefundRecordModel struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	GatewayRefundID string          `gorm:"uniqueIndex"`
	ChargeID        string          `gorm:"index"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency        string          `gorm:"size:3;not null"`
	Status          string          `gorm:"not null"`
	Reason          string
	RequestedAt     time.Time `gorm:"not null"`
}

// TableName overrides the table name
func (RefundRecordModel) TableName() string {
	return "refund_records"
}

// ToDomain converts the model to the domain entity
func (m *RefundRecordModel) ToDomain() *order.RefundRecord {
	r := &order.RefundRecord{
		OrderID:         m.OrderID,
		GatewayRefundID: m.GatewayRefundID,
		ChargeID:        m.ChargeID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Status:          order.RefundStatus(m.Status),
		Reason:          m.Reason,
		RequestedAt:     m.RequestedAt,
	}
	r.BaseEntity = m.BaseModel.ToDomain()
	return r
}

// RefundRecordModelFromDomain converts the domain entity to the model
func RefundRecordModelFromDomain(r *order.RefundRecord) *RefundRecordModel {
	m := &RefundRecordModel{
		OrderID:         r.OrderID,
		GatewayRefundID: r.GatewayRefundID,
		ChargeID:        r.ChargeID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Status:          r.Status.String(),
		Reason:          r.Reason,
		RequestedAt:     r.RequestedAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
