package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/shared"
)

// Order domain errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrExternalIDConflict = errors.New("external CRM ID is already set")
	ErrNoTransaction      = errors.New("order has no payment transaction to refund")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
)

// Status represents the local order status vocabulary
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsFinal checks if the status is terminal
func (s Status) IsFinal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentState represents the payment lifecycle of an order
type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStatePending  PaymentState = "pending"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateFailed   PaymentState = "failed"
	PaymentStateRefunded PaymentState = "refunded"
)

// IsValid checks if the payment state is a known value
func (p PaymentState) IsValid() bool {
	switch p {
	case PaymentStateUnpaid, PaymentStatePending, PaymentStatePaid,
		PaymentStateFailed, PaymentStateRefunded:
		return true
	}
	return false
}

// String returns the string representation
func (p PaymentState) String() string {
	return string(p)
}

// SyncState represents where the order stands in the CRM sync lifecycle
type SyncState string

const (
	SyncStateUnsynced      SyncState = "unsynced"
	SyncStateSynced        SyncState = "synced"
	SyncStateStatusPushing SyncState = "status_pushing"
	SyncStateFailed        SyncState = "sync_failed"
)

// IsValid checks if the sync state is a known value
func (s SyncState) IsValid() bool {
	switch s {
	case SyncStateUnsynced, SyncStateSynced, SyncStateStatusPushing, SyncStateFailed:
		return true
	}
	return false
}

// String returns the string representation
func (s SyncState) String() string {
	return string(s)
}

// BillingContact holds the customer contact details attached to an order
type BillingContact struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// Item is a single order line
type Item struct {
	ProductRef     string
	Quantity       int
	UnitPriceMinor int64
}

// Note is an audit trail entry recorded against an order
type Note struct {
	Text      string
	CreatedAt time.Time
}

// Order is the aggregate root tracking local state, payment progress and
// CRM synchronization for a single customer order.
type Order struct {
	shared.BaseAggregateRoot
	Number        string
	Status        Status
	PaymentState  PaymentState
	SyncState     SyncState
	ExternalCrmID string
	TransactionID string
	SourceID      string
	Total         decimal.Decimal
	Currency      string
	Billing       BillingContact
	Items         []Item
	Notes         []Note
}

// NewOrder creates a new order in the initial pending/unpaid/unsynced state
func NewOrder(number string, total decimal.Decimal, currency string, billing BillingContact, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Status:            StatusPending,
		PaymentState:      PaymentStateUnpaid,
		SyncState:         SyncStateUnsynced,
		Total:             total,
		Currency:          currency,
		Billing:           billing,
		Items:             items,
	}, nil
}

// CanTransitionTo checks if the order can move to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	if o.Status == target {
		return true
	}
	switch o.Status {
	case StatusPending:
		return target == StatusProcessing || target == StatusCompleted ||
			target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed ||
			target == StatusCancelled || target == StatusRefunded
	case StatusCompleted:
		return target == StatusRefunded
	case StatusFailed:
		return target == StatusPending || target == StatusCancelled
	case StatusCancelled, StatusRefunded:
		return false
	}
	return false
}

// TransitionTo moves the order to the target status.
// Returns false without error when the order already has the target status.
func (o *Order) TransitionTo(target Status) (bool, error) {
	if !target.IsValid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if o.Status == target {
		return false, nil
	}
	if !o.CanTransitionTo(target) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return true, nil
}

// ApplyExternalStatus sets the status reported by the CRM. The CRM is
// authoritative for its own status changes, so the local transition matrix
// is not consulted. Returns false without error when the order already has
// the target status.
func (o *Order) ApplyExternalStatus(target Status) (bool, error) {
	if !target.IsValid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if o.Status == target {
		return false, nil
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return true, nil
}

// SetExternalCrmID records the CRM-assigned order ID.
// The ID is immutable once set; setting the same value again is a no-op.
func (o *Order) SetExternalCrmID(id string) error {
	if o.ExternalCrmID != "" {
		if o.ExternalCrmID == id {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrExternalIDConflict, o.ExternalCrmID)
	}
	o.ExternalCrmID = id
	o.UpdatedAt = time.Now()
	return nil
}

// IsSynced reports whether the order has a CRM counterpart
func (o *Order) IsSynced() bool {
	return o.ExternalCrmID != ""
}

// MarkSynced records a successful CRM sync
func (o *Order) MarkSynced() {
	o.SyncState = SyncStateSynced
	o.UpdatedAt = time.Now()
}

// MarkSyncFailed records a failed CRM sync attempt
func (o *Order) MarkSyncFailed() {
	o.SyncState = SyncStateFailed
	o.UpdatedAt = time.Now()
}

// BeginStatusPush marks an in-flight status push to the CRM
func (o *Order) BeginStatusPush() {
	o.SyncState = SyncStateStatusPushing
	o.UpdatedAt = time.Now()
}

// MarkPaymentPending records that an asynchronous payment flow has started
// for the given source or charge
func (o *Order) MarkPaymentPending(reference string) {
	o.PaymentState = PaymentStatePending
	if reference != "" {
		o.SourceID = reference
	}
	o.UpdatedAt = time.Now()
}

// MarkPaid records a completed payment.
// Returns false when the order is already paid (idempotent replay).
func (o *Order) MarkPaid(transactionID string) bool {
	if o.PaymentState == PaymentStatePaid {
		return false
	}
	o.PaymentState = PaymentStatePaid
	o.TransactionID = transactionID
	o.Status = StatusProcessing
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPaidEvent(o.ID, transactionID, o.Total, o.Currency))
	return true
}

// MarkPaymentFailed records a failed payment.
// Returns false when the order has already reached a terminal payment state.
func (o *Order) MarkPaymentFailed(reason string) bool {
	if o.PaymentState == PaymentStatePaid ||
		o.PaymentState == PaymentStateFailed ||
		o.PaymentState == PaymentStateRefunded {
		return false
	}
	o.PaymentState = PaymentStateFailed
	o.Status = StatusFailed
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPaymentFailedEvent(o.ID, reason))
	return true
}

// MarkRefunded records a refund against the order
func (o *Order) MarkRefunded(amount decimal.Decimal) {
	o.PaymentState = PaymentStateRefunded
	o.Status = StatusRefunded
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewRefundedEvent(o.ID, amount, o.Currency))
}

// AddNote appends an audit note to the order
func (o *Order) AddNote(text string) {
	o.Notes = append(o.Notes, Note{Text: text, CreatedAt: time.Now()})
	o.UpdatedAt = time.Now()
}

// HasNote reports whether an identical note text is already recorded.
// Used to keep webhook replays from duplicating audit entries.
func (o *Order) HasNote(text string) bool {
	for _, n := range o.Notes {
		if n.Text == text {
			return true
		}
	}
	return false
}
