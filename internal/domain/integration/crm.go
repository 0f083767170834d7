package integration

import (
	"context"
	"errors"
)

// CRM client errors
var (
	// ErrCrmUnavailable indicates a transport-level failure (timeout, DNS,
	// connection refused). The request may or may not have reached the CRM.
	ErrCrmUnavailable = errors.New("crm unavailable")

	// ErrCrmAuthFailed indicates the CRM rejected the API token
	ErrCrmAuthFailed = errors.New("crm authentication failed")

	// ErrCrmRejected indicates the CRM processed the request and returned
	// GraphQL errors
	ErrCrmRejected = errors.New("crm rejected request")
)

// CartItem is an order line already mapped to the CRM product catalog
type CartItem struct {
	ItemID     int
	Quantity   int
	PriceMinor int64
}

// OrderDraft carries the order fields sent to the CRM on creation
type OrderDraft struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Items     []CartItem
}

// CrmClient is the port to the remote CRM order API
type CrmClient interface {
	// CreateOrder creates the order in the CRM and returns the
	// CRM-assigned order ID
	CreateOrder(ctx context.Context, draft OrderDraft) (string, error)

	// UpdateStatus pushes an external-vocabulary status for an existing
	// CRM order
	UpdateStatus(ctx context.Context, externalID, externalStatus string) error
}
