package payment

import (
	"context"
	"errors"
)

// Gateway errors
var (
	// ErrGatewayUnavailable indicates a transport-level failure talking to
	// the payment gateway
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrChargeRejected indicates the gateway refused the charge or source
	ErrChargeRejected = errors.New("charge rejected by gateway")

	// ErrRefundRejected indicates the gateway refused the refund
	ErrRefundRejected = errors.New("refund rejected by gateway")

	// ErrUnknownStatus indicates the gateway reported a status outside the
	// documented vocabulary. Treated as an unrecoverable protocol failure.
	ErrUnknownStatus = errors.New("unknown gateway status")

	// Validation errors
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrMissingCurrency = errors.New("currency is required")
	ErrMissingToken    = errors.New("card token is required")
	ErrInvalidMethod   = errors.New("unsupported payment method")
	ErrMissingTerms    = errors.New("installment terms are required")
)

// ChargeStatus is the gateway's charge/source status vocabulary
type ChargeStatus string

const (
	ChargeStatusSuccessful ChargeStatus = "successful"
	ChargeStatusPending    ChargeStatus = "pending"
	ChargeStatusFailed     ChargeStatus = "failed"
	ChargeStatusExpired    ChargeStatus = "expired"
)

// IsValid checks if the status is a known value
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusSuccessful, ChargeStatusPending, ChargeStatusFailed, ChargeStatusExpired:
		return true
	}
	return false
}

// String returns the string representation
func (s ChargeStatus) String() string {
	return string(s)
}

// IsTerminal checks if the status ends a payment flow
func (s ChargeStatus) IsTerminal() bool {
	switch s {
	case ChargeStatusSuccessful, ChargeStatusFailed, ChargeStatusExpired:
		return true
	}
	return false
}

// Method is a supported offsite payment method
type Method string

const (
	MethodPromptPay   Method = "promptpay"
	MethodInstallment Method = "installment"
)

// IsValid checks if the method is supported
func (m Method) IsValid() bool {
	return m == MethodPromptPay || m == MethodInstallment
}

// String returns the string representation
func (m Method) String() string {
	return string(m)
}

// ChargeRequest describes a card charge to create
type ChargeRequest struct {
	AmountMinor int64
	Currency    string
	CardToken   string
	Metadata    map[string]string
}

// Validate checks the charge request fields
func (r *ChargeRequest) Validate() error {
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if r.Currency == "" {
		return ErrMissingCurrency
	}
	if r.CardToken == "" {
		return ErrMissingToken
	}
	return nil
}

// SourceRequest describes an offsite payment source to create
type SourceRequest struct {
	AmountMinor int64
	Currency    string
	Method      Method
	// InstallmentTerms is the number of monthly terms, installment only
	InstallmentTerms int
	Metadata         map[string]string
}

// Validate checks the source request fields
func (r *SourceRequest) Validate() error {
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if r.Currency == "" {
		return ErrMissingCurrency
	}
	if !r.Method.IsValid() {
		return ErrInvalidMethod
	}
	if r.Method == MethodInstallment && r.InstallmentTerms <= 0 {
		return ErrMissingTerms
	}
	return nil
}

// RefundRequest describes a refund against a settled charge
type RefundRequest struct {
	ChargeID    string
	AmountMinor int64
	Metadata    map[string]string
}

// Validate checks the refund request fields
func (r *RefundRequest) Validate() error {
	if r.ChargeID == "" {
		return errors.New("charge ID is required")
	}
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Charge is the gateway's view of a charge
type Charge struct {
	ID             string
	Status         ChargeStatus
	AmountMinor    int64
	Currency       string
	AuthorizeURI   string
	FailureCode    string
	FailureMessage string
}

// Source is the gateway's view of an offsite payment source
type Source struct {
	ID           string
	Status       ChargeStatus
	AmountMinor  int64
	Currency     string
	Method       Method
	QRPayload    string
	AuthorizeURI string
	// ChargeID is set once the gateway has created a charge for the source
	ChargeID string
}

// Refund is the gateway's view of a refund
type Refund struct {
	ID          string
	ChargeID    string
	AmountMinor int64
	Currency    string
}

// Gateway is the port to the payment gateway REST API
type Gateway interface {
	// CreateCharge creates a card charge. A pending charge with an
	// authorize URI requires a 3-D Secure redirect.
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)

	// GetCharge fetches the current state of a charge
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)

	// CreateSource creates an offsite payment source (PromptPay QR,
	// installment redirect)
	CreateSource(ctx context.Context, req SourceRequest) (*Source, error)

	// GetSource fetches the current state of a source, used by polling
	GetSource(ctx context.Context, sourceID string) (*Source, error)

	// CreateRefund refunds part or all of a settled charge
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
}
