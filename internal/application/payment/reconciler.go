package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/payment"
	"github.com/storesync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Reconciler errors
var (
	// ErrPollTimeout indicates the source never reached a terminal status
	// within the polling attempt cap
	ErrPollTimeout = errors.New("payment confirmation timed out")
)

// Options tunes the reconciler's polling loop and webhook deduplication
type Options struct {
	// PollInterval is the fixed delay between source status polls
	PollInterval time.Duration
	// PollMaxAttempts is the hard cap on polling attempts
	PollMaxAttempts int
	// IdempotencyTTL bounds how long processed webhook keys are remembered
	IdempotencyTTL time.Duration
}

// DefaultOptions returns the standard reconciler tuning
func DefaultOptions() Options {
	return Options{
		PollInterval:    3 * time.Second,
		PollMaxAttempts: 20,
		IdempotencyTTL:  24 * time.Hour,
	}
}

// ChargeResult reports the outcome of a card charge attempt
type ChargeResult struct {
	ChargeID string
	Paid     bool
	// AuthorizeURI is set when the charge requires a 3-D Secure redirect
	AuthorizeURI string
}

// SourceResult reports a created offsite payment source
type SourceResult struct {
	SourceID string
	// QRPayload is the scannable QR image URI, PromptPay only
	QRPayload string
	// AuthorizeURI is the redirect target, installment only
	AuthorizeURI string
}

// GatewayEvent is a parsed payment gateway webhook notification
type GatewayEvent struct {
	// Key uniquely identifies the delivery for deduplication
	Key      string
	Type     string
	ChargeID string
	SourceID string
	RefundID string
	// OrderID is the local order id echoed back through charge metadata,
	// used as a resolution fallback when charge and source lookups miss
	OrderID        string
	AmountMinor    int64
	Currency       string
	FailureMessage string
}

// Gateway webhook event types
const (
	EventChargeComplete = "charge.complete"
	EventChargeFail     = "charge.fail"
	EventRefundCreate   = "refund.create"
)

// Reconciler drives payments through the gateway and converges webhook and
// polling outcomes onto local order state. Every state mutation is idempotent
// and keyed by a gateway identifier so duplicate or racing notifications
// cannot double-apply.
type Reconciler struct {
	orders  order.Repository
	refunds order.RefundRepository
	gateway payment.Gateway
	idem    shared.IdempotencyStore
	events  shared.EventPublisher
	opts    Options
	logger  *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	orders order.Repository,
	refunds order.RefundRepository,
	gateway payment.Gateway,
	idem shared.IdempotencyStore,
	events shared.EventPublisher,
	opts Options,
	logger *zap.Logger,
) *Reconciler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = DefaultOptions().PollMaxAttempts
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = DefaultOptions().IdempotencyTTL
	}
	return &Reconciler{
		orders:  orders,
		refunds: refunds,
		gateway: gateway,
		idem:    idem,
		events:  events,
		opts:    opts,
		logger:  logger,
	}
}

// ChargeCard charges the order total against a tokenized card. A successful
// charge marks the order paid immediately; a pending charge with an
// authorize URI needs a 3-D Secure redirect and resolves later via webhook.
func (r *Reconciler) ChargeCard(ctx context.Context, orderID uuid.UUID, cardToken string) (*ChargeResult, error) {
	o, err := r.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	req := payment.ChargeRequest{
		AmountMinor: payment.ToMinorUnits(o.Total),
		Currency:    o.Currency,
		CardToken:   cardToken,
		Metadata:    map[string]string{"order_id": o.ID.String(), "order_number": o.Number},
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	charge, err := r.gateway.CreateCharge(ctx, req)
	if err != nil {
		return nil, err
	}

	switch charge.Status {
	case payment.ChargeStatusSuccessful:
		if err := r.markPaid(ctx, o, charge.ID); err != nil {
			return nil, err
		}
		return &ChargeResult{ChargeID: charge.ID, Paid: true}, nil

	case payment.ChargeStatusPending:
		o.MarkPaymentPending("")
		o.TransactionID = charge.ID
		if err := r.save(ctx, o); err != nil {
			return nil, err
		}
		return &ChargeResult{ChargeID: charge.ID, AuthorizeURI: charge.AuthorizeURI}, nil

	default:
		reason := charge.FailureMessage
		if reason == "" {
			reason = charge.Status.String()
		}
		if err := r.markFailed(ctx, o, reason); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", payment.ErrChargeRejected, reason)
	}
}

// CreateSource creates an offsite payment source for the order and records
// the pending payment. The caller presents the QR payload or redirect URI;
// the terminal outcome arrives via PollSource or a gateway webhook.
func (r *Reconciler) CreateSource(ctx context.Context, orderID uuid.UUID, method payment.Method, installmentTerms int) (*SourceResult, error) {
	o, err := r.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	req := payment.SourceRequest{
		AmountMinor:      payment.ToMinorUnits(o.Total),
		Currency:         o.Currency,
		Method:           method,
		InstallmentTerms: installmentTerms,
		Metadata:         map[string]string{"order_id": o.ID.String(), "order_number": o.Number},
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	source, err := r.gateway.CreateSource(ctx, req)
	if err != nil {
		return nil, err
	}

	o.MarkPaymentPending(source.ID)
	if err := r.save(ctx, o); err != nil {
		return nil, err
	}

	r.logger.Info("payment source created",
		zap.String("order_id", o.ID.String()),
		zap.String("source_id", source.ID),
		zap.String("method", method.String()))
	return &SourceResult{
		SourceID:     source.ID,
		QRPayload:    source.QRPayload,
		AuthorizeURI: source.AuthorizeURI,
	}, nil
}

// PollSource polls the source until it reaches a terminal status or the
// attempt cap is hit. The loop runs at a fixed interval and never exceeds
// the cap; a still-pending source past the cap fails the payment with
// ErrPollTimeout. Webhooks arriving during the poll converge on the same
// idempotent mark-paid, so a race cannot double-apply.
func (r *Reconciler) PollSource(ctx context.Context, sourceID string) error {
	o, err := r.orders.FindBySourceID(ctx, sourceID)
	if err != nil {
		return err
	}
	if o == nil {
		return order.ErrOrderNotFound
	}

	for attempt := 1; attempt <= r.opts.PollMaxAttempts; attempt++ {
		source, err := r.gateway.GetSource(ctx, sourceID)
		switch {
		case errors.Is(err, payment.ErrUnknownStatus):
			return r.markFailed(ctx, o, "unknown status")
		case err != nil:
			// Transport errors consume an attempt and keep polling
			r.logger.Warn("source poll failed",
				zap.String("source_id", sourceID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		default:
			switch source.Status {
			case payment.ChargeStatusSuccessful:
				transactionID := source.ChargeID
				if transactionID == "" {
					transactionID = source.ID
				}
				return r.markPaid(ctx, o, transactionID)
			case payment.ChargeStatusFailed:
				return r.markFailed(ctx, o, "declined")
			case payment.ChargeStatusExpired:
				return r.markFailed(ctx, o, "expired")
			}
		}

		if attempt == r.opts.PollMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.opts.PollInterval):
		}
	}

	if err := r.markFailed(ctx, o, "payment confirmation timed out"); err != nil {
		return err
	}
	return ErrPollTimeout
}

// HandleGatewayEvent applies a verified gateway webhook notification.
// Duplicate deliveries are absorbed by the idempotency store and the
// per-order idempotent mutations; unrecognized event types are acknowledged
// without side effects.
func (r *Reconciler) HandleGatewayEvent(ctx context.Context, event GatewayEvent) error {
	if event.Key != "" {
		seen, err := r.idem.IsProcessed(ctx, event.Key)
		if err != nil {
			return err
		}
		if seen {
			r.logger.Debug("duplicate gateway event skipped", zap.String("key", event.Key))
			return nil
		}
	}

	if err := r.applyGatewayEvent(ctx, event); err != nil {
		return err
	}

	// The key is only marked after a successful apply so a redelivery can
	// retry an event that failed mid-flight
	if event.Key != "" {
		if _, err := r.idem.MarkProcessed(ctx, event.Key, r.opts.IdempotencyTTL); err != nil {
			r.logger.Warn("failed to record gateway event key",
				zap.String("key", event.Key),
				zap.Error(err))
		}
	}
	return nil
}

func (r *Reconciler) applyGatewayEvent(ctx context.Context, event GatewayEvent) error {
	switch event.Type {
	case EventChargeComplete:
		return r.applyChargeComplete(ctx, event)
	case EventChargeFail:
		return r.applyChargeFail(ctx, event)
	case EventRefundCreate:
		return r.applyRefundCreate(ctx, event)
	default:
		r.logger.Info("unrecognized gateway event acknowledged",
			zap.String("type", event.Type))
		return nil
	}
}

// Refund issues a manual refund against the order's settled charge.
// Orders without a transaction fail fast; gateway rejections surface the
// gateway's message.
func (r *Reconciler) Refund(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, reason string) (*order.RefundRecord, error) {
	o, err := r.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	if o.TransactionID == "" {
		return nil, order.ErrNoTransaction
	}

	req := payment.RefundRequest{
		ChargeID:    o.TransactionID,
		AmountMinor: payment.ToMinorUnits(amount),
		Metadata:    map[string]string{"order_id": o.ID.String()},
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	refund, err := r.gateway.CreateRefund(ctx, req)
	if err != nil {
		return nil, err
	}

	record := order.NewRefundRecord(o.ID, o.TransactionID, amount, o.Currency, reason)
	record.MarkSucceeded(refund.ID)
	if err := r.refunds.Save(ctx, record); err != nil {
		return nil, err
	}

	o.MarkRefunded(amount)
	o.AddNote(fmt.Sprintf("refund %s issued for %s %s", refund.ID, amount.StringFixed(2), o.Currency))
	if err := r.save(ctx, o); err != nil {
		return nil, err
	}

	r.logger.Info("refund issued",
		zap.String("order_id", o.ID.String()),
		zap.String("refund_id", refund.ID))
	return record, nil
}

func (r *Reconciler) applyChargeComplete(ctx context.Context, event GatewayEvent) error {
	o, err := r.findByReference(ctx, event)
	if err != nil || o == nil {
		return err
	}
	return r.markPaid(ctx, o, event.ChargeID)
}

func (r *Reconciler) applyChargeFail(ctx context.Context, event GatewayEvent) error {
	o, err := r.findByReference(ctx, event)
	if err != nil || o == nil {
		return err
	}
	reason := event.FailureMessage
	if reason == "" {
		reason = "charge failed"
	}
	return r.markFailed(ctx, o, reason)
}

// applyRefundCreate records a refund already executed on the gateway side.
// It never calls back into the gateway.
func (r *Reconciler) applyRefundCreate(ctx context.Context, event GatewayEvent) error {
	existing, err := r.refunds.FindByGatewayRefundID(ctx, event.RefundID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	o, err := r.findByReference(ctx, event)
	if err != nil || o == nil {
		return err
	}

	amount := payment.FromMinorUnits(event.AmountMinor)
	record := order.NewRefundRecord(o.ID, event.ChargeID, amount, event.Currency, "gateway refund event")
	record.MarkSucceeded(event.RefundID)
	if err := r.refunds.Save(ctx, record); err != nil {
		return err
	}

	o.MarkRefunded(amount)
	note := fmt.Sprintf("refund %s reported by gateway for %s %s", event.RefundID, amount.StringFixed(2), event.Currency)
	if !o.HasNote(note) {
		o.AddNote(note)
	}
	return r.save(ctx, o)
}

// findByReference resolves the order a gateway event refers to, by charge ID
// first, then by source ID, then by the order id carried in charge metadata.
// Events for unknown orders are logged and dropped so the gateway does not
// keep redelivering them.
func (r *Reconciler) findByReference(ctx context.Context, event GatewayEvent) (*order.Order, error) {
	if event.ChargeID != "" {
		o, err := r.orders.FindByTransactionID(ctx, event.ChargeID)
		if err != nil {
			return nil, err
		}
		if o != nil {
			return o, nil
		}
	}
	if event.SourceID != "" {
		o, err := r.orders.FindBySourceID(ctx, event.SourceID)
		if err != nil {
			return nil, err
		}
		if o != nil {
			return o, nil
		}
	}
	if event.OrderID != "" {
		if id, err := uuid.Parse(event.OrderID); err == nil {
			o, err := r.orders.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if o != nil {
				return o, nil
			}
		}
	}
	r.logger.Warn("gateway event for unknown order dropped",
		zap.String("type", event.Type),
		zap.String("charge_id", event.ChargeID),
		zap.String("source_id", event.SourceID))
	return nil, nil
}

// markPaid applies the idempotent paid transition keyed by the gateway
// transaction ID. Replays on an already-paid order are no-ops.
func (r *Reconciler) markPaid(ctx context.Context, o *order.Order, transactionID string) error {
	if !o.MarkPaid(transactionID) {
		return nil
	}
	o.AddNote(fmt.Sprintf("payment captured, charge %s", transactionID))
	if err := r.save(ctx, o); err != nil {
		return err
	}
	r.logger.Info("order marked paid",
		zap.String("order_id", o.ID.String()),
		zap.String("transaction_id", transactionID))
	return nil
}

func (r *Reconciler) markFailed(ctx context.Context, o *order.Order, reason string) error {
	if !o.MarkPaymentFailed(reason) {
		return nil
	}
	o.AddNote(fmt.Sprintf("payment failed: %s", reason))
	if err := r.save(ctx, o); err != nil {
		return err
	}
	r.logger.Info("order payment failed",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", reason))
	return nil
}

func (r *Reconciler) save(ctx context.Context, o *order.Order) error {
	if err := r.orders.Save(ctx, o); err != nil {
		return err
	}
	if events := o.GetDomainEvents(); len(events) > 0 {
		if err := r.events.Publish(ctx, events...); err != nil {
			r.logger.Error("failed to publish domain events",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
		o.ClearDomainEvents()
	}
	return nil
}
