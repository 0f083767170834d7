package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// PaymentHandler exposes payment initiation and refund endpoints
type PaymentHandler struct {
	BaseHandler
	payments PaymentService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// ChargeRequest is the card charge initiation body
type ChargeRequest struct {
	OrderID   string `json:"order_id" binding:"required,uuid"`
	CardToken string `json:"card_token" binding:"required"`
}

// ChargeResponse reports the charge outcome
type ChargeResponse struct {
	ChargeID     string `json:"charge_id"`
	Paid         bool   `json:"paid"`
	AuthorizeURI string `json:"authorize_uri,omitempty"`
}

// Charge charges the order total against a tokenized card
func (h *PaymentHandler) Charge(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	result, err := h.payments.ChargeCard(c.Request.Context(), orderID, req.CardToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ChargeResponse{
		ChargeID:     result.ChargeID,
		Paid:         result.Paid,
		AuthorizeURI: result.AuthorizeURI,
	})
}

// SourceRequest is the offsite payment source creation body
type SourceRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
	Type    string `json:"type" binding:"required,oneof=promptpay installment"`
	Terms   int    `json:"terms"`
}

// SourceResponse reports a created payment source
type SourceResponse struct {
	SourceID     string `json:"source_id"`
	QRCode       string `json:"qr_code,omitempty"`
	AuthorizeURI string `json:"authorize_uri,omitempty"`
}

// CreateSource creates a PromptPay QR or installment redirect source
func (h *PaymentHandler) CreateSource(c *gin.Context) {
	var req SourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	result, err := h.payments.CreateSource(c.Request.Context(), orderID, payment.Method(req.Type), req.Terms)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// PromptPay sources resolve asynchronously; kick off the bounded poll so
	// the payment converges even if the gateway webhook is delayed. The poll
	// outlives the request, so it runs on a fresh context.
	if payment.Method(req.Type) == payment.MethodPromptPay {
		go func(sourceID string) {
			if err := h.payments.PollSource(context.Background(), sourceID); err != nil {
				h.logger.Warn("source polling ended without success",
					zap.String("source_id", sourceID),
					zap.Error(err))
			}
		}(result.SourceID)
	}

	h.Success(c, SourceResponse{
		SourceID:     result.SourceID,
		QRCode:       result.QRPayload,
		AuthorizeURI: result.AuthorizeURI,
	})
}

// RefundRequest is the manual refund body
type RefundRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// RefundResponse reports an issued refund
type RefundResponse struct {
	RefundID string `json:"refund_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Refund issues a manual refund against the order's settled charge
func (h *PaymentHandler) Refund(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		h.BadRequest(c, "amount must be a positive decimal")
		return
	}

	record, err := h.payments.Refund(c.Request.Context(), orderID, amount, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RefundResponse{
		RefundID: record.GatewayRefundID,
		Amount:   record.Amount.StringFixed(2),
		Currency: record.Currency,
		Status:   record.Status.String(),
	})
}
