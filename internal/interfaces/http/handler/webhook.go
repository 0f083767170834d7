package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apppayment "github.com/storesync/backend/internal/application/payment"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/infrastructure/signature"
	"go.uber.org/zap"
)

// Webhook signature headers
const (
	CrmSignatureHeader     = "X-SR-Signature"
	GatewaySignatureHeader = "X-OPN-Signature"
)

// WebhookHandler receives CRM and payment gateway webhook deliveries.
// Signatures are verified against the raw body before any state changes.
type WebhookHandler struct {
	BaseHandler
	crmVerifier     *signature.Verifier
	gatewayVerifier *signature.Verifier
	syncService     SyncService
	paymentService  PaymentService
	logger          *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	crmVerifier *signature.Verifier,
	gatewayVerifier *signature.Verifier,
	syncService SyncService,
	paymentService PaymentService,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		crmVerifier:     crmVerifier,
		gatewayVerifier: gatewayVerifier,
		syncService:     syncService,
		paymentService:  paymentService,
		logger:          logger,
	}
}

// crmWebhookPayload is the CRM status change notification body
type crmWebhookPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// HandleCrmWebhook applies a CRM-originated order status change.
// Invalid signatures return 401 with no state change.
func (h *WebhookHandler) HandleCrmWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "unreadable body")
		return
	}
	if !h.crmVerifier.Verify(body, c.GetHeader(CrmSignatureHeader)) {
		h.logger.Warn("crm webhook signature rejected")
		h.Unauthorized(c, "invalid signature")
		return
	}

	var payload crmWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.BadRequest(c, "malformed payload")
		return
	}
	if payload.OrderID == "" || payload.Status == "" {
		h.BadRequest(c, "orderId and status are required")
		return
	}

	if err := h.syncService.ApplyCrmStatus(c.Request.Context(), payload.OrderID, payload.Status); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"applied": true})
}

// gatewayWebhookPayload is the gateway event envelope
type gatewayWebhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		Charge         string `json:"charge"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
		FailureMessage string `json:"failure_message"`
		Source         struct {
			ID string `json:"id"`
		} `json:"source"`
		Metadata struct {
			OrderID string `json:"order_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandleGatewayWebhook applies a payment gateway event.
// Verification or processing failures return 400 so the gateway redelivers.
func (h *WebhookHandler) HandleGatewayWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "unreadable body")
		return
	}
	if !h.gatewayVerifier.Verify(body, c.GetHeader(GatewaySignatureHeader)) {
		h.logger.Warn("gateway webhook signature rejected")
		h.BadRequest(c, "invalid signature")
		return
	}

	var payload gatewayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.BadRequest(c, "malformed payload")
		return
	}

	event := apppayment.GatewayEvent{
		Key:            payload.ID,
		Type:           payload.Type,
		AmountMinor:    payload.Data.Amount,
		Currency:       payload.Data.Currency,
		FailureMessage: payload.Data.FailureMessage,
		SourceID:       payload.Data.Source.ID,
		OrderID:        payload.Data.Metadata.OrderID,
	}
	if payload.Type == apppayment.EventRefundCreate {
		event.RefundID = payload.Data.ID
		event.ChargeID = payload.Data.Charge
	} else {
		event.ChargeID = payload.Data.ID
	}

	if err := h.paymentService.HandleGatewayEvent(c.Request.Context(), event); err != nil {
		// Events for orders this store never saw are acknowledged so the
		// gateway stops redelivering them
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.logger.Error("gateway webhook processing failed",
			zap.String("event_id", payload.ID),
			zap.String("type", payload.Type),
			zap.Error(err))
		h.BadRequest(c, "event not processed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
