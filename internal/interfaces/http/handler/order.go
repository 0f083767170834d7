package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// OrderHandler exposes order creation, lookup and sync retry endpoints
type OrderHandler struct {
	BaseHandler
	orders order.Repository
	sync   SyncService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders order.Repository, sync SyncService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, sync: sync, logger: logger}
}

// OrderItemRequest is a single line in an order creation request
type OrderItemRequest struct {
	ProductRef     string `json:"product_ref" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	UnitPriceMinor int64  `json:"unit_price_minor" binding:"required,min=1"`
}

// CreateOrderRequest is the order creation body
type CreateOrderRequest struct {
	Number    string             `json:"number" binding:"required"`
	Total     string             `json:"total" binding:"required"`
	Currency  string             `json:"currency" binding:"required,len=3"`
	FirstName string             `json:"first_name" binding:"required"`
	LastName  string             `json:"last_name"`
	Phone     string             `json:"phone" binding:"required"`
	Email     string             `json:"email" binding:"omitempty,email"`
	Items     []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Status        string `json:"status"`
	PaymentState  string `json:"payment_state"`
	SyncState     string `json:"sync_state"`
	ExternalCrmID string `json:"external_crm_id,omitempty"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		Status:        o.Status.String(),
		PaymentState:  o.PaymentState.String(),
		SyncState:     o.SyncState.String(),
		ExternalCrmID: o.ExternalCrmID,
		Total:         o.Total.StringFixed(2),
		Currency:      o.Currency,
	}
}

// Create records a completed checkout as a local order and starts the CRM
// sync. Sync failures are recorded on the order, not surfaced here.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body")
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil || !total.IsPositive() {
		h.BadRequest(c, "total must be a positive decimal")
		return
	}

	existing, err := h.orders.FindByNumber(c.Request.Context(), req.Number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if existing != nil {
		h.Error(c, http.StatusConflict, dto.ErrCodeAlreadyExists, "order number already exists")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{
			ProductRef:     item.ProductRef,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		}
	}
	o, err := order.NewOrder(req.Number, total, req.Currency, order.BillingContact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	}, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.orders.Create(c.Request.Context(), o); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.sync.SyncOrder(c.Request.Context(), o.ID); err != nil {
		// The order exists locally either way; sync state carries the outcome
		h.logger.Error("initial CRM sync errored",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	refreshed, err := h.orders.FindByID(c.Request.Context(), o.ID)
	if err != nil || refreshed == nil {
		refreshed = o
	}
	h.Created(c, toOrderResponse(refreshed))
}

// Get returns a single order
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	o, err := h.orders.FindByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if o == nil {
		h.NotFound(c, "order not found")
		return
	}
	h.Success(c, toOrderResponse(o))
}

// RetrySync re-runs CRM sync for an order in the sync_failed state
func (h *OrderHandler) RetrySync(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	if err := h.sync.RetrySync(c.Request.Context(), orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	o, err := h.orders.FindByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if o == nil {
		h.NotFound(c, "order not found")
		return
	}
	h.Success(c, toOrderResponse(o))
}
