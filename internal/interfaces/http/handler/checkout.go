package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/checkout"
)

// CheckoutHandler exposes package quote endpoints
type CheckoutHandler struct {
	BaseHandler
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

// QuoteRequest is the package quote query
type QuoteRequest struct {
	Package   string `form:"package" binding:"required"`
	BasePrice string `form:"base_price" binding:"required"`
}

// QuoteResponse is a priced package offer
type QuoteResponse struct {
	Package  string `json:"package"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
	Currency string `json:"currency,omitempty"`
}

// Quote prices a package option against a per-unit base price
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "package and base_price are required")
		return
	}

	option, err := checkout.ParsePackageOption(req.Package)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil || !basePrice.IsPositive() {
		h.BadRequest(c, "base_price must be a positive decimal")
		return
	}

	quote, err := checkout.QuoteFor(option, basePrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, QuoteResponse{
		Package:  quote.Package.String(),
		Quantity: quote.Quantity,
		Total:    quote.Total.StringFixed(2),
	})
}
