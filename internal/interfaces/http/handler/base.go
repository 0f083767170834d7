package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apppayment "github.com/storesync/backend/internal/application/payment"
	"github.com/storesync/backend/internal/domain/checkout"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/payment"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts sentinel and domain errors to HTTP responses.
// Responses carry only short messages, never internal error detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		h.NotFound(c, "order not found")
	case errors.Is(err, order.ErrNoTransaction):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeNoTransaction, "order has no payment transaction")
	case errors.Is(err, order.ErrInvalidTransition):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, "status transition not allowed")
	case errors.Is(err, order.ErrEmptyOrder):
		h.BadRequest(c, "order must contain at least one item")
	case errors.Is(err, checkout.ErrInvalidPackage):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "unknown package option")
	case errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrMissingCurrency),
		errors.Is(err, payment.ErrMissingToken),
		errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, payment.ErrMissingTerms):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
	case errors.Is(err, payment.ErrChargeRejected),
		errors.Is(err, payment.ErrRefundRejected):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodePaymentRejected, err.Error())
	case errors.Is(err, apppayment.ErrPollTimeout):
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodePaymentTimeout, "payment confirmation timed out")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstreamUnavailable, "payment gateway unavailable")
	case errors.Is(err, integration.ErrCrmUnavailable),
		errors.Is(err, integration.ErrCrmAuthFailed):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstreamUnavailable, "crm unavailable")
	case errors.Is(err, integration.ErrCrmRejected):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, "crm rejected request")
	default:
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code := dto.NormalizeErrorCode(domainErr.Code)
			h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
			return
		}
		h.InternalError(c, "an unexpected error occurred")
	}
}
