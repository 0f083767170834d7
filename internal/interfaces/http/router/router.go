package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the handlers mounted by the router
type Handlers struct {
	System   *handler.SystemHandler
	Webhook  *handler.WebhookHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
	Checkout *handler.CheckoutHandler
}

// Setup builds the gin engine with middleware and routes
func Setup(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	_ = r.SetTrustedProxies(cfg.HTTP.TrustedProxies)

	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(log))
	r.Use(logger.Recovery(log))
	r.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)

	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/crm", h.Webhook.HandleCrmWebhook)
		webhooks.POST("/opn", h.Webhook.HandleGatewayWebhook)
	}

	v1 := r.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.Create)
			orders.GET("/:orderID", h.Order.Get)
			orders.POST("/:orderID/sync/retry", h.Order.RetrySync)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/charge", h.Payment.Charge)
			payments.POST("/source", h.Payment.CreateSource)
			payments.POST("/:orderID/refund", h.Payment.Refund)
		}

		v1.GET("/checkout/quote", h.Checkout.Quote)
	}

	return r
}
