package handlers

import (
	"github.com/labstack/echo/v4"

	"payment_options_echo/internal/middleware"
)

type Routes struct {
	PaymentOptions *PaymentOptionsHandler
	Public         *PublicHandler
	Webhook        *WebhookHandler
	Admin          *AdminHandler
	AdminAPIKey    string
}

// Register mounts every route on e. Admin routes exist only when an admin key is set.
func Register(e *echo.Echo, r Routes) {
	e.GET("/healthz", r.Public.Health)

	api := e.Group("/api")
	api.POST("/payment-options/create", r.PaymentOptions.CreatePaymentOptions)
	api.GET("/payment-options/status", r.PaymentOptions.GetPaymentStatus)
	api.POST("/payment-options/interaction", r.PaymentOptions.RecordInteraction)
	api.GET("/payment-success", r.Public.PaymentSuccess)

	e.POST("/webhook", r.Webhook.StripeWebhook)

	if r.AdminAPIKey != "" && r.Admin != nil {
		admin := api.Group("/admin", middleware.RequireAdminKey(r.AdminAPIKey))
		admin.GET("/payments/:userId", r.Admin.GetPaymentRecord)
		admin.GET("/interactions/:userId", r.Admin.ListInteractions)
	}
}
