package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"payment_options_echo/internal/services"
	"payment_options_echo/web/templates/pages"
)

type PublicHandler struct {
	records       *services.PaymentRecordService
	thankYouURL   string
	redirectDelay int
}

func NewPublicHandler(records *services.PaymentRecordService, thankYouURL string, redirectDelay int) *PublicHandler {
	if thankYouURL == "" {
		thankYouURL = "/thank-you"
	}
	if redirectDelay <= 0 {
		redirectDelay = 5
	}
	return &PublicHandler{records: records, thankYouURL: thankYouURL, redirectDelay: redirectDelay}
}

// PaymentSuccess is the browser redirect target after a hosted checkout.
// It marks the payment complete and renders a page that forwards to the
// thank-you page.
func (h *PublicHandler) PaymentSuccess(c echo.Context) error {
	paymentType := strings.TrimSpace(c.QueryParam("type"))
	userID := strings.TrimSpace(c.QueryParam("userId"))
	if paymentType == "" || userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Error: Missing parameters")
	}

	if !h.records.ConfirmPayment(c.Request().Context(), userID, paymentType, "", "redirect") {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error: failed to update payment status")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return pages.PaymentSuccess(pages.PaymentSuccessProps{
		PaymentType:   paymentType,
		RedirectURL:   h.thankYouURL,
		RedirectDelay: h.redirectDelay,
	}).Render(c.Request().Context(), c.Response())
}

func (h *PublicHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": h.records.Backend(),
	})
}
