package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"

	"payment_options_echo/internal/metrics"
	"payment_options_echo/internal/models"
	"payment_options_echo/internal/services"
)

const (
	maxWebhookBody        = int64(65536)
	webhookDedupeTTL      = 24 * time.Hour
	eventCheckoutComplete = "checkout.session.completed"
)

// EventDeduper remembers event ids. SetNX reports true the first time a key is seen.
type EventDeduper interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

// CallbackRecorder keeps an audit trail of verified webhooks
type CallbackRecorder interface {
	Record(ctx context.Context, entry *models.PaymentCallbackHistory) error
}

type WebhookHandler struct {
	records  *services.PaymentRecordService
	verifier services.EventVerifier
	dedupe   EventDeduper
	history  CallbackRecorder
	logger   zerolog.Logger
}

// NewWebhookHandler wires the webhook. dedupe and history are optional.
func NewWebhookHandler(records *services.PaymentRecordService, verifier services.EventVerifier, dedupe EventDeduper, history CallbackRecorder, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		records:  records,
		verifier: verifier,
		dedupe:   dedupe,
		history:  history,
		logger:   logger.With().Str("component", "webhook").Logger(),
	}
}

// StripeWebhook handles signed Stripe events. Nothing is written before the
// signature has been verified.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		metrics.IncWebhook("invalid_payload")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	event, err := h.verifier.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			h.logger.Warn().Err(err).Msg("webhook signature rejected")
			metrics.IncWebhook("invalid_signature")
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid signature")
		}
		h.logger.Warn().Err(err).Msg("webhook payload rejected")
		metrics.IncWebhook("invalid_payload")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	ctx := c.Request().Context()
	if h.seen(ctx, event.ID) {
		h.logger.Info().Str("event_id", event.ID).Msg("duplicate webhook delivery ignored")
		metrics.IncWebhook("duplicate")
		return c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}

	if string(event.Type) != eventCheckoutComplete {
		metrics.IncWebhook("ignored")
		return c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		metrics.IncWebhook("invalid_payload")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	h.handleCheckoutCompleted(ctx, event, &session)
	metrics.IncWebhook("processed")
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event, session *stripe.CheckoutSession) {
	userID := session.Metadata["userId"]
	paymentType := session.Metadata["paymentType"]

	h.audit(ctx, event, userID, paymentType, session.Metadata)

	if userID == "" || paymentType == "" {
		h.logger.Warn().Str("event_id", event.ID).Str("session_id", session.ID).Msg("checkout session without userId/paymentType metadata")
		return
	}

	// The provider has already been paid; a storage failure here is logged
	// and the delivery is still acknowledged.
	if !h.records.ConfirmPayment(ctx, userID, paymentType, session.ID, "webhook") {
		h.logger.Error().Str("event_id", event.ID).Str("user_id", userID).Msg("webhook confirmation not persisted")
	}

	data := map[string]interface{}{
		"sessionId":   session.ID,
		"paymentType": paymentType,
		"amountTotal": session.AmountTotal,
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		data["customerEmail"] = session.CustomerDetails.Email
	}
	h.records.RecordInteraction(ctx, userID, "payment_completed", data)
}

func (h *WebhookHandler) seen(ctx context.Context, eventID string) bool {
	if h.dedupe == nil || eventID == "" {
		return false
	}
	first, err := h.dedupe.SetNX(ctx, "stripe_event:"+eventID, 1, webhookDedupeTTL)
	if err != nil {
		h.logger.Warn().Err(err).Str("event_id", eventID).Msg("webhook de-duplication unavailable")
		return false
	}
	return !first
}

func (h *WebhookHandler) audit(ctx context.Context, event stripe.Event, userID, paymentType string, metadata map[string]string) {
	if h.history == nil {
		return
	}
	raw, _ := json.Marshal(metadata)
	entry := &models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayStripe,
		EventID:        event.ID,
		EventType:      string(event.Type),
		UserID:         userID,
		PaymentType:    paymentType,
		Metadata:       raw,
	}
	if err := h.history.Record(ctx, entry); err != nil {
		h.logger.Warn().Err(err).Str("event_id", event.ID).Msg("webhook audit write failed")
	}
}
