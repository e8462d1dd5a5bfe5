package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"payment_options_echo/internal/metrics"
	"payment_options_echo/internal/models"
	"payment_options_echo/internal/storage"
)

// PaymentRecordService is the single entry point handlers use for payment
// state. It never returns storage errors: failures are logged and mapped to
// false or to the none status.
type PaymentRecordService struct {
	store  storage.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewPaymentRecordService(store storage.Store, logger zerolog.Logger) *PaymentRecordService {
	return &PaymentRecordService{
		store:  store,
		logger: logger.With().Str("component", "payment_records").Str("backend", store.Name()).Logger(),
		now:    time.Now,
	}
}

// Backend returns the name of the active storage backend
func (s *PaymentRecordService) Backend() string {
	return s.store.Name()
}

// UpsertPaymentRecord stores rec for userID. The backend keeps a status
// that was already confirmed, so re-creating links never resets it.
func (s *PaymentRecordService) UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) bool {
	rec.UserID = userID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	err := s.store.UpsertPaymentRecord(ctx, userID, rec)
	metrics.ObserveStorage(s.store.Name(), "upsert", err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("upsert payment record failed")
		return false
	}
	return true
}

// GetPaymentStatus returns the stored status, or none when the record is
// missing or the backend fails
func (s *PaymentRecordService) GetPaymentStatus(ctx context.Context, userID string) models.PaymentStatus {
	rec, err := s.store.GetPaymentRecord(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			metrics.ObserveStorage(s.store.Name(), "get_status", err)
			s.logger.Error().Err(err).Str("user_id", userID).Msg("read payment status failed")
		}
		return models.PaymentStatusNone
	}
	metrics.ObserveStorage(s.store.Name(), "get_status", nil)
	return models.ParsePaymentStatus(string(rec.PaymentStatus))
}

func (s *PaymentRecordService) RecordInteraction(ctx context.Context, userID, interactionType string, data map[string]interface{}) bool {
	if data == nil {
		data = map[string]interface{}{}
	}
	err := s.store.RecordInteraction(ctx, models.InteractionRecord{
		UserID:    userID,
		Type:      interactionType,
		Data:      data,
		Timestamp: s.now().UTC(),
	})
	metrics.ObserveStorage(s.store.Name(), "record_interaction", err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("type", interactionType).Msg("record interaction failed")
		return false
	}
	return true
}

// ConfirmPayment applies a completed payment of paymentType. source is
// "redirect" or "webhook". A payment for a user without a record creates
// a minimal one so the payment is not lost.
func (s *PaymentRecordService) ConfirmPayment(ctx context.Context, userID, paymentType, sessionID, source string) bool {
	now := s.now().UTC()
	update := models.StatusUpdate{
		Status:      models.StatusForPaymentType(paymentType),
		CompletedAt: now,
		SessionID:   sessionID,
	}

	err := s.store.UpdatePaymentStatus(ctx, userID, update)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn().Str("user_id", userID).Str("source", source).Msg("payment confirmed for unknown user, creating record")
		rec := models.PaymentRecord{
			UserID:             userID,
			PaymentStatus:      update.Status,
			CreatedAt:          now,
			PaymentCompletedAt: &now,
			StripeSessionID:    sessionID,
		}
		err = s.store.UpsertPaymentRecord(ctx, userID, rec)
	}
	metrics.ObserveStorage(s.store.Name(), "update_status", err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("source", source).Msg("update payment status failed")
		return false
	}

	metrics.IncConfirmation(source, string(update.Status))
	s.logger.Info().
		Str("user_id", userID).
		Str("payment_type", paymentType).
		Str("status", string(update.Status)).
		Str("source", source).
		Msg("payment confirmed")
	return true
}

// GetPaymentRecord returns the full record, storage.ErrNotFound when absent
func (s *PaymentRecordService) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	return s.store.GetPaymentRecord(ctx, userID)
}

func (s *PaymentRecordService) ListInteractions(ctx context.Context, userID string) ([]models.InteractionRecord, error) {
	return s.store.ListInteractions(ctx, userID)
}
