package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"payment_options_echo/internal/models"
	"payment_options_echo/internal/storage"
)

const DefaultRecordCacheTTL = 30 * time.Second

// CachedStore caches payment record reads of the wrapped Store. Every write
// bumps a per-user version and cached entries are keyed by version, so a
// read that raced a write can only fill a key nobody asks for again.
type CachedStore struct {
	storage.Store
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedStore(store storage.Store, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultRecordCacheTTL
	}
	return &CachedStore{Store: store, cache: cache, ttl: ttl, logger: logger}
}

func recordVersionKey(userID string) string {
	return "payment_record_version:" + userID
}

func recordCacheKey(userID string, version int64) string {
	return fmt.Sprintf("payment_record:%s:v%d", userID, version)
}

func (s *CachedStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	version, err := s.cache.Counter(ctx, recordVersionKey(userID))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("cache unavailable, reading backend")
		return s.Store.GetPaymentRecord(ctx, userID)
	}

	rec, err := GetOrSet(s.cache, ctx, recordCacheKey(userID, version), s.ttl, func() (models.PaymentRecord, error) {
		r, err := s.Store.GetPaymentRecord(ctx, userID)
		if err != nil {
			return models.PaymentRecord{}, err
		}
		return *r, nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertPaymentRecord goes straight to the backend, which decides what
// confirmed state to keep from its own data, never from the cache
func (s *CachedStore) UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) error {
	err := s.Store.UpsertPaymentRecord(ctx, userID, rec)
	s.invalidate(ctx, userID)
	return err
}

func (s *CachedStore) UpdatePaymentStatus(ctx context.Context, userID string, update models.StatusUpdate) error {
	err := s.Store.UpdatePaymentStatus(ctx, userID, update)
	s.invalidate(ctx, userID)
	return err
}

func (s *CachedStore) invalidate(ctx context.Context, userID string) {
	if _, err := s.cache.Incr(ctx, recordVersionKey(userID)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
	}
}
