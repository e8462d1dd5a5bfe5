package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"payment_options_echo/internal/models"
	"payment_options_echo/internal/storage"
)

var errMiss = errors.New("cache miss")

type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]int64
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, counters: map[string]int64{}}
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return errMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	b, _ := json.Marshal(value)
	c.data[key] = b
	return true, nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memCache) Counter(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

// countingStore counts reads that reach the backend
type countingStore struct {
	storage.Store
	reads int
}

func (s *countingStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	s.reads++
	return s.Store.GetPaymentRecord(ctx, userID)
}

func TestCachedStore(t *testing.T) {
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := &countingStore{Store: fs}
	cache := newMemCache()
	store := NewCachedStore(backend, cache, time.Minute, zerolog.New(io.Discard))
	ctx := context.Background()

	if _, err := store.GetPaymentRecord(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing record error = %v, want ErrNotFound", err)
	}
	if len(cache.data) != 0 {
		t.Fatal("not-found result was cached")
	}

	if err := store.UpsertPaymentRecord(ctx, "u1", models.PaymentRecord{UserID: "u1", PaymentStatus: models.PaymentStatusNone}); err != nil {
		t.Fatal(err)
	}
	backend.reads = 0

	for i := 0; i < 3; i++ {
		rec, err := store.GetPaymentRecord(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if rec.PaymentStatus != models.PaymentStatusNone {
			t.Errorf("status = %q", rec.PaymentStatus)
		}
	}
	if backend.reads != 1 {
		t.Errorf("backend reads = %d, want 1", backend.reads)
	}

	err = store.UpdatePaymentStatus(ctx, "u1", models.StatusUpdate{Status: models.PaymentStatusDepositPaid, CompletedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	rec, err := store.GetPaymentRecord(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PaymentStatus != models.PaymentStatusDepositPaid {
		t.Errorf("status after update = %q, want deposit_paid (stale cache?)", rec.PaymentStatus)
	}
	if store.Name() != "file" {
		t.Errorf("Name() = %q", store.Name())
	}
}

// slowReadStore lets a write land after the backend read but before the
// read result is cached
type slowReadStore struct {
	storage.Store
	onRead func()
}

func (s *slowReadStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	rec, err := s.Store.GetPaymentRecord(ctx, userID)
	if s.onRead != nil {
		hook := s.onRead
		s.onRead = nil
		hook()
	}
	return rec, err
}

func TestCachedStoreDoesNotServeReadThatRacedAWrite(t *testing.T) {
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := &slowReadStore{Store: fs}
	store := NewCachedStore(backend, newMemCache(), time.Minute, zerolog.New(io.Discard))
	ctx := context.Background()

	if err := store.UpsertPaymentRecord(ctx, "u1", models.PaymentRecord{UserID: "u1", PaymentStatus: models.PaymentStatusNone}); err != nil {
		t.Fatal(err)
	}

	backend.onRead = func() {
		err := store.UpdatePaymentStatus(ctx, "u1", models.StatusUpdate{Status: models.PaymentStatusFullPaid, CompletedAt: time.Now()})
		if err != nil {
			t.Errorf("UpdatePaymentStatus() error = %v", err)
		}
	}
	// this read fetched the pre-update record
	if _, err := store.GetPaymentRecord(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	rec, err := store.GetPaymentRecord(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PaymentStatus != models.PaymentStatusFullPaid {
		t.Errorf("status = %q, want full_paid (stale entry served)", rec.PaymentStatus)
	}
}
