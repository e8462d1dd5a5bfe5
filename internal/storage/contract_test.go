package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment_options_echo/internal/models"
)

// runStoreContract exercises the behaviour every backend must share
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	record := func(userID string) models.PaymentRecord {
		return models.PaymentRecord{
			UserID:        userID,
			Email:         userID + "@example.com",
			PackageType:   "starter",
			PackagePrice:  1000,
			DepositAmount: 500,
			PaymentStatus: models.PaymentStatusNone,
			DepositLink:   "https://buy.stripe.com/deposit-" + userID,
			FullLink:      "https://buy.stripe.com/full-" + userID,
			CreatedAt:     created,
		}
	}

	t.Run("unknown user is not found", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.GetPaymentRecord(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetPaymentRecord() error = %v; want ErrNotFound", err)
		}
	})

	t.Run("upsert then get", func(t *testing.T) {
		s := newStore(t)
		if err := s.UpsertPaymentRecord(ctx, "u1", record("u1")); err != nil {
			t.Fatalf("UpsertPaymentRecord() error = %v", err)
		}
		got, err := s.GetPaymentRecord(ctx, "u1")
		if err != nil {
			t.Fatalf("GetPaymentRecord() error = %v", err)
		}
		if got.PaymentStatus != models.PaymentStatusNone {
			t.Errorf("status = %q; want none", got.PaymentStatus)
		}
		if got.PackagePrice != 1000 || got.PackageType != "starter" {
			t.Errorf("got %+v; want starter/1000", got)
		}
		if got.DepositLink != "https://buy.stripe.com/deposit-u1" || got.FullLink != "https://buy.stripe.com/full-u1" {
			t.Errorf("links = %q, %q", got.DepositLink, got.FullLink)
		}
	})

	t.Run("second upsert replaces the first", func(t *testing.T) {
		s := newStore(t)
		first := record("u1")
		second := record("u1")
		second.PackageType = "premium"
		second.PackagePrice = 3000
		if err := s.UpsertPaymentRecord(ctx, "u1", first); err != nil {
			t.Fatal(err)
		}
		if err := s.UpsertPaymentRecord(ctx, "u1", second); err != nil {
			t.Fatal(err)
		}
		got, err := s.GetPaymentRecord(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if got.PackageType != "premium" || got.PackagePrice != 3000 {
			t.Errorf("got %s/%d; want premium/3000", got.PackageType, got.PackagePrice)
		}
	})

	t.Run("status moves forward only", func(t *testing.T) {
		s := newStore(t)
		if err := s.UpsertPaymentRecord(ctx, "u1", record("u1")); err != nil {
			t.Fatal(err)
		}

		steps := []struct {
			update models.PaymentStatus
			want   models.PaymentStatus
		}{
			{update: models.PaymentStatusDepositPaid, want: models.PaymentStatusDepositPaid},
			{update: models.PaymentStatusNone, want: models.PaymentStatusDepositPaid},
			{update: models.PaymentStatusFullPaid, want: models.PaymentStatusFullPaid},
			{update: models.PaymentStatusDepositPaid, want: models.PaymentStatusFullPaid},
		}
		for _, step := range steps {
			err := s.UpdatePaymentStatus(ctx, "u1", models.StatusUpdate{Status: step.update, CompletedAt: created.Add(time.Hour), SessionID: "cs_test"})
			if err != nil {
				t.Fatalf("UpdatePaymentStatus(%s) error = %v", step.update, err)
			}
			got, err := s.GetPaymentRecord(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if got.PaymentStatus != step.want {
				t.Errorf("after %s: status = %q; want %q", step.update, got.PaymentStatus, step.want)
			}
		}

		got, _ := s.GetPaymentRecord(ctx, "u1")
		if got.StripeSessionID != "cs_test" {
			t.Errorf("StripeSessionID = %q; want cs_test", got.StripeSessionID)
		}
		if got.PaymentCompletedAt == nil {
			t.Errorf("PaymentCompletedAt not set")
		}
	})

	t.Run("upsert keeps a confirmed status", func(t *testing.T) {
		s := newStore(t)
		if err := s.UpsertPaymentRecord(ctx, "u1", record("u1")); err != nil {
			t.Fatal(err)
		}
		err := s.UpdatePaymentStatus(ctx, "u1", models.StatusUpdate{Status: models.PaymentStatusFullPaid, CompletedAt: created.Add(time.Hour), SessionID: "cs_paid"})
		if err != nil {
			t.Fatal(err)
		}

		again := record("u1")
		again.DepositLink = "https://buy.stripe.com/deposit-u1-v2"
		if err := s.UpsertPaymentRecord(ctx, "u1", again); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetPaymentRecord(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if got.PaymentStatus != models.PaymentStatusFullPaid {
			t.Errorf("status = %q; want full_paid", got.PaymentStatus)
		}
		if got.StripeSessionID != "cs_paid" || got.PaymentCompletedAt == nil {
			t.Errorf("confirmation lost: session %q, completed %v", got.StripeSessionID, got.PaymentCompletedAt)
		}
		if got.DepositLink != "https://buy.stripe.com/deposit-u1-v2" {
			t.Errorf("DepositLink = %q; want the new link", got.DepositLink)
		}
	})

	t.Run("status update for unknown user", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdatePaymentStatus(ctx, "ghost", models.StatusUpdate{Status: models.PaymentStatusFullPaid, CompletedAt: created})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdatePaymentStatus() error = %v; want ErrNotFound", err)
		}
	})

	t.Run("interactions are additive", func(t *testing.T) {
		s := newStore(t)
		const n = 5
		for i := 0; i < n; i++ {
			rec := models.InteractionRecord{
				UserID:    "u1",
				Type:      "viewed_pricing",
				Data:      map[string]interface{}{"step": float64(i)},
				Timestamp: created.Add(time.Duration(i) * time.Minute),
			}
			if err := s.RecordInteraction(ctx, rec); err != nil {
				t.Fatalf("RecordInteraction() error = %v", err)
			}
		}
		if err := s.RecordInteraction(ctx, models.InteractionRecord{UserID: "u2", Type: "other", Timestamp: created}); err != nil {
			t.Fatal(err)
		}

		got, err := s.ListInteractions(ctx, "u1")
		if err != nil {
			t.Fatalf("ListInteractions() error = %v", err)
		}
		if len(got) != n {
			t.Fatalf("got %d interactions; want %d", len(got), n)
		}
		for _, rec := range got {
			if rec.UserID != "u1" || rec.Type != "viewed_pricing" {
				t.Errorf("unexpected interaction %+v", rec)
			}
		}
		if got[n-1].Data["step"] != float64(n-1) {
			t.Errorf("last interaction data = %v; want step %d", got[n-1].Data, n-1)
		}
	})
}
