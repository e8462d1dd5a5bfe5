package storage

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"payment_options_echo/internal/models"
)

const (
	paymentsCollection     = "payments"
	interactionsCollection = "interactions"
)

// FirestoreStore keeps one document per user in "payments" and appends
// interactions to "interactions".
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Name() string { return "firestore" }

// Ping reads at most one document to confirm the database is reachable
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(paymentsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}

// UpsertPaymentRecord overwrites the document inside a transaction so a
// confirmation committed concurrently is never reset.
func (s *FirestoreStore) UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) error {
	rec.UserID = userID
	ref := s.client.Collection(paymentsCollection).Doc(userID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next := rec
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var prev models.PaymentRecord
			if err := snap.DataTo(&prev); err != nil {
				return fmt.Errorf("decode payment %s: %w", userID, err)
			}
			next.KeepProgress(&prev)
		case status.Code(err) != codes.NotFound:
			return err
		}
		return tx.Set(ref, next)
	})
	if err != nil {
		return fmt.Errorf("set payment %s: %w", userID, err)
	}
	return nil
}

func (s *FirestoreStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	snap, err := s.client.Collection(paymentsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment %s: %w", userID, err)
	}

	var rec models.PaymentRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode payment %s: %w", userID, err)
	}
	return &rec, nil
}

func (s *FirestoreStore) UpdatePaymentStatus(ctx context.Context, userID string, update models.StatusUpdate) error {
	ref := s.client.Collection(paymentsCollection).Doc(userID)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var rec models.PaymentRecord
		if err := snap.DataTo(&rec); err != nil {
			return fmt.Errorf("decode payment %s: %w", userID, err)
		}
		if !rec.Apply(update) {
			return nil
		}

		updates := []firestore.Update{
			{Path: "paymentStatus", Value: rec.PaymentStatus},
			{Path: "paymentCompletedAt", Value: rec.PaymentCompletedAt},
		}
		if update.SessionID != "" {
			updates = append(updates, firestore.Update{Path: "stripeSessionId", Value: update.SessionID})
		}
		return tx.Update(ref, updates)
	})
}

func (s *FirestoreStore) RecordInteraction(ctx context.Context, rec models.InteractionRecord) error {
	if _, _, err := s.client.Collection(interactionsCollection).Add(ctx, rec); err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListInteractions(ctx context.Context, userID string) ([]models.InteractionRecord, error) {
	iter := s.client.Collection(interactionsCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var out []models.InteractionRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list interactions: %w", err)
		}
		var rec models.InteractionRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode interaction %s: %w", snap.Ref.ID, err)
		}
		out = append(out, rec)
	}

	// ordering in memory avoids requiring a composite index
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
