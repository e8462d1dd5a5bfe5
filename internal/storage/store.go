package storage

import (
	"context"
	"errors"

	"payment_options_echo/internal/models"
)

// ErrNotFound is returned when no payment record exists for a user
var ErrNotFound = errors.New("payment record not found")

// Store is implemented once per backend. Exactly one Store is active for
// the lifetime of the process.
type Store interface {
	Name() string

	// UpsertPaymentRecord writes the record for userID, replacing any previous
	// one. A status already confirmed for the user is kept (see
	// PaymentRecord.KeepProgress); the check and the write are atomic.
	UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) error
	GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error)
	// UpdatePaymentStatus moves the stored status forward. It is a no-op when
	// the stored status is already at or beyond update.Status.
	UpdatePaymentStatus(ctx context.Context, userID string, update models.StatusUpdate) error

	RecordInteraction(ctx context.Context, rec models.InteractionRecord) error
	ListInteractions(ctx context.Context, userID string) ([]models.InteractionRecord, error)
}
