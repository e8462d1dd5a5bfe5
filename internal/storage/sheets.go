package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"payment_options_echo/internal/models"
)

const InteractionsTab = "Interactions"

// RawDataKey holds an interaction data cell that is not valid JSON
const RawDataKey = "raw"

var (
	paymentHeaders = []interface{}{
		"userId", "email", "packageType", "packagePrice", "paymentStatus",
		"depositLink", "fullLink", "timestamp", "paymentCompletedAt", "stripeSessionId",
	}
	interactionHeaders = []interface{}{"userId", "type", "data", "timestamp"}
)

// payment columns, 0-indexed
const (
	colUserID = iota
	colEmail
	colPackageType
	colPackagePrice
	colPaymentStatus
	colDepositLink
	colFullLink
	colTimestamp
	colCompletedAt
	colSessionID
)

// sheetValues is the part of the Sheets API the store depends on
type sheetValues interface {
	ReadAll(ctx context.Context, tab string) ([][]interface{}, error)
	AppendRow(ctx context.Context, tab string, row []interface{}) error
	UpdateRow(ctx context.Context, tab string, rowNum int, row []interface{}) error
}

// SheetsStore keeps payment rows on the first worksheet and interactions on
// a separate tab. One row per user: upserts update the existing row.
type SheetsStore struct {
	values          sheetValues
	paymentsTab     string
	interactionsTab string

	// serializes find-then-write sequences so concurrent upserts for the
	// same user do not append duplicate rows
	mu sync.Mutex
}

func NewSheetsStore(values sheetValues, paymentsTab, interactionsTab string) *SheetsStore {
	return &SheetsStore{values: values, paymentsTab: paymentsTab, interactionsTab: interactionsTab}
}

// OpenSheetsStore resolves the payments worksheet, makes sure the interactions
// worksheet exists and writes headers into empty tabs.
func OpenSheetsStore(ctx context.Context, client *SheetsClient) (*SheetsStore, error) {
	paymentsTab, err := client.FirstSheetTitle(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve payments worksheet: %w", err)
	}
	if err := client.EnsureSheet(ctx, InteractionsTab); err != nil {
		return nil, err
	}

	s := NewSheetsStore(client, paymentsTab, InteractionsTab)
	if err := s.ensureHeaders(ctx, paymentsTab, paymentHeaders); err != nil {
		return nil, err
	}
	if err := s.ensureHeaders(ctx, InteractionsTab, interactionHeaders); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SheetsStore) Name() string { return "sheets" }

func (s *SheetsStore) UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) error {
	rec.UserID = userID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, rowNum, err := s.findPayment(ctx, userID)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		return s.values.AppendRow(ctx, s.paymentsTab, paymentRow(rec))
	}
	rec.KeepProgress(prev)
	return s.values.UpdateRow(ctx, s.paymentsTab, rowNum, paymentRow(rec))
}

func (s *SheetsStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	rec, rowNum, err := s.findPayment(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rowNum == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *SheetsStore) UpdatePaymentStatus(ctx context.Context, userID string, update models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, rowNum, err := s.findPayment(ctx, userID)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		return ErrNotFound
	}
	if !rec.Apply(update) {
		return nil
	}
	return s.values.UpdateRow(ctx, s.paymentsTab, rowNum, paymentRow(*rec))
}

func (s *SheetsStore) RecordInteraction(ctx context.Context, rec models.InteractionRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal interaction data: %w", err)
	}
	return s.values.AppendRow(ctx, s.interactionsTab, []interface{}{
		rec.UserID, rec.Type, string(data), rec.Timestamp.Format(time.RFC3339),
	})
}

func (s *SheetsStore) ListInteractions(ctx context.Context, userID string) ([]models.InteractionRecord, error) {
	values, err := s.values.ReadAll(ctx, s.interactionsTab)
	if err != nil {
		return nil, err
	}

	var out []models.InteractionRecord
	for i := dataStart(values); i < len(values); i++ {
		row := values[i]
		if get(row, 0) != userID {
			continue
		}
		rec := models.InteractionRecord{
			UserID:    userID,
			Type:      get(row, 1),
			Timestamp: parseTime(get(row, 3)),
		}
		if raw := get(row, 2); raw != "" {
			if err := json.Unmarshal([]byte(raw), &rec.Data); err != nil {
				// hand-edited cell: keep the text rather than an empty record
				rec.Data = map[string]interface{}{RawDataKey: raw}
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// findPayment returns the record and its 1-indexed row number, or row 0 if absent
func (s *SheetsStore) findPayment(ctx context.Context, userID string) (*models.PaymentRecord, int, error) {
	values, err := s.values.ReadAll(ctx, s.paymentsTab)
	if err != nil {
		return nil, 0, err
	}
	for i := dataStart(values); i < len(values); i++ {
		row := values[i]
		if get(row, colUserID) == userID {
			return paymentFromRow(row), i + 1, nil
		}
	}
	return nil, 0, nil
}

func (s *SheetsStore) ensureHeaders(ctx context.Context, tab string, headers []interface{}) error {
	values, err := s.values.ReadAll(ctx, tab)
	if err != nil {
		return fmt.Errorf("read %s: %w", tab, err)
	}
	if len(values) > 0 {
		return nil
	}
	return s.values.AppendRow(ctx, tab, headers)
}

func paymentRow(rec models.PaymentRecord) []interface{} {
	completedAt := ""
	if rec.PaymentCompletedAt != nil {
		completedAt = rec.PaymentCompletedAt.Format(time.RFC3339)
	}
	status := rec.PaymentStatus
	if status == "" {
		status = models.PaymentStatusNone
	}
	return []interface{}{
		rec.UserID,
		rec.Email,
		rec.PackageType,
		rec.PackagePrice,
		string(status),
		rec.DepositLink,
		rec.FullLink,
		rec.CreatedAt.Format(time.RFC3339),
		completedAt,
		rec.StripeSessionID,
	}
}

func paymentFromRow(row []interface{}) *models.PaymentRecord {
	rec := &models.PaymentRecord{
		UserID:          get(row, colUserID),
		Email:           get(row, colEmail),
		PackageType:     get(row, colPackageType),
		PackagePrice:    parseInt(get(row, colPackagePrice)),
		PaymentStatus:   models.ParsePaymentStatus(get(row, colPaymentStatus)),
		DepositLink:     get(row, colDepositLink),
		FullLink:        get(row, colFullLink),
		CreatedAt:       parseTime(get(row, colTimestamp)),
		StripeSessionID: get(row, colSessionID),
	}
	if t := parseTime(get(row, colCompletedAt)); !t.IsZero() {
		rec.PaymentCompletedAt = &t
	}
	return rec
}

// dataStart skips the header row when one is present
func dataStart(values [][]interface{}) int {
	if len(values) > 0 && get(values[0], 0) == "userId" {
		return 1
	}
	return 0
}

func get(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func parseInt(s string) int64 {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
