package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"payment_options_echo/internal/models"
)

const (
	paymentsFile     = "payments.json"
	interactionsFile = "interactions.json"
)

// paymentLine is one line of payments.json
type paymentLine struct {
	UserID    string               `json:"user_id"`
	Data      models.PaymentRecord `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
}

// FileStore keeps newline-delimited JSON files in a local directory. Files are
// append-only; the latest payment line for a user is authoritative.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) UpsertPaymentRecord(ctx context.Context, userID string, rec models.PaymentRecord) error {
	rec.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.latestPayment(userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	rec.KeepProgress(prev)
	return s.appendLineLocked(paymentsFile, paymentLine{UserID: userID, Data: rec, Timestamp: time.Now()})
}

func (s *FileStore) GetPaymentRecord(ctx context.Context, userID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestPayment(userID)
}

func (s *FileStore) UpdatePaymentStatus(ctx context.Context, userID string, update models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.latestPayment(userID)
	if err != nil {
		return err
	}
	if !rec.Apply(update) {
		return nil
	}
	return s.appendLineLocked(paymentsFile, paymentLine{UserID: userID, Data: *rec, Timestamp: time.Now()})
}

func (s *FileStore) RecordInteraction(ctx context.Context, rec models.InteractionRecord) error {
	return s.appendLine(interactionsFile, rec)
}

func (s *FileStore) ListInteractions(ctx context.Context, userID string) ([]models.InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.InteractionRecord
	err := s.scan(interactionsFile, func(line []byte) error {
		var rec models.InteractionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil // skip torn or hand-edited lines
		}
		if rec.UserID == userID {
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *FileStore) latestPayment(userID string) (*models.PaymentRecord, error) {
	var found *models.PaymentRecord
	err := s.scan(paymentsFile, func(line []byte) error {
		var pl paymentLine
		if err := json.Unmarshal(line, &pl); err != nil {
			return nil
		}
		if pl.UserID == userID {
			rec := pl.Data
			found = &rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *FileStore) appendLine(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLineLocked(name, v)
}

func (s *FileStore) appendLineLocked(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s line: %w", name, err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// scan calls fn for every non-empty line. A missing file is an empty scan.
func (s *FileStore) scan(name string, fn func(line []byte) error) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s line %d: %w", name, lineNo, err)
		}
	}
	return scanner.Err()
}
