package services

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"payment_options_echo/internal/models"
)

// InitDB opens the postgres connection used for the webhook audit log
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.PaymentCallbackHistory{})
}

// CallbackHistoryRecorder persists verified provider webhooks
type CallbackHistoryRecorder struct {
	db *gorm.DB
}

func NewCallbackHistoryRecorder(db *gorm.DB) *CallbackHistoryRecorder {
	return &CallbackHistoryRecorder{db: db}
}

// Record inserts the entry. Redelivered events with a known EventID are ignored.
func (r *CallbackHistoryRecorder) Record(ctx context.Context, entry *models.PaymentCallbackHistory) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(entry).Error
}
