package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayStripe PaymentGateway = "stripe"
)

// PaymentCallbackHistory is an audit row for every verified provider webhook
type PaymentCallbackHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	EventID        string          `gorm:"type:varchar(100);uniqueIndex" json:"event_id"`
	EventType      string          `gorm:"type:varchar(100);index" json:"event_type"`
	UserID         string          `gorm:"type:varchar(255);index" json:"user_id"`
	PaymentType    string          `gorm:"type:varchar(50)" json:"payment_type"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
