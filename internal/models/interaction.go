package models

import "time"

// InteractionRecord is an append-only log entry of something a user did
type InteractionRecord struct {
	UserID    string                 `json:"userId" firestore:"userId"`
	Type      string                 `json:"type" firestore:"type"`
	Data      map[string]interface{} `json:"data" firestore:"data"`
	Timestamp time.Time              `json:"timestamp" firestore:"timestamp"`
}
