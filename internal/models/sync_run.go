package models

import "time"

// SyncRun records one resync of the aggregate store (PostgreSQL)
type SyncRun struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	RunID         string     `json:"run_id" gorm:"uniqueIndex;size:36"`
	Mode          string     `json:"mode" gorm:"size:16;index"`
	Trigger       string     `json:"trigger" gorm:"size:16"` // "api" or "schedule"
	Status        string     `json:"status" gorm:"size:16;index"`
	InsertedCount int        `json:"inserted_count"`
	Created       int        `json:"created"`
	Updated       int        `json:"updated"`
	Removed       int        `json:"removed"`
	EventCount    int        `json:"event_count"`
	ProductCount  int        `json:"product_count"`
	OtherCount    int        `json:"other_count"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at" gorm:"index"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Sync run statuses
const (
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
	SyncStatusPartial   = "partial"
)
