package model

import "time"

// LedgerRecord is the single persisted points balance row.
type LedgerRecord struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Balance   int64     `gorm:"not null" json:"balance"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
