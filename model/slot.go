package model

import "time"

// SlotRecord is one persisted occupied inventory slot.
// Empty slots have no row; the row is deleted when the slot empties.
type SlotRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TableID   string    `gorm:"uniqueIndex:idx_slot_table_index;size:64;not null" json:"table_id"`
	SlotIndex int       `gorm:"uniqueIndex:idx_slot_table_index;not null" json:"slot_index"`
	ItemID    string    `gorm:"size:64;not null" json:"item_id"`
	Count     int       `gorm:"not null" json:"count"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
