package model

import (
	"time"

	"gorm.io/datatypes"
)

// MissionRecord is the single persisted Scavenger-run state row.
// The timer stores remaining seconds, not a wall-clock deadline: time
// elapsed while the server is down is not credited.
type MissionRecord struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Phase            string    `gorm:"size:16;not null" json:"phase"`
	RemainingSeconds float64   `gorm:"not null" json:"remaining_seconds"`
	SuccessChance    int       `gorm:"not null" json:"success_chance"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MissionLog records one resolved Scavenger run and its rewards.
type MissionLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Chance    int            `gorm:"not null" json:"chance"`
	Success   bool           `gorm:"not null" json:"success"`
	Skipped   bool           `gorm:"default:false" json:"skipped"`
	Rewards   datatypes.JSON `json:"rewards"`
	CreatedAt time.Time      `gorm:"index:idx_mission_log_created;autoCreateTime" json:"created_at"`
}
