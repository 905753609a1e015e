package persist

import (
	"encoding/json"
	"errors"

	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Singleton rows (mission state, ledger balance) all live at this key.
const singletonID = 1

// Store persists flat game-state records to the database. It knows record
// shapes only; all behavior lives in the services that call it.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ---- slots ----

// SaveSlot upserts the record for one occupied slot.
func (s *Store) SaveSlot(tableID string, index int, itemID string, count int) error {
	rec := model.SlotRecord{TableID: tableID, SlotIndex: index, ItemID: itemID, Count: count}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_id"}, {Name: "slot_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_id", "count", "updated_at"}),
	}).Create(&rec).Error
}

// DeleteSlot removes the record for a slot that emptied. Deleting a row
// that does not exist is not an error.
func (s *Store) DeleteSlot(tableID string, index int) error {
	return s.db.Where("table_id = ? AND slot_index = ?", tableID, index).
		Delete(&model.SlotRecord{}).Error
}

// LoadSlots returns every persisted slot record.
func (s *Store) LoadSlots() ([]inventory.SlotRecord, error) {
	var rows []model.SlotRecord
	if err := s.db.Order("table_id, slot_index").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.SlotRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventory.SlotRecord{
			TableID: r.TableID,
			Index:   r.SlotIndex,
			ItemID:  r.ItemID,
			Count:   r.Count,
		})
	}
	return out, nil
}

// ---- mission ----

// SaveMission upserts the single mission state row.
func (s *Store) SaveMission(phase string, remainingSeconds float64, successChance int) error {
	rec := model.MissionRecord{
		ID:               singletonID,
		Phase:            phase,
		RemainingSeconds: remainingSeconds,
		SuccessChance:    successChance,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phase", "remaining_seconds", "success_chance", "updated_at"}),
	}).Create(&rec).Error
}

// LoadMission returns the persisted mission state, or found=false when no
// run was ever saved.
func (s *Store) LoadMission() (phase string, remainingSeconds float64, successChance int, found bool, err error) {
	var rec model.MissionRecord
	e := s.db.First(&rec, singletonID).Error
	if errors.Is(e, gorm.ErrRecordNotFound) {
		return "", 0, 0, false, nil
	}
	if e != nil {
		return "", 0, 0, false, e
	}
	return rec.Phase, rec.RemainingSeconds, rec.SuccessChance, true, nil
}

// LogMission appends one resolved run to the mission log. rewards may be
// any JSON-serializable value.
func (s *Store) LogMission(chance int, success, skipped bool, rewards interface{}) error {
	payload, err := json.Marshal(rewards)
	if err != nil {
		return err
	}
	rec := model.MissionLog{
		Chance:  chance,
		Success: success,
		Skipped: skipped,
		Rewards: datatypes.JSON(payload),
	}
	return s.db.Create(&rec).Error
}

// ---- ledger ----

// SaveBalance upserts the single points balance row.
func (s *Store) SaveBalance(balance int64) error {
	rec := model.LedgerRecord{ID: singletonID, Balance: balance}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&rec).Error
}

// LoadBalance returns the persisted balance, or found=false when none was
// ever saved.
func (s *Store) LoadBalance() (balance int64, found bool, err error) {
	var rec model.LedgerRecord
	e := s.db.First(&rec, singletonID).Error
	if errors.Is(e, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if e != nil {
		return 0, false, e
	}
	return rec.Balance, true, nil
}

// ---- reset ----

// Reset wipes all saved game state: slots, mission state, mission log, and
// ledger. Profiles and audit history survive.
func (s *Store) Reset() error {
	for _, m := range []interface{}{
		&model.SlotRecord{},
		&model.MissionRecord{},
		&model.MissionLog{},
		&model.LedgerRecord{},
	} {
		if err := s.db.Where("1 = 1").Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
