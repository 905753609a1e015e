package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/model"
	"github.com/tarkoy/clicker-server/testutil"
)

func TestSlotRoundTrip(t *testing.T) {
	store := NewStore(testutil.SetupTestDB(t))

	require.NoError(t, store.SaveSlot("bag", 0, "potion", 3))
	require.NoError(t, store.SaveSlot("bag", 2, "scrap", 10))
	require.NoError(t, store.SaveSlot("stash", 0, "trinket", 1))

	// Upsert: same slot saved twice keeps one row.
	require.NoError(t, store.SaveSlot("bag", 0, "potion", 5))

	recs, err := store.LoadSlots()
	require.NoError(t, err)
	assert.Equal(t, []inventory.SlotRecord{
		{TableID: "bag", Index: 0, ItemID: "potion", Count: 5},
		{TableID: "bag", Index: 2, ItemID: "scrap", Count: 10},
		{TableID: "stash", Index: 0, ItemID: "trinket", Count: 1},
	}, recs)
}

func TestDeleteSlot(t *testing.T) {
	store := NewStore(testutil.SetupTestDB(t))

	require.NoError(t, store.SaveSlot("bag", 0, "potion", 3))
	require.NoError(t, store.DeleteSlot("bag", 0))
	// Deleting an absent row is fine.
	require.NoError(t, store.DeleteSlot("bag", 0))

	recs, err := store.LoadSlots()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMissionRoundTrip(t *testing.T) {
	store := NewStore(testutil.SetupTestDB(t))

	_, _, _, found, err := store.LoadMission()
	require.NoError(t, err)
	assert.False(t, found, "fresh save has no mission row")

	require.NoError(t, store.SaveMission("on_mission", 42.5, 70))
	require.NoError(t, store.SaveMission("on_cooldown", 12.25, 70))

	phase, remaining, chance, found, err := store.LoadMission()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "on_cooldown", phase)
	assert.Equal(t, 12.25, remaining)
	assert.Equal(t, 70, chance)
}

func TestLogMission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewStore(db)

	rewards := []map[string]interface{}{{"item_id": "scrap", "amount": 3}}
	require.NoError(t, store.LogMission(100, true, true, rewards))
	require.NoError(t, store.LogMission(30, false, false, nil))

	var rows []model.MissionLog
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 100, rows[0].Chance)
	assert.True(t, rows[0].Success)
	assert.True(t, rows[0].Skipped)
	assert.JSONEq(t, `[{"item_id":"scrap","amount":3}]`, string(rows[0].Rewards))
	assert.False(t, rows[1].Success)
}

func TestBalanceRoundTrip(t *testing.T) {
	store := NewStore(testutil.SetupTestDB(t))

	_, found, err := store.LoadBalance()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SaveBalance(1500))
	require.NoError(t, store.SaveBalance(1250))

	balance, found, err := store.LoadBalance()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1250), balance)
}

func TestReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewStore(db)

	require.NoError(t, store.SaveSlot("bag", 0, "potion", 3))
	require.NoError(t, store.SaveMission("idle", 0, 50))
	require.NoError(t, store.LogMission(50, true, false, nil))
	require.NoError(t, store.SaveBalance(99))

	// Profiles must survive a game reset.
	prof := model.Profile{Username: "scav", PasswordHash: "x", Status: 1}
	require.NoError(t, db.Create(&prof).Error)

	require.NoError(t, store.Reset())

	recs, err := store.LoadSlots()
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, _, _, found, err := store.LoadMission()
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.LoadBalance()
	require.NoError(t, err)
	assert.False(t, found)

	var profiles int64
	require.NoError(t, db.Model(&model.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}
