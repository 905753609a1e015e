package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, "Player_Inventory", cfg.Inventory.StarterTable)
	assert.Equal(t, 60, cfg.Inventory.FlushEveryS)
	assert.Equal(t, 10, cfg.Scav.BaseCostPerPoint)
	assert.Equal(t, 1.05, cfg.Scav.CostGrowth)
	assert.Equal(t, 90.0, cfg.Scav.MissionTimeMinS)
	assert.Equal(t, 72*time.Hour, cfg.Security.JWTTTLH)
	assert.Equal(t, 50.0, cfg.Security.RateLimitRPS)
}

func TestLoadFullConfig(t *testing.T) {
	payload := `
server:
  port: 8081
  debug: true
  admin_key: sekrit
database:
  mode: sqlite_memory
inventory:
  tables:
    - id: Player_Inventory
      capacity: 10
    - id: StaminaSlot
      capacity: 1
      sink: stamina
  starter_items:
    - item_id: canned_meat
      count: 2
scav:
  target_table: Player_Inventory
  loot_pool: [bolts, wires]
security:
  jwt_secret: hush
  jwt_ttl_h: 2h
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "sekrit", cfg.Server.AdminKey)
	assert.Equal(t, "sqlite_memory", cfg.Database.Mode)
	require.Len(t, cfg.Inventory.Tables, 2)
	assert.Equal(t, "stamina", cfg.Inventory.Tables[1].Sink)
	require.Len(t, cfg.Inventory.StarterItems, 1)
	assert.Equal(t, 2, cfg.Inventory.StarterItems[0].Count)
	assert.Equal(t, []string{"bolts", "wires"}, cfg.Scav.LootPool)
	assert.Equal(t, 2*time.Hour, cfg.Security.JWTTTLH)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
