package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tarkoy/clicker-server/cache"
	dbsqlite "github.com/tarkoy/clicker-server/db/sqlite"
	"github.com/tarkoy/clicker-server/model"
	"github.com/tarkoy/clicker-server/resource"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// Each call gets its own database, so parallel tests do not interfere.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates an in-process LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{}) // empty RedisAddr → LocalCache
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}

// SetupCatalog builds the fixed item catalog the game tests share.
func SetupCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	cat, err := resource.NewCatalog([]*resource.ItemDefinition{
		{ID: "potion", DisplayName: "Potion", MaxStack: 5, Category: resource.CategoryMedicine, Value: 30},
		{ID: "ration", DisplayName: "Ration", MaxStack: 3, Category: resource.CategoryFood, Value: 12},
		{ID: "scrap", DisplayName: "Scrap Metal", MaxStack: 10, Category: resource.CategoryLoot, Value: 8},
		{ID: "trinket", DisplayName: "Trinket", MaxStack: 1, Category: resource.CategoryLoot, Value: 120},
	})
	require.NoError(t, err, "SetupCatalog")
	return cat
}
