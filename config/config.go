package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Scav      ScavConfig      `mapstructure:"scav"`
	Stamina   StaminaConfig   `mapstructure:"stamina"`
	Security  SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | sqlite_memory | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type CatalogConfig struct {
	ItemsPath string `mapstructure:"items_path"`
}

// TableConfig declares one inventory table created at startup.
type TableConfig struct {
	ID       string `mapstructure:"id"`
	Capacity int    `mapstructure:"capacity"`
	Sink     string `mapstructure:"sink"` // "" | "stamina" | "health"
}

// StarterItem is granted once when the save is empty.
type StarterItem struct {
	ItemID string `mapstructure:"item_id"`
	Count  int    `mapstructure:"count"`
}

type InventoryConfig struct {
	Tables       []TableConfig `mapstructure:"tables"`
	StarterTable string        `mapstructure:"starter_table"`
	StarterItems []StarterItem `mapstructure:"starter_items"`
	FlushEveryS  int           `mapstructure:"flush_every_s"`
}

type ScavConfig struct {
	MissionTimeMinS  float64  `mapstructure:"mission_time_min_s"`
	MissionTimeMaxS  float64  `mapstructure:"mission_time_max_s"`
	CooldownTimeMinS float64  `mapstructure:"cooldown_time_min_s"`
	CooldownTimeMaxS float64  `mapstructure:"cooldown_time_max_s"`
	BaseCostPerPoint int      `mapstructure:"base_cost_per_point"`
	CostGrowth       float64  `mapstructure:"cost_growth"` // compounded per character level
	ItemsCountMin    int      `mapstructure:"items_count_min"`
	ItemsCountMax    int      `mapstructure:"items_count_max"`
	ItemTypesMin     int      `mapstructure:"item_types_min"`
	ItemTypesMax     int      `mapstructure:"item_types_max"`
	TargetTable      string   `mapstructure:"target_table"`
	LootPool         []string `mapstructure:"loot_pool"`
}

type StaminaConfig struct {
	BaseIntervalS       float64 `mapstructure:"base_interval_s"`
	BaseIncome          float64 `mapstructure:"base_income"`
	IncomeBonusPerLevel float64 `mapstructure:"income_bonus_per_level"`
	IntervalRedPerLevel float64 `mapstructure:"interval_reduction_per_level"`
	MinIntervalS        float64 `mapstructure:"min_interval_s"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/save.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("catalog.items_path", "./data/items.json")
	v.SetDefault("inventory.starter_table", "Player_Inventory")
	v.SetDefault("inventory.flush_every_s", 60)
	v.SetDefault("scav.mission_time_min_s", 90)
	v.SetDefault("scav.mission_time_max_s", 150)
	v.SetDefault("scav.cooldown_time_min_s", 180)
	v.SetDefault("scav.cooldown_time_max_s", 300)
	v.SetDefault("scav.base_cost_per_point", 10)
	v.SetDefault("scav.cost_growth", 1.05)
	v.SetDefault("scav.items_count_min", 1)
	v.SetDefault("scav.items_count_max", 3)
	v.SetDefault("scav.item_types_min", 1)
	v.SetDefault("scav.item_types_max", 3)
	v.SetDefault("scav.target_table", "Player_Inventory")
	v.SetDefault("stamina.base_interval_s", 1)
	v.SetDefault("stamina.base_income", 1)
	v.SetDefault("stamina.income_bonus_per_level", 0.2)
	v.SetDefault("stamina.interval_reduction_per_level", 0.2)
	v.SetDefault("stamina.min_interval_s", 0.1)
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
