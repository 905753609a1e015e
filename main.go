package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/tarkoy/clicker-server/api/rest"
	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/cache"
	"github.com/tarkoy/clicker-server/config"
	dbadapter "github.com/tarkoy/clicker-server/db"
	"github.com/tarkoy/clicker-server/game/character"
	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/game/points"
	"github.com/tarkoy/clicker-server/game/scav"
	mw "github.com/tarkoy/clicker-server/middleware"
	"github.com/tarkoy/clicker-server/model"
	"github.com/tarkoy/clicker-server/persist"
	"github.com/tarkoy/clicker-server/resource"
	"github.com/tarkoy/clicker-server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Item Catalog ----
	catalog, err := resource.LoadCatalog(cfg.Catalog.ItemsPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Item catalog loaded", zap.Int("items", catalog.Len()))

	// ---- Game Systems ----
	store := persist.NewStore(db)
	charState := character.NewState(logger)
	engine := inventory.NewEngine(catalog, store, logger)

	for _, tc := range cfg.Inventory.Tables {
		var err error
		switch tc.Sink {
		case "":
			_, err = engine.CreateTable(tc.ID, tc.Capacity)
		case "stamina":
			// Food dropped here converts into stamina progress.
			_, err = engine.CreateSinkTable(tc.ID, inventory.SinkSpec{
				Category: resource.CategoryFood,
				Effect: func(def *resource.ItemDefinition) {
					charState.AddStaminaProgress(float64(def.Value))
				},
			})
		case "health":
			// Medicine heals the broken arm; rejected while healthy.
			_, err = engine.CreateSinkTable(tc.ID, inventory.SinkSpec{
				Category:     resource.CategoryMedicine,
				Precondition: charState.ArmBroken,
				Effect: func(*resource.ItemDefinition) {
					charState.HealArm()
				},
			})
		default:
			log.Fatalf("inventory: table %s: unknown sink kind %q", tc.ID, tc.Sink)
		}
		if err != nil {
			log.Fatalf("inventory: %v", err)
		}
	}

	restored, err := engine.LoadFromStore()
	if err != nil {
		log.Fatalf("inventory load: %v", err)
	}
	if restored == 0 {
		for _, it := range cfg.Inventory.StarterItems {
			if _, err := engine.AddItem(cfg.Inventory.StarterTable, it.ItemID, it.Count); err != nil {
				logger.Warn("starter item grant failed",
					zap.String("item", it.ItemID), zap.Error(err))
			}
		}
		logger.Info("fresh save, starter items granted",
			zap.Int("stacks", len(cfg.Inventory.StarterItems)))
	} else {
		logger.Info("inventory restored", zap.Int("slots", restored))
	}

	ledger := points.NewLedger(store, logger)
	if err := ledger.Load(); err != nil {
		log.Fatalf("ledger load: %v", err)
	}
	income := points.NewIncome(cfg.Stamina, ledger, charState.StaminaLevel, logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctrl, err := scav.NewController(cfg.Scav, engine, ledger, catalog, charState.Level, rng, store, logger)
	if err != nil {
		log.Fatalf("scav: %v", err)
	}
	if err := ctrl.Load(); err != nil {
		log.Fatalf("scav load: %v", err)
	}

	// ---- Periodic Scheduler Tasks ----
	// Tickers feed measured wall-clock deltas into the tick functions so a
	// stalled scheduler never loses time.
	sched := scheduler.New(logger)
	defer sched.Stop()

	lastScav := time.Now()
	sched.AddTicker("scav_tick", time.Second, func() {
		now := time.Now()
		ctrl.Tick(now.Sub(lastScav).Seconds())
		lastScav = now
	})

	lastIncome := time.Now()
	sched.AddTicker("passive_income", time.Second, func() {
		now := time.Now()
		income.Tick(now.Sub(lastIncome).Seconds())
		lastIncome = now
	})

	sched.AddTicker("auto_flush", time.Duration(cfg.Inventory.FlushEveryS)*time.Second, func() {
		if err := engine.Flush(); err != nil {
			logger.Warn("inventory flush incomplete", zap.Error(err))
		}
		if err := ledger.Flush(); err != nil {
			logger.Warn("ledger flush failed", zap.Error(err))
		}
		if err := ctrl.Flush(); err != nil {
			logger.Warn("mission flush failed", zap.Error(err))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	invH := apirest.NewInventoryHandler(engine, auditSvc)
	scavH := apirest.NewScavHandler(ctrl, auditSvc)
	shopH := apirest.NewShopHandler(engine, ledger, catalog, auditSvc)
	charH := apirest.NewCharacterHandler(charState, auditSvc)
	adminH := apirest.NewAdminHandler(store, engine, ctrl, ledger, sched, auditSvc, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)

		game := api.Group("")
		game.Use(mw.Auth(cfg.Security, c))

		game.GET("/inventory", invH.List)
		game.GET("/inventory/:table", invH.GetTable)
		game.POST("/inventory/transfer", invH.Transfer)
		game.POST("/inventory/add", invH.Add)
		game.POST("/inventory/slot/clear", invH.ClearSlot)

		game.GET("/scav", scavH.Status)
		game.POST("/scav/start", scavH.Start)
		game.POST("/scav/skip", scavH.SkipMission)
		game.POST("/scav/skip-cooldown", scavH.SkipCooldown)

		game.GET("/points", shopH.Balance)
		game.POST("/shop/sell", shopH.Sell)

		game.GET("/character", charH.Status)
		game.POST("/character/arm", charH.SetArm)
		game.POST("/character/level", charH.SetLevel)
		game.POST("/character/stamina", charH.SetStamina)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/scheduler", adminH.Scheduler)
		adminG.POST("/reset", adminH.Reset)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// ---- Shutdown checkpoint ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	sched.Stop()

	if err := engine.Flush(); err != nil {
		logger.Error("final inventory flush incomplete", zap.Error(err))
	}
	if err := ledger.Flush(); err != nil {
		logger.Error("final ledger flush failed", zap.Error(err))
	}
	if err := ctrl.Flush(); err != nil {
		logger.Error("final mission flush failed", zap.Error(err))
	}
	logger.Info("state checkpointed, bye")
}
