package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/game/points"
	"github.com/tarkoy/clicker-server/game/scav"
	mw "github.com/tarkoy/clicker-server/middleware"
	"github.com/tarkoy/clicker-server/persist"
	"github.com/tarkoy/clicker-server/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles operator endpoints guarded by the admin key.
type AdminHandler struct {
	store  *persist.Store
	engine *inventory.Engine
	ctrl   *scav.Controller
	ledger *points.Ledger
	sched  *scheduler.Scheduler
	audit  *audit.Service
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store *persist.Store, engine *inventory.Engine, ctrl *scav.Controller, ledger *points.Ledger, sched *scheduler.Scheduler, auditSvc *audit.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		engine: engine,
		ctrl:   ctrl,
		ledger: ledger,
		sched:  sched,
		audit:  auditSvc,
		logger: logger,
	}
}

// AdminAuth rejects requests whose X-Admin-Key header does not match.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" || c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Scheduler handles GET /api/admin/scheduler.
func (h *AdminHandler) Scheduler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tickers": h.sched.ListTickers()})
}

// Reset handles POST /api/admin/reset: wipes the save, empties every
// inventory table, zeroes the balance, and returns the scav to idle.
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, id := range h.engine.TableIDs() {
		if err := h.engine.RemoveAll(id); err != nil {
			h.logger.Warn("reset: clearing table failed", zap.String("table", id), zap.Error(err))
		}
	}
	h.ledger.Reset()
	h.ctrl.Reset()
	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  "admin_reset",
		IP:      c.ClientIP(),
	})
	h.logger.Info("game state reset by admin")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
