package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/game/points"
	mw "github.com/tarkoy/clicker-server/middleware"
	"github.com/tarkoy/clicker-server/resource"
)

// ShopHandler handles the sell endpoint: dragging a stack onto the shop
// slot converts it into points at the item's catalog value.
type ShopHandler struct {
	engine  *inventory.Engine
	ledger  *points.Ledger
	catalog *resource.Catalog
	audit   *audit.Service
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(engine *inventory.Engine, ledger *points.Ledger, catalog *resource.Catalog, auditSvc *audit.Service) *ShopHandler {
	return &ShopHandler{engine: engine, ledger: ledger, catalog: catalog, audit: auditSvc}
}

type sellRequest struct {
	Table string `json:"table" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

// Sell handles POST /api/shop/sell. The whole stack is sold; an empty
// slot sells for nothing.
func (h *ShopHandler) Sell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	itemID, count, err := h.engine.TakeStack(req.Table, *req.Index)
	if err != nil {
		c.JSON(statusForInventoryErr(err), gin.H{"error": err.Error()})
		return
	}
	var earned int64
	if count > 0 {
		def := h.catalog.Item(itemID)
		if def != nil {
			earned = int64(def.Value) * int64(count)
		}
	}
	balance := h.ledger.Balance()
	if earned > 0 {
		balance = h.ledger.Add(earned)
	}
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "shop_sell",
		Detail:    gin.H{"table": req.Table, "index": *req.Index, "item_id": itemID, "count": count, "earned": earned},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{
		"item_id": itemID,
		"count":   count,
		"earned":  earned,
		"balance": balance,
	})
}

// Balance handles GET /api/points.
func (h *ShopHandler) Balance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"balance": h.ledger.Balance()})
}
