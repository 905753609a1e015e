package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/game/inventory"
	mw "github.com/tarkoy/clicker-server/middleware"
)

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	engine *inventory.Engine
	audit  *audit.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(engine *inventory.Engine, auditSvc *audit.Service) *InventoryHandler {
	return &InventoryHandler{engine: engine, audit: auditSvc}
}

type tableView struct {
	ID       string           `json:"id"`
	Capacity int              `json:"capacity"`
	Sink     bool             `json:"sink"`
	Slots    []inventory.Slot `json:"slots"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	views := make([]tableView, 0)
	for _, id := range h.engine.TableIDs() {
		t, err := h.engine.Table(id)
		if err != nil {
			continue
		}
		views = append(views, tableView{ID: t.ID, Capacity: t.Capacity(), Sink: t.IsSink(), Slots: t.Slots()})
	}
	c.JSON(http.StatusOK, gin.H{"tables": views})
}

// GetTable handles GET /api/inventory/:table.
func (h *InventoryHandler) GetTable(c *gin.Context) {
	t, err := h.engine.Table(c.Param("table"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	c.JSON(http.StatusOK, tableView{ID: t.ID, Capacity: t.Capacity(), Sink: t.IsSink(), Slots: t.Slots()})
}

type transferRequest struct {
	FromTable string `json:"from_table" binding:"required"`
	FromIndex *int   `json:"from_index" binding:"required"`
	ToTable   string `json:"to_table" binding:"required"`
	ToIndex   *int   `json:"to_index" binding:"required"`
}

// Transfer handles POST /api/inventory/transfer.
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome, err := h.engine.Transfer(req.FromTable, *req.FromIndex, req.ToTable, *req.ToIndex)
	if err != nil {
		c.JSON(statusForInventoryErr(err), gin.H{"error": err.Error()})
		return
	}
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "inventory_transfer",
		Detail:    gin.H{"request": req, "outcome": outcome},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

type addRequest struct {
	Table  string `json:"table" binding:"required"`
	ItemID string `json:"item_id" binding:"required"`
	Amount int    `json:"amount" binding:"required,min=1"`
}

// Add handles POST /api/inventory/add. Debug/testing tool mirroring the
// in-game item adder button.
func (h *InventoryHandler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.engine.AddItem(req.Table, req.ItemID, req.Amount)
	if err != nil {
		c.JSON(statusForInventoryErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposited": res.Deposited, "remainder": res.Remainder})
}

type clearSlotRequest struct {
	Table string `json:"table" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

// ClearSlot handles POST /api/inventory/slot/clear.
func (h *InventoryHandler) ClearSlot(c *gin.Context) {
	var req clearSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.ClearSlot(req.Table, *req.Index); err != nil {
		c.JSON(statusForInventoryErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func statusForInventoryErr(err error) int {
	switch {
	case errors.Is(err, inventory.ErrUnknownTable),
		errors.Is(err, inventory.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrSlotOutOfRange),
		errors.Is(err, inventory.ErrDuplicateTable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
