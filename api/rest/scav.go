package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/game/scav"
	mw "github.com/tarkoy/clicker-server/middleware"
)

// ScavHandler handles Scavenger-run REST endpoints.
type ScavHandler struct {
	ctrl  *scav.Controller
	audit *audit.Service
}

// NewScavHandler creates a new ScavHandler.
func NewScavHandler(ctrl *scav.Controller, auditSvc *audit.Service) *ScavHandler {
	return &ScavHandler{ctrl: ctrl, audit: auditSvc}
}

// Status handles GET /api/scav.
func (h *ScavHandler) Status(c *gin.Context) {
	st := h.ctrl.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":     st,
		"total_cost": h.ctrl.Cost(st.Chance),
	})
}

type startRequest struct {
	Chance int `json:"chance" binding:"required,min=1,max=100"`
}

// Start handles POST /api/scav/start.
func (h *ScavHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.ctrl.Start(req.Chance); err != nil {
		c.JSON(statusForScavErr(err), gin.H{"error": err.Error()})
		return
	}
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "scav_start",
		Detail:    gin.H{"chance": req.Chance},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"status": h.ctrl.Status()})
}

// SkipMission handles POST /api/scav/skip. Resolves the current run
// immediately with guaranteed success (the ad-watch shortcut).
func (h *ScavHandler) SkipMission(c *gin.Context) {
	if err := h.ctrl.SkipMission(); err != nil {
		c.JSON(statusForScavErr(err), gin.H{"error": err.Error()})
		return
	}
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "scav_skip_mission",
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"status": h.ctrl.Status()})
}

// SkipCooldown handles POST /api/scav/skip-cooldown.
func (h *ScavHandler) SkipCooldown(c *gin.Context) {
	if err := h.ctrl.SkipCooldown(); err != nil {
		c.JSON(statusForScavErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.ctrl.Status()})
}

func statusForScavErr(err error) int {
	switch {
	case errors.Is(err, scav.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, scav.ErrBusy),
		errors.Is(err, scav.ErrNoSpace),
		errors.Is(err, scav.ErrNotOnMission),
		errors.Is(err, scav.ErrNotOnCooldown):
		return http.StatusConflict
	case errors.Is(err, scav.ErrBadChance):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
