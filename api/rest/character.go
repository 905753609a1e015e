package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarkoy/clicker-server/audit"
	"github.com/tarkoy/clicker-server/game/character"
	mw "github.com/tarkoy/clicker-server/middleware"
)

// CharacterHandler accepts condition reports from the game client. The
// click-timing and perk mechanics run client-side; the server only
// records their outcomes, which gate the health sink, the scav cost
// curve, and the passive income rate.
type CharacterHandler struct {
	state *character.State
	audit *audit.Service
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(state *character.State, auditSvc *audit.Service) *CharacterHandler {
	return &CharacterHandler{state: state, audit: auditSvc}
}

// Status handles GET /api/character.
func (h *CharacterHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"arm_broken":       h.state.ArmBroken(),
		"stamina_level":    h.state.StaminaLevel(),
		"stamina_progress": h.state.StaminaProgress(),
		"level":            h.state.Level(),
	})
}

type armRequest struct {
	Broken *bool `json:"broken" binding:"required"`
}

// SetArm handles POST /api/character/arm: the client reports a fracture
// (or an out-of-band heal). Dropping medicine on the health sink is the
// in-game way back.
func (h *CharacterHandler) SetArm(c *gin.Context) {
	var req armRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Broken {
		h.state.BreakArm()
	} else {
		h.state.HealArm()
	}
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "character_arm",
		Detail:    gin.H{"broken": *req.Broken},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"arm_broken": h.state.ArmBroken()})
}

type levelRequest struct {
	Level *int `json:"level" binding:"required,min=0"`
}

// SetLevel handles POST /api/character/level.
func (h *CharacterHandler) SetLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.state.SetLevel(*req.Level)
	profileID := mw.GetProfileID(c)
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ProfileID: &profileID,
		Action:    "character_level",
		Detail:    gin.H{"level": *req.Level},
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"level": h.state.Level()})
}

// SetStamina handles POST /api/character/stamina.
func (h *CharacterHandler) SetStamina(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.state.UpgradeStamina(*req.Level)
	c.JSON(http.StatusOK, gin.H{"stamina_level": h.state.StaminaLevel()})
}
