package scav

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/tarkoy/clicker-server/config"
	"github.com/tarkoy/clicker-server/game/inventory"
	"github.com/tarkoy/clicker-server/resource"
	"go.uber.org/zap"
)

// Phase is the state of the Scavenger-run machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseOnMission  Phase = "on_mission"
	PhaseOnCooldown Phase = "on_cooldown"
)

var (
	ErrInsufficientFunds = errors.New("scav: insufficient points")
	ErrBusy              = errors.New("scav: run already in progress")
	ErrNoSpace           = errors.New("scav: no room in target inventory")
	ErrNotOnMission      = errors.New("scav: no mission to skip")
	ErrNotOnCooldown     = errors.New("scav: no cooldown to skip")
	ErrBadChance         = errors.New("scav: chance must be between 1 and 100")
)

// Ledger is the external points balance the controller debits and reads.
type Ledger interface {
	Balance() int64
	Add(delta int64) int64
}

// Store persists the mission state row and the run log.
type Store interface {
	SaveMission(phase string, remainingSeconds float64, successChance int) error
	LoadMission() (phase string, remainingSeconds float64, successChance int, found bool, err error)
	LogMission(chance int, success, skipped bool, rewards interface{}) error
}

// Reward is one loot deposit of a resolved run.
type Reward struct {
	ItemID    string `json:"item_id"`
	Amount    int    `json:"amount"`
	Deposited int    `json:"deposited"`
}

// Status is a snapshot of the state machine for callers.
type Status struct {
	Phase            Phase   `json:"phase"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Chance           int     `json:"chance"`
	NeedsSpace       bool    `json:"needs_space"`
	CostPerPoint     int     `json:"cost_per_point"`
}

// Controller runs the Idle → OnMission → OnCooldown → Idle cycle: debit
// points, wait out the mission timer, roll loot, rest. The timer advances
// only through Tick; restored state resumes where it left off with no
// credit for downtime.
type Controller struct {
	mu      sync.Mutex
	cfg     config.ScavConfig
	inv     *inventory.Engine
	ledger  Ledger
	pool    []*resource.ItemDefinition
	levelFn func() int
	rng     *rand.Rand
	store   Store
	logger  *zap.Logger

	phase      Phase
	remaining  float64
	chance     int
	needsSpace bool
}

// NewController wires the state machine. levelFn supplies the character
// level for the cost curve; rng drives every sample (inject a seeded
// source in tests). store may be nil for memory-only use.
func NewController(cfg config.ScavConfig, inv *inventory.Engine, ledger Ledger, catalog *resource.Catalog, levelFn func() int, rng *rand.Rand, store Store, logger *zap.Logger) (*Controller, error) {
	pool, err := catalog.Resolve(cfg.LootPool)
	if err != nil {
		return nil, fmt.Errorf("scav: loot pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, errors.New("scav: empty loot pool")
	}
	if levelFn == nil {
		levelFn = func() int { return 0 }
	}
	return &Controller{
		cfg:     cfg,
		inv:     inv,
		ledger:  ledger,
		pool:    pool,
		levelFn: levelFn,
		rng:     rng,
		store:   store,
		logger:  logger,
		phase:   PhaseIdle,
		chance:  50,
	}, nil
}

// Load restores the persisted phase, timer, and chance verbatim.
func (c *Controller) Load() error {
	if c.store == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	phase, remaining, chance, found, err := c.store.LoadMission()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	switch Phase(phase) {
	case PhaseIdle, PhaseOnMission, PhaseOnCooldown:
		c.phase = Phase(phase)
	default:
		c.logger.Warn("ignoring saved mission state with unknown phase", zap.String("phase", phase))
		return nil
	}
	if remaining < 0 {
		remaining = 0
	}
	c.remaining = remaining
	if chance >= 1 && chance <= 100 {
		c.chance = chance
	}
	return nil
}

// CostPerChancePoint is the level-scaled price of one chance percent.
func (c *Controller) CostPerChancePoint() int {
	base := float64(c.cfg.BaseCostPerPoint)
	growth := c.cfg.CostGrowth
	if growth <= 0 {
		growth = 1
	}
	return int(math.Round(base * math.Pow(growth, float64(c.levelFn()))))
}

// Cost returns the total price of starting a run with the given chance.
func (c *Controller) Cost(chance int) int64 {
	return int64(chance) * int64(c.CostPerChancePoint())
}

// Start debits the ledger and sends the scav out. Rejected when a run is
// already in progress, the target table has no empty slot, or the balance
// does not cover chance × cost-per-point.
func (c *Controller) Start(chance int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if chance < 1 || chance > 100 {
		return ErrBadChance
	}
	if c.phase != PhaseIdle {
		return ErrBusy
	}
	if !c.inv.HasCapacity(c.cfg.TargetTable) {
		return ErrNoSpace
	}
	cost := int64(chance) * int64(c.CostPerChancePoint())
	if c.ledger.Balance() < cost {
		return ErrInsufficientFunds
	}
	c.ledger.Add(-cost)
	c.chance = chance
	c.phase = PhaseOnMission
	c.remaining = c.uniform(c.cfg.MissionTimeMinS, c.cfg.MissionTimeMaxS)
	c.needsSpace = false
	c.persist()
	c.logger.Info("scav sent out",
		zap.Int("chance", chance),
		zap.Int64("cost", cost),
		zap.Float64("duration_s", c.remaining))
	return nil
}

// Tick advances the timer by dt seconds. An expired mission resolves only
// once the target table has an empty slot; until then the run blocks in a
// needs-space sub-state re-checked every tick.
func (c *Controller) Tick(dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case PhaseOnMission:
		if c.remaining > 0 {
			c.remaining -= dt
			if c.remaining < 0 {
				c.remaining = 0
			}
		}
		if c.remaining > 0 {
			return
		}
		if !c.inv.HasCapacity(c.cfg.TargetTable) {
			if !c.needsSpace {
				c.needsSpace = true
				c.logger.Info("scav returned but inventory is full, waiting for space")
			}
			return
		}
		c.resolve(c.chance, false)
	case PhaseOnCooldown:
		c.remaining -= dt
		if c.remaining > 0 {
			return
		}
		c.remaining = 0
		c.phase = PhaseIdle
		c.persist()
		c.logger.Info("scav rested, ready to go")
	}
}

// SkipMission resolves the current mission immediately with the success
// chance overridden to 100. The paid/ad-gated shortcut.
func (c *Controller) SkipMission() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseOnMission {
		return ErrNotOnMission
	}
	if !c.inv.HasCapacity(c.cfg.TargetTable) {
		c.needsSpace = true
		return ErrNoSpace
	}
	c.resolve(100, true)
	return nil
}

// SkipCooldown zeroes the rest timer, returning to Idle immediately.
func (c *Controller) SkipCooldown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseOnCooldown {
		return ErrNotOnCooldown
	}
	c.remaining = 0
	c.phase = PhaseIdle
	c.persist()
	return nil
}

// Status returns a snapshot for the API.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Phase:            c.phase,
		RemainingSeconds: c.remaining,
		Chance:           c.chance,
		NeedsSpace:       c.needsSpace,
		CostPerPoint:     c.CostPerChancePoint(),
	}
}

// Reset returns the machine to Idle with default chance, persisting it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.remaining = 0
	c.chance = 50
	c.needsSpace = false
	c.persist()
}

// Flush persists the current state; the checkpoint hook.
func (c *Controller) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.store.SaveMission(string(c.phase), c.remaining, c.chance)
}

// resolve rolls success, generates loot, and moves to cooldown. Caller
// holds the lock and has verified capacity.
func (c *Controller) resolve(effectiveChance int, skipped bool) {
	success := c.rng.Intn(100) < effectiveChance
	var rewards []Reward
	if success {
		rewards = c.generateLoot()
	} else {
		c.logger.Info("scav returned empty-handed")
	}
	c.phase = PhaseOnCooldown
	c.remaining = c.uniform(c.cfg.CooldownTimeMinS, c.cfg.CooldownTimeMaxS)
	c.needsSpace = false
	c.persist()
	if c.store != nil {
		if err := c.store.LogMission(effectiveChance, success, skipped, rewards); err != nil {
			c.logger.Warn("mission log write failed", zap.Error(err))
		}
	}
	c.logger.Info("scav run resolved",
		zap.Bool("success", success),
		zap.Bool("skipped", skipped),
		zap.Int("reward_stacks", len(rewards)),
		zap.Float64("cooldown_s", c.remaining))
}

// generateLoot picks k distinct item types, then n instances spread
// uniformly over them, each 1..MaxStack units, and deposits everything.
// Overflow past the table's room is dropped with a warning.
func (c *Controller) generateLoot() []Reward {
	k := c.sampleRange(c.cfg.ItemTypesMin, c.cfg.ItemTypesMax)
	if k < 1 {
		k = 1
	}
	if k > len(c.pool) {
		k = len(c.pool)
	}
	available := make([]*resource.ItemDefinition, len(c.pool))
	copy(available, c.pool)
	chosen := make([]*resource.ItemDefinition, 0, k)
	for i := 0; i < k; i++ {
		j := c.rng.Intn(len(available))
		chosen = append(chosen, available[j])
		available = append(available[:j], available[j+1:]...)
	}

	n := c.sampleRange(c.cfg.ItemsCountMin, c.cfg.ItemsCountMax)
	rewards := make([]Reward, 0, n)
	for i := 0; i < n; i++ {
		def := chosen[c.rng.Intn(len(chosen))]
		amount := c.rng.Intn(def.MaxStack) + 1
		res, err := c.inv.AddItem(c.cfg.TargetTable, def.ID, amount)
		if err != nil {
			c.logger.Error("loot deposit failed", zap.String("item", def.ID), zap.Error(err))
			continue
		}
		if res.Remainder > 0 {
			c.logger.Warn("inventory full, dropping loot overflow",
				zap.String("item", def.ID), zap.Int("dropped", res.Remainder))
		}
		rewards = append(rewards, Reward{ItemID: def.ID, Amount: amount, Deposited: res.Deposited})
	}
	return rewards
}

// sampleRange returns a uniform int in [min, max].
func (c *Controller) sampleRange(min, max int) int {
	if max < min {
		max = min
	}
	return min + c.rng.Intn(max-min+1)
}

func (c *Controller) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + c.rng.Float64()*(max-min)
}

func (c *Controller) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveMission(string(c.phase), c.remaining, c.chance); err != nil {
		c.logger.Warn("mission state write failed", zap.Error(err))
	}
}
