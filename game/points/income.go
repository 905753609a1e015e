package points

import (
	"math"
	"sync"

	"github.com/tarkoy/clicker-server/config"
	"go.uber.org/zap"
)

// Income trickles passive points into the ledger. The stamina level
// shortens the interval and raises the payout.
type Income struct {
	mu      sync.Mutex
	cfg     config.StaminaConfig
	ledger  *Ledger
	levelFn func() int
	timer   float64
	paused  bool
	logger  *zap.Logger
}

// NewIncome creates the passive income service. levelFn supplies the
// current stamina level on every payout.
func NewIncome(cfg config.StaminaConfig, ledger *Ledger, levelFn func() int, logger *zap.Logger) *Income {
	return &Income{cfg: cfg, ledger: ledger, levelFn: levelFn, logger: logger}
}

// Tick advances the income timer by dt seconds and pays out for every
// elapsed interval.
func (in *Income) Tick(dt float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.paused || dt <= 0 {
		return
	}
	level := in.levelFn()
	interval := in.interval(level)
	in.timer += dt
	for in.timer >= interval {
		in.timer -= interval
		in.payout(level)
	}
}

// Pause stops payouts; the partial interval is kept.
func (in *Income) Pause() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.paused = true
}

// Resume restarts payouts.
func (in *Income) Resume() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.paused = false
}

func (in *Income) interval(level int) float64 {
	reduction := 1 + float64(level)*in.cfg.IntervalRedPerLevel
	interval := in.cfg.BaseIntervalS / reduction
	if interval < in.cfg.MinIntervalS {
		interval = in.cfg.MinIntervalS
	}
	return interval
}

func (in *Income) payout(level int) {
	bonus := 1 + float64(level)*in.cfg.IncomeBonusPerLevel
	amount := int64(math.Round(in.cfg.BaseIncome * bonus))
	if amount <= 0 {
		return
	}
	in.ledger.Add(amount)
}
