package character

import (
	"sync"

	"go.uber.org/zap"
)

// State holds the small slice of character condition the inventory sinks
// and the scav cost curve touch: the broken-arm flag, stamina progress,
// and the character level. Leveling arithmetic itself lives outside this
// server.
type State struct {
	mu              sync.Mutex
	armBroken       bool
	staminaLevel    int
	staminaProgress float64
	level           int
	logger          *zap.Logger
}

// NewState creates a healthy level-zero character.
func NewState(logger *zap.Logger) *State {
	return &State{logger: logger}
}

// ArmBroken reports whether the arm is currently broken. Precondition for
// the health sink.
func (s *State) ArmBroken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armBroken
}

// BreakArm sets the broken-arm flag.
func (s *State) BreakArm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armBroken = true
	s.logger.Info("arm broken")
}

// HealArm clears the broken-arm flag. Effect of the health sink.
func (s *State) HealArm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armBroken = false
	s.logger.Info("arm healed")
}

// AddStaminaProgress credits progress toward the next stamina level.
// Effect of the stamina sink; fed with the consumed item's value.
func (s *State) AddStaminaProgress(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staminaProgress += value
}

// StaminaProgress returns the accumulated progress.
func (s *State) StaminaProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staminaProgress
}

// StaminaLevel returns the current stamina level.
func (s *State) StaminaLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staminaLevel
}

// UpgradeStamina sets the stamina level.
func (s *State) UpgradeStamina(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staminaLevel = level
}

// Level returns the character level used by the scav cost curve.
func (s *State) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SetLevel sets the character level.
func (s *State) SetLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}
