package points

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var errFlush = errors.New("points: balance not flushed")

// Store persists the single balance value.
type Store interface {
	SaveBalance(balance int64) error
	LoadBalance() (balance int64, found bool, err error)
}

// Ledger is the points balance every purchase and reward flows through.
// Negative Add amounts debit. Write-through persisted; a failed write is
// retried on the next mutation or Flush.
type Ledger struct {
	mu      sync.Mutex
	balance int64
	dirty   bool
	store   Store
	logger  *zap.Logger
}

// NewLedger creates a Ledger with zero balance. store may be nil.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Load restores the persisted balance, if any.
func (l *Ledger) Load() error {
	if l.store == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, found, err := l.store.LoadBalance()
	if err != nil {
		return err
	}
	if found {
		l.balance = balance
	}
	return nil
}

// Balance returns the current points balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Add applies a delta (negative = debit) and returns the new balance.
func (l *Ledger) Add(delta int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance += delta
	l.dirty = true
	l.writeThrough()
	return l.balance
}

// Reset zeroes the balance. One critical section, so a concurrent
// income payout lands either before the wipe or after it, never between
// the read and the write.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = 0
	l.dirty = true
	l.writeThrough()
}

// Flush retries a pending write-through.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeThrough()
	if l.dirty {
		return errFlush
	}
	return nil
}

func (l *Ledger) writeThrough() {
	if l.store == nil || !l.dirty {
		l.dirty = false
		return
	}
	if err := l.store.SaveBalance(l.balance); err != nil {
		l.logger.Warn("balance write-through failed, will retry", zap.Error(err))
		return
	}
	l.dirty = false
}
