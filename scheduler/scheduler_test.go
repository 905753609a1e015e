package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTickerFiresRepeatedly(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var ticks int32
	s.AddTicker("scav_tick", 20*time.Millisecond, func() {
		atomic.AddInt32(&ticks, 1)
	})

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&ticks), int32(3))
}

func TestReplacingTickerStopsTheOld(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var slow, fast int32
	s.AddTicker("passive_income", 20*time.Millisecond, func() { atomic.AddInt32(&slow, 1) })
	time.Sleep(30 * time.Millisecond)
	// Re-registering under the same name swaps the interval in place,
	// the operator path for tuning the income cadence live.
	s.AddTicker("passive_income", 10*time.Millisecond, func() { atomic.AddInt32(&fast, 1) })
	time.Sleep(60 * time.Millisecond)

	snap := atomic.LoadInt32(&slow)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&slow), "replaced ticker must stop")
	assert.Positive(t, atomic.LoadInt32(&fast))
}

func TestDelayFiresOnceAndReplaceCancels(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var fired int32
	s.AddDelay("shutdown_flush", 500*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.AddDelay("shutdown_flush", 20*time.Millisecond, func() { atomic.AddInt32(&fired, 10) })
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(10), atomic.LoadInt32(&fired), "only the replacement fires")
}

func TestRemoveStopsTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var flushes int32
	s.AddTicker("auto_flush", 20*time.Millisecond, func() { atomic.AddInt32(&flushes, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Remove("auto_flush")
	snap := atomic.LoadInt32(&flushes)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&flushes))

	s.Remove("auto_flush") // removing twice is harmless
}

func TestRemoveCancelsPendingDelay(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var fired int32
	s.AddDelay("shutdown_flush", 80*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Remove("shutdown_flush")
	time.Sleep(130 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestStopHaltsEverything(t *testing.T) {
	s := New(zap.NewNop())

	var a, b int32
	s.AddTicker("scav_tick", 20*time.Millisecond, func() { atomic.AddInt32(&a, 1) })
	s.AddTicker("passive_income", 20*time.Millisecond, func() { atomic.AddInt32(&b, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	time.Sleep(30 * time.Millisecond)
	snapA, snapB := atomic.LoadInt32(&a), atomic.LoadInt32(&b)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snapA, atomic.LoadInt32(&a))
	assert.Equal(t, snapB, atomic.LoadInt32(&b))
}

func TestListTickersTracksRegistrations(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	require.Empty(t, s.ListTickers())
	s.AddTicker("scav_tick", time.Hour, func() {})
	s.AddTicker("passive_income", time.Hour, func() {})
	s.AddTicker("auto_flush", time.Hour, func() {})

	names := s.ListTickers()
	assert.Len(t, names, 3)
	assert.Contains(t, names, "scav_tick")
	assert.Contains(t, names, "passive_income")
	assert.Contains(t, names, "auto_flush")

	s.Remove("auto_flush")
	assert.Len(t, s.ListTickers(), 2)
}

func TestPanickingTaskKeepsTicking(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs int32
	s.AddTicker("scav_tick", 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("tick exploded")
	})
	time.Sleep(100 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(2),
		"ticker survives its task panicking")
}
