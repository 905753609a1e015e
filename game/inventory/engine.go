package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tarkoy/clicker-server/resource"
	"go.uber.org/zap"
)

var (
	ErrUnknownItem    = errors.New("inventory: unknown item")
	ErrUnknownTable   = errors.New("inventory: unknown table")
	ErrDuplicateTable = errors.New("inventory: duplicate table id")
	ErrSlotOutOfRange = errors.New("inventory: slot index out of range")
)

// SlotRecord is the flat persisted shape of one occupied slot.
type SlotRecord struct {
	TableID string
	Index   int
	ItemID  string
	Count   int
}

// Store is the write-through persistence target. Implementations see only
// record shapes, never engine behavior. A nil Store keeps the engine
// memory-only.
type Store interface {
	SaveSlot(tableID string, index int, itemID string, count int) error
	DeleteSlot(tableID string, index int) error
	LoadSlots() ([]SlotRecord, error)
}

// AddResult reports how much of an AddItem request was placed.
type AddResult struct {
	Deposited int `json:"deposited"`
	Remainder int `json:"remainder"`
}

// OutcomeKind classifies what a Transfer did.
type OutcomeKind string

const (
	OutcomeSwapped  OutcomeKind = "swapped"
	OutcomeMerged   OutcomeKind = "merged"
	OutcomeConsumed OutcomeKind = "consumed"
	OutcomeNoOp     OutcomeKind = "noop"
)

// TransferOutcome describes the result of a Transfer. Moved is the unit
// count that changed hands (merge amount, or 1 for a sink consumption).
type TransferOutcome struct {
	Kind  OutcomeKind `json:"kind"`
	Moved int         `json:"moved"`
}

type slotKey struct {
	tableID string
	index   int
}

// Engine owns every table and is the sole mutator of slots. All operations
// are atomic under one mutex: they either complete their stated effect or
// change nothing.
type Engine struct {
	mu      sync.Mutex
	catalog *resource.Catalog
	store   Store
	logger  *zap.Logger

	tables map[string]*Table
	order  []string
	dirty  map[slotKey]struct{}
}

// NewEngine creates an empty engine. store may be nil for memory-only use.
func NewEngine(catalog *resource.Catalog, store Store, logger *zap.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		store:   store,
		logger:  logger,
		tables:  make(map[string]*Table),
		dirty:   make(map[slotKey]struct{}),
	}
}

// CreateTable allocates a table with the given number of empty slots.
func (e *Engine) CreateTable(id string, capacity int) (*Table, error) {
	return e.createTable(id, capacity, nil)
}

// CreateSinkTable allocates a single-slot consume-on-drop table.
func (e *Engine) CreateSinkTable(id string, spec SinkSpec) (*Table, error) {
	s := spec
	return e.createTable(id, 1, &s)
}

func (e *Engine) createTable(id string, capacity int, sink *SinkSpec) (*Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.tables[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTable, id)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("inventory: table %s: capacity %d < 1", id, capacity)
	}
	t := &Table{ID: id, slots: make([]Slot, capacity), sink: sink}
	e.tables[id] = t
	e.order = append(e.order, id)
	return t, nil
}

// Table returns the table with the given id.
func (e *Engine) Table(id string) (*Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	return t, nil
}

// TableIDs returns all table ids in creation order.
func (e *Engine) TableIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// AddItem deposits amount units of itemID into the table: existing partial
// stacks first (in index order), then empty slots, maxStack per slot. The
// remainder that found no room is returned to the caller to retry, drop,
// or queue.
func (e *Engine) AddItem(tableID, itemID string, amount int) (AddResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def := e.catalog.Item(itemID)
	if def == nil {
		return AddResult{}, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	t, ok := e.tables[tableID]
	if !ok {
		return AddResult{}, fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
	}
	if amount <= 0 {
		return AddResult{}, nil
	}

	remaining := amount
	for i := range t.slots {
		s := &t.slots[i]
		if s.ItemID != itemID || s.Count >= def.MaxStack {
			continue
		}
		add := def.MaxStack - s.Count
		if add > remaining {
			add = remaining
		}
		s.Count += add
		remaining -= add
		e.markDirty(tableID, i)
		if remaining == 0 {
			break
		}
	}
	if remaining > 0 {
		for i := range t.slots {
			s := &t.slots[i]
			if !s.Empty() {
				continue
			}
			add := def.MaxStack
			if add > remaining {
				add = remaining
			}
			s.ItemID = itemID
			s.Count = add
			remaining -= add
			e.markDirty(tableID, i)
			if remaining == 0 {
				break
			}
		}
	}

	e.flushDirty()
	return AddResult{Deposited: amount - remaining, Remainder: remaining}, nil
}

// HasCapacity reports whether the table has at least one empty slot. This
// is the gate the mission controller uses before resolving.
func (e *Engine) HasCapacity(tableID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	if !ok {
		return false
	}
	for i := range t.slots {
		if t.slots[i].Empty() {
			return true
		}
	}
	return false
}

// HasStrictCapacity additionally accepts a table whose only free room is a
// partial stack: true if any slot is empty or could take one more unit of
// the item it already holds.
func (e *Engine) HasStrictCapacity(tableID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	if !ok {
		return false
	}
	for i := range t.slots {
		s := t.slots[i]
		if s.Empty() {
			return true
		}
		if def := e.catalog.Item(s.ItemID); def != nil && s.Count < def.MaxStack {
			return true
		}
	}
	return false
}

// Transfer moves the source slot's stack onto the target slot: a sink drop
// when the target table is a sink, a merge when both hold the same item
// and the target has room, a full swap otherwise.
func (e *Engine) Transfer(srcTableID string, srcIndex int, dstTableID string, dstIndex int) (TransferOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src, ok := e.tables[srcTableID]
	if !ok {
		return TransferOutcome{}, fmt.Errorf("%w: %s", ErrUnknownTable, srcTableID)
	}
	dst, ok := e.tables[dstTableID]
	if !ok {
		return TransferOutcome{}, fmt.Errorf("%w: %s", ErrUnknownTable, dstTableID)
	}
	if srcIndex < 0 || srcIndex >= len(src.slots) {
		return TransferOutcome{}, fmt.Errorf("%w: %s[%d]", ErrSlotOutOfRange, srcTableID, srcIndex)
	}
	if dstIndex < 0 || dstIndex >= len(dst.slots) {
		return TransferOutcome{}, fmt.Errorf("%w: %s[%d]", ErrSlotOutOfRange, dstTableID, dstIndex)
	}

	if dst.IsSink() {
		return e.sinkDrop(src, srcTableID, srcIndex, dst, dstTableID, dstIndex)
	}
	if src.IsSink() {
		// Nothing can be dragged out of a sink.
		return TransferOutcome{Kind: OutcomeNoOp}, nil
	}
	if srcTableID == dstTableID && srcIndex == dstIndex {
		return TransferOutcome{Kind: OutcomeNoOp}, nil
	}

	a := &src.slots[srcIndex]
	b := &dst.slots[dstIndex]

	// Merge same-item stacks when the target has room.
	if !a.Empty() && !b.Empty() && a.ItemID == b.ItemID {
		if def := e.catalog.Item(a.ItemID); def != nil && b.Count < def.MaxStack {
			move := def.MaxStack - b.Count
			if move > a.Count {
				move = a.Count
			}
			b.Count += move
			a.Count -= move
			if a.Count == 0 {
				a.clear()
			}
			e.markDirty(srcTableID, srcIndex)
			e.markDirty(dstTableID, dstIndex)
			e.flushDirty()
			return TransferOutcome{Kind: OutcomeMerged, Moved: move}, nil
		}
	}

	if a.Empty() && b.Empty() {
		return TransferOutcome{Kind: OutcomeNoOp}, nil
	}
	*a, *b = *b, *a
	e.markDirty(srcTableID, srcIndex)
	e.markDirty(dstTableID, dstIndex)
	e.flushDirty()
	return TransferOutcome{Kind: OutcomeSwapped}, nil
}

// sinkDrop consumes one unit of the dragged stack when category and
// precondition allow. The sink slot ends empty either way: a rejected drop
// is a no-op on the source but still resets the sink.
func (e *Engine) sinkDrop(src *Table, srcTableID string, srcIndex int, dst *Table, dstTableID string, dstIndex int) (TransferOutcome, error) {
	a := &src.slots[srcIndex]
	if a.Empty() {
		return TransferOutcome{Kind: OutcomeNoOp}, nil
	}
	def := e.catalog.Item(a.ItemID)
	if def == nil {
		return TransferOutcome{}, fmt.Errorf("%w: %s", ErrUnknownItem, a.ItemID)
	}

	outcome := TransferOutcome{Kind: OutcomeNoOp}
	spec := dst.sink
	if def.Category == spec.Category && (spec.Precondition == nil || spec.Precondition()) {
		a.Count--
		if a.Count == 0 {
			a.clear()
		}
		e.markDirty(srcTableID, srcIndex)
		if spec.Effect != nil {
			spec.Effect(def)
		}
		outcome = TransferOutcome{Kind: OutcomeConsumed, Moved: 1}
	}

	if !dst.slots[dstIndex].Empty() {
		dst.slots[dstIndex].clear()
		e.markDirty(dstTableID, dstIndex)
	}
	e.flushDirty()
	return outcome, nil
}

// ClearSlot empties a single slot.
func (e *Engine) ClearSlot(tableID string, index int) error {
	_, _, err := e.TakeStack(tableID, index)
	return err
}

// TakeStack empties a slot and returns what it held. An already empty slot
// yields ("", 0).
func (e *Engine) TakeStack(tableID string, index int) (string, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
	}
	if index < 0 || index >= len(t.slots) {
		return "", 0, fmt.Errorf("%w: %s[%d]", ErrSlotOutOfRange, tableID, index)
	}
	s := &t.slots[index]
	itemID, count := s.ItemID, s.Count
	if !s.Empty() {
		s.clear()
		e.markDirty(tableID, index)
		e.flushDirty()
	}
	return itemID, count, nil
}

// RemoveAll clears every slot of one table. Other tables are untouched.
func (e *Engine) RemoveAll(tableID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, tableID)
	}
	for i := range t.slots {
		if t.slots[i].Empty() {
			continue
		}
		t.slots[i].clear()
		e.markDirty(tableID, i)
	}
	e.flushDirty()
	return nil
}

// LoadFromStore restores slot contents from persisted records. Dangling
// item ids, unknown tables, and out-of-range indexes are skipped, counts
// clamped to the item's max stack. Returns the number of restored slots.
func (e *Engine) LoadFromStore() (int, error) {
	if e.store == nil {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.LoadSlots()
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, rec := range records {
		t, ok := e.tables[rec.TableID]
		if !ok {
			e.logger.Warn("skipping slot for unknown table", zap.String("table", rec.TableID))
			continue
		}
		if rec.Index < 0 || rec.Index >= len(t.slots) {
			e.logger.Warn("skipping out-of-range slot",
				zap.String("table", rec.TableID), zap.Int("index", rec.Index))
			continue
		}
		def := e.catalog.Item(rec.ItemID)
		if def == nil {
			e.logger.Warn("skipping slot with unknown item",
				zap.String("table", rec.TableID), zap.String("item", rec.ItemID))
			continue
		}
		count := rec.Count
		if count < 1 {
			continue
		}
		if count > def.MaxStack {
			count = def.MaxStack
		}
		t.slots[rec.Index] = Slot{ItemID: rec.ItemID, Count: count}
		restored++
	}
	return restored, nil
}

// Flush retries every slot whose last write-through failed. The checkpoint
// hook for shutdown and the auto-save ticker.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushDirty()
	if len(e.dirty) > 0 {
		return fmt.Errorf("inventory: %d slots still unflushed", len(e.dirty))
	}
	return nil
}

func (e *Engine) markDirty(tableID string, index int) {
	if e.store == nil {
		return
	}
	e.dirty[slotKey{tableID, index}] = struct{}{}
}

// flushDirty writes every dirty slot through to the store. Failed writes
// stay dirty and are retried on the next mutating call; in-memory state is
// never rolled back.
func (e *Engine) flushDirty() {
	if e.store == nil {
		return
	}
	for key := range e.dirty {
		s := e.tables[key.tableID].slots[key.index]
		var err error
		if s.Empty() {
			err = e.store.DeleteSlot(key.tableID, key.index)
		} else {
			err = e.store.SaveSlot(key.tableID, key.index, s.ItemID, s.Count)
		}
		if err != nil {
			e.logger.Warn("slot write-through failed, will retry",
				zap.String("table", key.tableID), zap.Int("index", key.index), zap.Error(err))
			continue
		}
		delete(e.dirty, key)
	}
}
