package inventory

import "github.com/tarkoy/clicker-server/resource"

// Slot is one inventory cell: at most one item stack.
// Count == 0 always implies ItemID == "".
type Slot struct {
	ItemID string `json:"item_id,omitempty"`
	Count  int    `json:"count"`
}

// Empty reports whether the slot holds nothing.
func (s Slot) Empty() bool {
	return s.Count == 0
}

func (s *Slot) clear() {
	s.ItemID = ""
	s.Count = 0
}

// SinkSpec configures a consume-on-drop table. Dropping a matching item
// onto it consumes one unit and fires Effect instead of storing the item.
type SinkSpec struct {
	// Category an item must have for the drop to consume.
	Category resource.Category
	// Precondition, when non-nil, must return true for the drop to consume
	// (e.g. the health sink requires a broken arm).
	Precondition func() bool
	// Effect is invoked with the consumed item's definition.
	Effect func(def *resource.ItemDefinition)
}

// Table is a named fixed-capacity ordered collection of slots.
type Table struct {
	ID    string
	slots []Slot
	sink  *SinkSpec
}

// Capacity returns the fixed slot count.
func (t *Table) Capacity() int {
	return len(t.slots)
}

// IsSink reports whether this is a consume-on-drop table.
func (t *Table) IsSink() bool {
	return t.sink != nil
}

// Slots returns a copy of the table's slots in index order.
func (t *Table) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

// Slot returns a copy of the slot at index. The bool is false when the
// index is out of range.
func (t *Table) Slot(index int) (Slot, bool) {
	if index < 0 || index >= len(t.slots) {
		return Slot{}, false
	}
	return t.slots[index], true
}
