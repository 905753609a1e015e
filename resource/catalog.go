package resource

import (
	"encoding/json"
	"fmt"
	"os"
)

// Category classifies an item for sink-slot matching and loot filtering.
type Category string

const (
	CategoryFood     Category = "food"
	CategoryMedicine Category = "medicine"
	CategoryLoot     Category = "loot"
)

func validCategory(c Category) bool {
	switch c {
	case CategoryFood, CategoryMedicine, CategoryLoot:
		return true
	}
	return false
}

// ItemDefinition is one immutable catalog entry.
type ItemDefinition struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	MaxStack    int      `json:"max_stack"`
	Category    Category `json:"category"`
	Value       int      `json:"value"`
}

// Catalog is the static item lookup. Loaded once at startup, read-only afterwards.
type Catalog struct {
	byID  map[string]*ItemDefinition
	order []string
}

// LoadCatalog reads and validates item definitions from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var defs []*ItemDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return NewCatalog(defs)
}

// NewCatalog builds a Catalog from definitions, validating every entry.
func NewCatalog(defs []*ItemDefinition) (*Catalog, error) {
	cat := &Catalog{byID: make(map[string]*ItemDefinition, len(defs))}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("catalog: item with empty id")
		}
		if _, dup := cat.byID[def.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate item id %q", def.ID)
		}
		if def.MaxStack < 1 {
			return nil, fmt.Errorf("catalog: item %q: max_stack %d < 1", def.ID, def.MaxStack)
		}
		if !validCategory(def.Category) {
			return nil, fmt.Errorf("catalog: item %q: unknown category %q", def.ID, def.Category)
		}
		if def.Value < 0 {
			return nil, fmt.Errorf("catalog: item %q: negative value %d", def.ID, def.Value)
		}
		cat.byID[def.ID] = def
		cat.order = append(cat.order, def.ID)
	}
	return cat, nil
}

// Item returns the definition for id, or nil if unknown.
func (c *Catalog) Item(id string) *ItemDefinition {
	return c.byID[id]
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// IDs returns the item ids in file order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Resolve maps item ids to definitions, failing on the first unknown id.
func (c *Catalog) Resolve(ids []string) ([]*ItemDefinition, error) {
	out := make([]*ItemDefinition, 0, len(ids))
	for _, id := range ids {
		def := c.byID[id]
		if def == nil {
			return nil, fmt.Errorf("catalog: unknown item id %q", id)
		}
		out = append(out, def)
	}
	return out, nil
}
