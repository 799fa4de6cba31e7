package inputsource

import "fmt"

// Item is one selectable input source.
type Item struct {
	ID byte `json:"id"`

	// Name is the MCCS name, empty for unrecognized codes.
	Name string `json:"name,omitempty"`
}

// NewItem creates an item named from the known code table.
func NewItem(id byte) Item {
	return Item{ID: id, Name: Name(id)}
}

// String returns the name, or the hex code if unnamed.
func (i Item) String() string {
	if i.Name == "" {
		return fmt.Sprintf("0x%02X", i.ID)
	}
	return i.Name
}

// Catalog holds the input sources a monitor offers and the one currently
// active. It is not safe for concurrent use; the owning session guards it.
type Catalog struct {
	items    []Item
	selected *Item
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Rebuild replaces all items with one per possible value, in order, and
// selects the item matching current. If current is not among the possible
// values the previous selection is kept.
func (c *Catalog) Rebuild(possible []byte, current int) {
	c.items = make([]Item, 0, len(possible))
	for _, v := range possible {
		item := NewItem(v)
		c.items = append(c.items, item)
		if int(v) == current {
			sel := item
			c.selected = &sel
		}
	}
}

// Clear removes all items and the selection.
func (c *Catalog) Clear() {
	c.items = nil
	c.selected = nil
}

// Items returns a copy of the items.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Lookup returns the item with the given code.
func (c *Catalog) Lookup(id byte) (Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Selected returns the active item, if any.
func (c *Catalog) Selected() (Item, bool) {
	if c.selected == nil {
		return Item{}, false
	}
	return *c.selected, true
}

// Select sets the active item. It returns false if the item is already
// selected.
func (c *Catalog) Select(item Item) bool {
	if c.selected != nil && *c.selected == item {
		return false
	}
	c.selected = &item
	return true
}
