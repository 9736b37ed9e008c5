package inventory

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/survival/internal/game/units"
)

// Backpack is the loose inventory a character carries in its worn containers.
// Its capacity is not stored: it is whatever the current outfit can hold.
type Backpack struct {
	items []*Item
}

// NewBackpack creates an empty Backpack.
func NewBackpack() *Backpack {
	return &Backpack{}
}

// Add stows it if the backpack stays within capacity.
// It is atomic: if capacity would be exceeded, no state is modified.
//
// Precondition: it is non-nil.
// Postcondition: on error, backpack state is unchanged.
func (b *Backpack) Add(it *Item, capacity units.Volume) error {
	if b.TotalVolume()+it.Volume() > capacity {
		return fmt.Errorf("backpack: adding %s would exceed capacity (%s + %s > %s)",
			it.Name(), b.TotalVolume(), it.Volume(), capacity)
	}
	b.items = append(b.items, it)
	return nil
}

// Remove removes the item with the given id.
//
// Postcondition: returns the removed item, or an error when it is not carried.
func (b *Backpack) Remove(id uuid.UUID) (*Item, error) {
	for i, it := range b.items {
		if it.ID == id {
			b.items = slices.Delete(b.items, i, i+1)
			return it, nil
		}
	}
	return nil, fmt.Errorf("backpack: instance %s not found", id)
}

// Items returns a snapshot copy of all carried items.
//
// Postcondition: returned slice is a copy; mutations do not affect the backpack.
func (b *Backpack) Items() []*Item {
	return slices.Clone(b.items)
}

// TotalVolume returns the volume of everything carried.
//
// Postcondition: result >= 0.
func (b *Backpack) TotalVolume() units.Volume {
	var total units.Volume
	for _, it := range b.items {
		total += it.Volume()
	}
	return total
}

// Overflow removes the most recently stowed items until the rest fit in
// capacity and returns them in removal order.
//
// Postcondition: TotalVolume() <= max(capacity, 0).
func (b *Backpack) Overflow(capacity units.Volume) []*Item {
	var out []*Item
	for len(b.items) > 0 && b.TotalVolume() > capacity {
		last := b.items[len(b.items)-1]
		b.items = b.items[:len(b.items)-1]
		out = append(out, last)
	}
	return out
}
