package inventory

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Floor holds the items lying at each location: the remains of destroyed
// armor, the contents of its pockets and gear a character can no longer carry.
// It is safe for concurrent use.
type Floor struct {
	mu    sync.RWMutex
	items map[string][]*Item
}

// NewFloor returns an empty Floor.
func NewFloor() *Floor {
	return &Floor{items: make(map[string][]*Item)}
}

// Drop appends items to the floor at location, keeping their order.
//
// Precondition: location is non-empty.
func (f *Floor) Drop(location string, items ...*Item) {
	if len(items) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[location] = append(f.items[location], items...)
}

// Take removes the item with the given id from location.
//
// Postcondition: Returns false and leaves the floor unchanged when no such item lies there.
func (f *Floor) Take(location string, id uuid.UUID) (*Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := f.items[location]
	i := slices.IndexFunc(at, func(it *Item) bool { return it.ID == id })
	if i < 0 {
		return nil, false
	}
	it := at[i]
	f.items[location] = slices.Delete(at, i, i+1)
	return it, true
}

// Sweep removes and returns everything at location.
func (f *Floor) Sweep(location string) []*Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := f.items[location]
	delete(f.items, location)
	if at == nil {
		return []*Item{}
	}
	return at
}

// At returns a copy of the items lying at location.
func (f *Floor) At(location string) []*Item {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.items[location])
}

// Locations lists every location with at least one item, sorted.
func (f *Floor) Locations() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.items))
	for loc, at := range f.items {
		if len(at) > 0 {
			out = append(out, loc)
		}
	}
	slices.Sort(out)
	return out
}
