package inventory

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// Worn holds the armor a character wears, ordered from the skin outward.
// Pieces on the same layer keep the order they were put on.
type Worn struct {
	items []*Item
}

// NewWorn returns an empty outfit.
func NewWorn() *Worn {
	return &Worn{}
}

// Wear puts it on above every piece of the same or a lower layer.
//
// Precondition: it is non-nil.
// Postcondition: returns an error and leaves the outfit unchanged when it is not armor or already worn.
func (w *Worn) Wear(it *Item) error {
	if !it.IsArmor() {
		return fmt.Errorf("worn: %s is not armor", it.Name())
	}
	if slices.Contains(w.items, it) {
		return fmt.Errorf("worn: %s is already worn", it.Name())
	}
	i := len(w.items)
	for i > 0 && w.items[i-1].Layer().Rank() > it.Layer().Rank() {
		i--
	}
	w.items = slices.Insert(w.items, i, it)
	return nil
}

// TakeOff removes it and reports whether it was worn.
func (w *Worn) TakeOff(it *Item) bool {
	i := slices.Index(w.items, it)
	if i < 0 {
		return false
	}
	w.items = slices.Delete(w.items, i, i+1)
	return true
}

// Items returns the outfit from the skin outward.
//
// Postcondition: returned slice is a copy.
func (w *Worn) Items() []*Item { return slices.Clone(w.items) }

// OutermostFirst returns the outfit from the outside in, the order hits pass through it.
func (w *Worn) OutermostFirst() []*Item {
	out := slices.Clone(w.items)
	slices.Reverse(out)
	return out
}

// Covering returns the pieces covering bp from the skin outward.
func (w *Worn) Covering(bp anatomy.BodyPartID) []*Item {
	var out []*Item
	for _, it := range w.items {
		if it.Covers(bp) {
			out = append(out, it)
		}
	}
	return out
}

// DamageResist sums the flat resistance of every piece covering bp against t.
func (w *Worn) DamageResist(t damage.Type, bp anatomy.BodyPartID) float64 {
	var sum float64
	for _, it := range w.Covering(bp) {
		sum += it.Resist(t, bp)
	}
	return sum
}

// EnvResist sums the environmental protection of every piece covering bp.
func (w *Worn) EnvResist(bp anatomy.BodyPartID) int {
	sum := 0
	for _, it := range w.Covering(bp) {
		sum += it.EnvResist(bp)
	}
	return sum
}

// Capacity returns the storage the outfit offers for loose items: the
// declared volume of every container pocket worn.
func (w *Worn) Capacity() units.Volume {
	var total units.Volume
	for _, it := range w.items {
		for _, p := range it.Pockets() {
			if !p.Ablative() {
				total += p.MaxVolume()
			}
		}
	}
	return total
}
