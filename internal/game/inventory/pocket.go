package inventory

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/survival/internal/game/units"
)

// PocketKind distinguishes storage pockets from armor plate carriers.
type PocketKind string

const (
	PocketContainer PocketKind = "container"
	PocketAblative  PocketKind = "ablative"
)

// ErrPocketFull is returned when an item does not fit in a pocket.
var ErrPocketFull = errors.New("pocket full")

// PocketDef is the static definition of one pocket of an item.
type PocketDef struct {
	Kind        PocketKind `yaml:"kind"`
	MaxVolumeML int64      `yaml:"max_volume_ml"`
	// Default names an item spawned into the pocket with its carrier.
	Default string `yaml:"default"`
}

func (p *PocketDef) validate(id string, i int) error {
	var errs []error
	if p.Kind != PocketContainer && p.Kind != PocketAblative {
		errs = append(errs, fmt.Errorf("item %q: pockets[%d] kind %q must be container or ablative", id, i, p.Kind))
	}
	if p.MaxVolumeML < 0 {
		errs = append(errs, fmt.Errorf("item %q: pockets[%d] max_volume_ml must be >= 0", id, i))
	}
	return errors.Join(errs...)
}

// Pocket holds items inside a carrier item. An ablative pocket holds at most
// one plate.
type Pocket struct {
	def   *PocketDef
	items []*Item
}

func newPocket(def *PocketDef) *Pocket { return &Pocket{def: def} }

// Ablative reports whether p carries an armor plate.
func (p *Pocket) Ablative() bool { return p.def.Kind == PocketAblative }

// MaxVolume returns the capacity of p.
func (p *Pocket) MaxVolume() units.Volume { return units.FromMilliliter(p.def.MaxVolumeML) }

// Empty reports whether p holds nothing.
func (p *Pocket) Empty() bool { return len(p.items) == 0 }

// Front returns the first held item, or nil.
func (p *Pocket) Front() *Item {
	if len(p.items) == 0 {
		return nil
	}
	return p.items[0]
}

// Items returns a copy of the held items.
func (p *Pocket) Items() []*Item { return slices.Clone(p.items) }

// ContentsVolume returns the volume of everything held.
func (p *Pocket) ContentsVolume() units.Volume {
	var v units.Volume
	for _, it := range p.items {
		v += it.Volume()
	}
	return v
}

// Add puts it into p.
//
// Postcondition: Returns ErrPocketFull and leaves p unchanged when it does not fit.
func (p *Pocket) Add(it *Item) error {
	if p.Ablative() && len(p.items) > 0 {
		return fmt.Errorf("adding %s: %w", it.Name(), ErrPocketFull)
	}
	if p.def.MaxVolumeML > 0 && p.ContentsVolume()+it.Volume() > p.MaxVolume() {
		return fmt.Errorf("adding %s: %w", it.Name(), ErrPocketFull)
	}
	p.items = append(p.items, it)
	return nil
}

// Remove takes it out of p and reports whether it was held.
func (p *Pocket) Remove(it *Item) bool {
	i := slices.Index(p.items, it)
	if i < 0 {
		return false
	}
	p.items = slices.Delete(p.items, i, i+1)
	return true
}

// Replace swaps old for repl in place, keeping pocket order. Capacity is not
// rechecked because a broken plate replaces a whole one.
//
// Postcondition: Returns false and leaves p unchanged when old is not held.
func (p *Pocket) Replace(old, repl *Item) bool {
	i := slices.Index(p.items, old)
	if i < 0 {
		return false
	}
	p.items[i] = repl
	return true
}

// Clear empties p and returns what it held.
func (p *Pocket) Clear() []*Item {
	out := p.items
	p.items = nil
	return out
}
