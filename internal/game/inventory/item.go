package inventory

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/survival/internal/game/units"
)

// Item flags.
const (
	// FlagUnbreakable items never take wear.
	FlagUnbreakable = "UNBREAKABLE"
	// FlagSturdy armor only wears when the hit beats its own resistance.
	FlagSturdy = "STURDY"
	// FlagUsePowerWhenHit armor drains its battery by the damage it intercepts.
	FlagUsePowerWhenHit = "USE_POWER_WHEN_HIT"
)

// MaterialUse is one material of an item and how much of it there is.
type MaterialUse struct {
	Material string `yaml:"material"`
	// Portion weights how likely this material is picked to describe wear.
	Portion int `yaml:"portion"`
	// Thickness scales the material's per-thickness resistances.
	Thickness float64 `yaml:"thickness"`
	// Cover is the percent chance this material takes part in mitigation.
	// Nil means 100.
	Cover *int `yaml:"cover"`

	def *MaterialDef
}

// Def returns the linked material.
func (m *MaterialUse) Def() *MaterialDef { return m.def }

func (m *MaterialUse) cover() int {
	if m.Cover == nil {
		return 100
	}
	return *m.Cover
}

func (m *MaterialUse) portion() int {
	if m.Portion <= 0 {
		return 1
	}
	return m.Portion
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	VolumeML    int64         `yaml:"volume_ml"`
	Flags       []string      `yaml:"flags"`
	Materials   []MaterialUse `yaml:"materials"`
	// DegradeIncrements is the number of damage/repair cycles per level of
	// permanent wear. Nil means DefaultDegradeIncrements; 0 disables degradation.
	DegradeIncrements *int        `yaml:"degrade_increments"`
	Armor             *ArmorDef   `yaml:"armor"`
	Pockets           []PocketDef `yaml:"pockets"`
	// BatteryKJ is the energy a new instance holds.
	BatteryKJ float64 `yaml:"battery_kj"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("item %q: name must not be empty", d.ID))
	}
	if d.VolumeML < 0 {
		errs = append(errs, fmt.Errorf("item %q: volume_ml must be >= 0", d.ID))
	}
	if len(d.Materials) == 0 {
		errs = append(errs, fmt.Errorf("item %q: needs at least one material", d.ID))
	}
	for i, m := range d.Materials {
		if m.Material == "" {
			errs = append(errs, fmt.Errorf("item %q: materials[%d] missing material id", d.ID, i))
		}
		if m.Thickness < 0 {
			errs = append(errs, fmt.Errorf("item %q: materials[%d] thickness must be >= 0", d.ID, i))
		}
		if c := m.cover(); c < 0 || c > 100 {
			errs = append(errs, fmt.Errorf("item %q: materials[%d] cover must be in [0,100]", d.ID, i))
		}
	}
	if d.DegradeIncrements != nil && *d.DegradeIncrements < 0 {
		errs = append(errs, fmt.Errorf("item %q: degrade_increments must be >= 0", d.ID))
	}
	if d.Armor != nil {
		errs = append(errs, d.Armor.validate(d.ID))
	}
	for i := range d.Pockets {
		errs = append(errs, d.Pockets[i].validate(d.ID, i))
	}
	if d.BatteryKJ < 0 {
		errs = append(errs, fmt.Errorf("item %q: battery_kj must be >= 0", d.ID))
	}
	return errors.Join(errs...)
}

// HasFlag reports whether d carries flag.
func (d *ItemDef) HasFlag(flag string) bool { return slices.Contains(d.Flags, flag) }

// Volume returns the space one instance occupies.
func (d *ItemDef) Volume() units.Volume { return units.FromMilliliter(d.VolumeML) }

// Item is a concrete instance of an ItemDef with its own wear state.
//
// Invariant: degradation + MinDamage <= damage <= MaxDamage.
type Item struct {
	ID          uuid.UUID
	def         *ItemDef
	damage      int
	degradation int
	energy      units.Energy
	pockets     []*Pocket
}

// Def returns the item's definition.
func (it *Item) Def() *ItemDef { return it.def }

// Name returns the display name.
func (it *Item) Name() string { return it.def.Name }

// HasFlag reports whether the item's definition carries flag.
func (it *Item) HasFlag(flag string) bool { return it.def.HasFlag(flag) }

// IsArmor reports whether the item can be worn as armor.
func (it *Item) IsArmor() bool { return it.def.Armor != nil }

// Volume returns the space the item and its contents occupy.
func (it *Item) Volume() units.Volume {
	v := it.def.Volume()
	for _, p := range it.pockets {
		v += p.ContentsVolume()
	}
	return v
}

// Pockets returns the item's pockets in declaration order.
func (it *Item) Pockets() []*Pocket { return it.pockets }

// AblativePockets returns every pocket that holds armor plates.
func (it *Item) AblativePockets() []*Pocket {
	var out []*Pocket
	for _, p := range it.pockets {
		if p.Ablative() {
			out = append(out, p)
		}
	}
	return out
}

// Contents returns every item held in the item's pockets.
func (it *Item) Contents() []*Item {
	var out []*Item
	for _, p := range it.pockets {
		out = append(out, p.Items()...)
	}
	return out
}

// Energy returns the charge held by the item's battery.
func (it *Item) Energy() units.Energy { return it.energy }

// EnergyConsume drains up to amount from the battery.
//
// Postcondition: Returns the energy actually drained; Energy() never goes negative.
func (it *Item) EnergyConsume(amount units.Energy) units.Energy {
	if amount <= 0 {
		return 0
	}
	used := min(amount, it.energy)
	it.energy -= used
	return used
}
