// Package damage models damage types, damage instances and resistance tables.
package damage

import (
	"errors"
	"fmt"
	"sort"
)

// TypeDef is the static definition of a damage type, loaded from YAML.
type TypeDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// NoResist types bypass every resistance source.
	NoResist bool `yaml:"no_resist"`
	// PercentResist types treat resistance as a percentage of the incoming amount.
	PercentResist bool `yaml:"percent_resist"`
	// Blunt selects the bash damage verb when describing armor wear.
	Blunt bool `yaml:"blunt"`
	// ArmorMod names the enchantment value applied before armor mitigation.
	ArmorMod string `yaml:"armor_mod"`
	// ExtraMod names the enchantment value applied after all mitigation.
	ExtraMod string `yaml:"extra_mod"`
	// MutationResistAs substitutes another type when looking up mutation armor.
	MutationResistAs string `yaml:"mutation_resist_as"`
	// Cover is "melee", "ranged" or empty and selects the coverage figure
	// armor uses against this type.
	Cover string `yaml:"cover"`

	resistAs *TypeDef
}

// Validate reports every structural problem with d.
//
// Postcondition: Returns nil when d is usable, or a joined error naming each violation.
func (d *TypeDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.NoResist && d.PercentResist {
		errs = append(errs, fmt.Errorf("damage type %q: no_resist and percent_resist are exclusive", d.ID))
	}
	if _, ok := coverNames[d.Cover]; !ok {
		errs = append(errs, fmt.Errorf("damage type %q: cover %q must be melee, ranged or empty", d.ID, d.Cover))
	}
	if d.MutationResistAs == d.ID && d.ID != "" {
		errs = append(errs, fmt.Errorf("damage type %q: mutation_resist_as must name another type", d.ID))
	}
	return errors.Join(errs...)
}

// Type is an interned handle to a registered damage type.
// Handles are comparable and usable as map keys; the zero Type is invalid.
type Type struct {
	def *TypeDef
}

// Valid reports whether t refers to a registered type.
func (t Type) Valid() bool { return t.def != nil }

// ID returns the type id, or "" for the zero Type.
func (t Type) ID() string {
	if t.def == nil {
		return ""
	}
	return t.def.ID
}

// String returns the type id.
func (t Type) String() string { return t.ID() }

// Name returns the display name, falling back to the id.
func (t Type) Name() string {
	if t.def == nil {
		return ""
	}
	if t.def.Name != "" {
		return t.def.Name
	}
	return t.def.ID
}

// NoResist reports whether resistances are ignored for t.
func (t Type) NoResist() bool { return t.def != nil && t.def.NoResist }

// PercentResist reports whether t is resisted as a percentage.
func (t Type) PercentResist() bool { return t.def != nil && t.def.PercentResist }

// Blunt reports whether t wears armor with the bash verb.
func (t Type) Blunt() bool { return t.def != nil && t.def.Blunt }

// ArmorMod returns the pre-mitigation enchantment value id, or "".
func (t Type) ArmorMod() string {
	if t.def == nil {
		return ""
	}
	return t.def.ArmorMod
}

// ExtraMod returns the post-mitigation enchantment value id, or "".
func (t Type) ExtraMod() string {
	if t.def == nil {
		return ""
	}
	return t.def.ExtraMod
}

// Cover returns which coverage figure armor uses against t.
func (t Type) Cover() Cover {
	if t.def == nil {
		return CoverDefault
	}
	return coverNames[t.def.Cover]
}

// MutationResistType returns the type used for mutation armor lookups:
// the linked substitute when one is declared, t otherwise.
func (t Type) MutationResistType() Type {
	if t.def == nil || t.def.resistAs == nil {
		return t
	}
	return Type{def: t.def.resistAs}
}

// Registry interns damage types by id.
type Registry struct {
	defs map[string]*TypeDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*TypeDef)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error when def is invalid or its id is already registered.
func (r *Registry) Register(def *TypeDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.defs[def.ID]; dup {
		return fmt.Errorf("damage type %q registered twice", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Link resolves cross references between registered types.
//
// Postcondition: Returns an error naming every unresolved mutation_resist_as reference.
func (r *Registry) Link() error {
	var errs []error
	for _, d := range r.defs {
		if d.MutationResistAs == "" {
			continue
		}
		target, ok := r.defs[d.MutationResistAs]
		if !ok {
			errs = append(errs, fmt.Errorf("damage type %q: unknown mutation_resist_as %q", d.ID, d.MutationResistAs))
			continue
		}
		d.resistAs = target
	}
	return errors.Join(errs...)
}

// Lookup returns the handle for id.
func (r *Registry) Lookup(id string) (Type, bool) {
	d, ok := r.defs[id]
	if !ok {
		return Type{}, false
	}
	return Type{def: d}, true
}

// MustLookup returns the handle for id and panics when it is unknown.
// Intended for tests and package-level fixtures.
func (r *Registry) MustLookup(id string) Type {
	t, ok := r.Lookup(id)
	if !ok {
		panic("damage: unknown type " + id)
	}
	return t
}

// All returns every registered type ordered by id.
func (r *Registry) All() []Type {
	out := make([]Type, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, Type{def: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
