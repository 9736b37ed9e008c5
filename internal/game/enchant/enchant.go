// Package enchant aggregates enchantment values granted by worn items,
// bionics and mutations, and applies them to game quantities.
package enchant

import (
	"errors"
	"fmt"
	"sort"
)

// Mod names an enchantable quantity, e.g. "ARMOR_BASH".
// Damage types reference mods by name, so the set is open.
type Mod string

// Forcefield is the chance, in [0, 1], that an incoming attack is negated outright.
const Forcefield Mod = "FORCEFIELD"

// ConditionScope is the script scope that holds enchantment condition hooks.
const ConditionScope = "enchantments"

// ValueDef is one adjustment an enchantment applies to a Mod.
type ValueDef struct {
	Mod Mod `yaml:"mod"`
	// Add is a flat amount added to the base value.
	Add float64 `yaml:"add"`
	// Multiply scales the sum; 0.25 adds 25%, -0.5 halves.
	Multiply float64 `yaml:"multiply"`
}

// Def is the static definition of an enchantment, loaded from YAML.
type Def struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Condition names a Lua function in ConditionScope. The enchantment is
	// active only while the function returns true. Empty means always active.
	Condition string     `yaml:"condition"`
	Values    []ValueDef `yaml:"values"`
}

// Validate reports every structural problem with d.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if len(d.Values) == 0 {
		errs = append(errs, fmt.Errorf("enchantment %q: values must not be empty", d.ID))
	}
	for i, v := range d.Values {
		if v.Mod == "" {
			errs = append(errs, fmt.Errorf("enchantment %q: values[%d] missing mod", d.ID, i))
		}
	}
	return errors.Join(errs...)
}

// Registry holds enchantment definitions keyed by id.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error when def is invalid or its id is already registered.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.defs[def.ID]; dup {
		return fmt.Errorf("enchantment %q registered twice", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the enchantment for id.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Resolve maps ids to definitions.
//
// Postcondition: Returns an error naming every unknown id.
func (r *Registry) Resolve(ids []string) ([]*Def, error) {
	out := make([]*Def, 0, len(ids))
	var errs []error
	for _, id := range ids {
		d, ok := r.defs[id]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown enchantment %q", id))
			continue
		}
		out = append(out, d)
	}
	return out, errors.Join(errs...)
}

// All returns every enchantment ordered by id.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
