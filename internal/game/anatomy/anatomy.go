// Package anatomy defines body parts, their sub-locations and the
// resistances a body part provides on its own.
package anatomy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
)

// BodyPartID identifies a body part, e.g. "torso".
type BodyPartID string

// SubPartID identifies a sub-location within a body part, e.g. "torso_upper".
type SubPartID string

// SubPartDef is one hittable sub-location of a body part.
type SubPartDef struct {
	ID   SubPartID `yaml:"id"`
	Name string    `yaml:"name"`
	// Secondary sub-parts hang off the body part (straps, belts) and are
	// struck alongside a primary sub-part.
	Secondary bool `yaml:"secondary"`
	// HitSize weights the chance of this sub-part being selected.
	HitSize int `yaml:"hit_size"`

	parent BodyPartID
}

// Parent returns the body part owning s.
func (s *SubPartDef) Parent() BodyPartID { return s.parent }

// BodyPartDef is the static definition of a body part, loaded from YAML.
type BodyPartDef struct {
	ID   BodyPartID `yaml:"id"`
	Name string     `yaml:"name"`
	// Eyes marks the body part that benefits from sleep-sight mutations.
	Eyes     bool               `yaml:"eyes"`
	Resist   map[string]float64 `yaml:"resist"`
	SubParts []*SubPartDef      `yaml:"sub_parts"`

	intrinsic damage.Resistances
}

// Validate reports every structural problem with d.
func (d *BodyPartDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	seen := make(map[SubPartID]bool, len(d.SubParts))
	primaries := 0
	for i, sp := range d.SubParts {
		if sp == nil || sp.ID == "" {
			errs = append(errs, fmt.Errorf("body part %q: sub_parts[%d] missing id", d.ID, i))
			continue
		}
		if seen[sp.ID] {
			errs = append(errs, fmt.Errorf("body part %q: duplicate sub part %q", d.ID, sp.ID))
		}
		seen[sp.ID] = true
		if sp.HitSize < 0 {
			errs = append(errs, fmt.Errorf("body part %q: sub part %q hit_size must be >= 0", d.ID, sp.ID))
		}
		if !sp.Secondary {
			primaries++
		}
	}
	if len(d.SubParts) > 0 && primaries == 0 {
		errs = append(errs, fmt.Errorf("body part %q: needs at least one primary sub part", d.ID))
	}
	return errors.Join(errs...)
}

// Intrinsic returns the resistances d provides without armor.
func (d *BodyPartDef) Intrinsic() damage.Resistances { return d.intrinsic }

// SubPart returns the sub-part with id, or nil.
func (d *BodyPartDef) SubPart(id SubPartID) *SubPartDef {
	for _, sp := range d.SubParts {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

// RandomSubPart picks a sub-part weighted by hit size from those whose
// Secondary flag equals secondary.
//
// Precondition: src must be non-nil.
// Postcondition: Returns nil when d has no matching sub-part.
func (d *BodyPartDef) RandomSubPart(src dice.Source, secondary bool) *SubPartDef {
	var candidates []*SubPartDef
	total := 0
	for _, sp := range d.SubParts {
		if sp.Secondary != secondary {
			continue
		}
		candidates = append(candidates, sp)
		total += weight(sp)
	}
	if len(candidates) == 0 {
		return nil
	}
	pick := src.Intn(total)
	for _, sp := range candidates {
		pick -= weight(sp)
		if pick < 0 {
			return sp
		}
	}
	return candidates[len(candidates)-1]
}

func weight(sp *SubPartDef) int {
	if sp.HitSize <= 0 {
		return 1
	}
	return sp.HitSize
}

// Registry holds every body part keyed by id.
type Registry struct {
	parts map[BodyPartID]*BodyPartDef
	subs  map[SubPartID]*SubPartDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		parts: make(map[BodyPartID]*BodyPartDef),
		subs:  make(map[SubPartID]*SubPartDef),
	}
}

// Register validates def and adds it and its sub-parts.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error when def is invalid or any id collides.
func (r *Registry) Register(def *BodyPartDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.parts[def.ID]; dup {
		return fmt.Errorf("body part %q registered twice", def.ID)
	}
	for _, sp := range def.SubParts {
		if _, dup := r.subs[sp.ID]; dup {
			return fmt.Errorf("sub part %q registered twice", sp.ID)
		}
	}
	r.parts[def.ID] = def
	for _, sp := range def.SubParts {
		sp.parent = def.ID
		r.subs[sp.ID] = sp
	}
	return nil
}

// Link resolves each body part's resistance table against types.
//
// Postcondition: Returns an error naming every unknown damage type.
func (r *Registry) Link(types *damage.Registry) error {
	var errs []error
	for _, def := range r.parts {
		res, err := ResolveResistances(types, def.Resist)
		if err != nil {
			errs = append(errs, fmt.Errorf("body part %q: %w", def.ID, err))
			continue
		}
		def.intrinsic = res
	}
	return errors.Join(errs...)
}

// Get returns the body part for id.
func (r *Registry) Get(id BodyPartID) (*BodyPartDef, bool) {
	d, ok := r.parts[id]
	return d, ok
}

// SubPart returns the sub-part for id.
func (r *Registry) SubPart(id SubPartID) (*SubPartDef, bool) {
	sp, ok := r.subs[id]
	return sp, ok
}

// All returns every body part ordered by id.
func (r *Registry) All() []*BodyPartDef {
	out := make([]*BodyPartDef, 0, len(r.parts))
	for _, d := range r.parts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ResolveResistances converts a YAML resistance table keyed by damage type id
// into interned Resistances.
//
// Postcondition: Returns an error naming every unknown type id.
func ResolveResistances(types *damage.Registry, raw map[string]float64) (damage.Resistances, error) {
	var out damage.Resistances
	var errs []error
	for id, v := range raw {
		t, ok := types.Lookup(id)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown damage type %q", id))
			continue
		}
		out.Set(t, v)
	}
	return out, errors.Join(errs...)
}
