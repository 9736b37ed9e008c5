package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
)

// MaterialDef is the static definition of a material items are made of.
type MaterialDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Resist is the resistance per unit of thickness, keyed by damage type id.
	Resist map[string]float64 `yaml:"resist"`
	// BashVerb describes blunt wear, e.g. "dented".
	BashVerb string `yaml:"bash_dmg_verb"`
	// CutVerb describes all other wear, e.g. "cut".
	CutVerb string `yaml:"cut_dmg_verb"`
	// DamageAdjectives label damage levels 1..n, e.g. ["scratched", "cut", "torn"].
	DamageAdjectives []string `yaml:"dmg_adj"`

	resist damage.Resistances
}

// Validate reports every structural problem with m.
//
// Postcondition: Returns nil iff m is well-formed.
func (m *MaterialDef) Validate() error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if m.BashVerb == "" {
		errs = append(errs, fmt.Errorf("material %q: bash_dmg_verb must not be empty", m.ID))
	}
	if m.CutVerb == "" {
		errs = append(errs, fmt.Errorf("material %q: cut_dmg_verb must not be empty", m.ID))
	}
	for id, v := range m.Resist {
		if v < 0 {
			errs = append(errs, fmt.Errorf("material %q: resist %q must be >= 0", m.ID, id))
		}
	}
	return errors.Join(errs...)
}

// Resistances returns the per-thickness resistances of m.
func (m *MaterialDef) Resistances() damage.Resistances { return m.resist }

// DamageVerb returns the verb used when t wears an item made of m.
func (m *MaterialDef) DamageVerb(t damage.Type) string {
	if t.Blunt() {
		return m.BashVerb
	}
	return m.CutVerb
}

// DamageAdjective returns the adjective for damage level, or "" for
// undamaged and better-than-new levels.
//
// Postcondition: levels beyond the table reuse its last entry.
func (m *MaterialDef) DamageAdjective(level int) string {
	if level <= 0 || len(m.DamageAdjectives) == 0 {
		return ""
	}
	return m.DamageAdjectives[min(level, len(m.DamageAdjectives))-1]
}

func (m *MaterialDef) link(types *damage.Registry) error {
	res, err := anatomy.ResolveResistances(types, m.Resist)
	if err != nil {
		return fmt.Errorf("material %q: %w", m.ID, err)
	}
	m.resist = res
	return nil
}
