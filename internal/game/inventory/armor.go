// Package inventory provides item, material and armor definitions, item
// instances with their wear model, and the containers items live in.
package inventory

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
)

// Layer orders worn armor from the skin outward.
type Layer string

const (
	LayerSkintight Layer = "skintight"
	LayerNormal    Layer = "normal"
	LayerWaist     Layer = "waist"
	LayerOuter     Layer = "outer"
	LayerBelted    Layer = "belted"
)

// layerRank maps every legal Layer to its distance from the skin.
var layerRank = map[Layer]int{
	LayerSkintight: 0,
	LayerNormal:    1,
	LayerWaist:     2,
	LayerOuter:     3,
	LayerBelted:    4,
}

// Rank returns how far from the skin l sits. Unknown layers sit at normal.
func (l Layer) Rank() int {
	if r, ok := layerRank[l]; ok {
		return r
	}
	return layerRank[LayerNormal]
}

// PortionDef is one region of an armor piece and how well it covers it.
type PortionDef struct {
	Covers []anatomy.BodyPartID `yaml:"covers"`
	// SubCovers narrows the portion to specific sub-parts. Empty means every
	// sub-part of the covered body parts.
	SubCovers []anatomy.SubPartID `yaml:"sub_covers"`
	// Coverage is the percent chance the portion intercepts a hit.
	Coverage int `yaml:"coverage"`
	// CoverMelee and CoverRanged replace Coverage for hits of that cover kind.
	CoverMelee  *int `yaml:"cover_melee"`
	CoverRanged *int `yaml:"cover_ranged"`
}

// CoverageFor returns the percent coverage of p against cover.
func (p *PortionDef) CoverageFor(cover damage.Cover) int {
	switch {
	case cover == damage.CoverMelee && p.CoverMelee != nil:
		return *p.CoverMelee
	case cover == damage.CoverRanged && p.CoverRanged != nil:
		return *p.CoverRanged
	default:
		return p.Coverage
	}
}

// covers reports whether p covers sub-part sbp of body part bp. An empty
// sbp matches the body part as a whole.
func (p *PortionDef) covers(bp anatomy.BodyPartID, sbp anatomy.SubPartID) bool {
	if !slices.Contains(p.Covers, bp) {
		return false
	}
	if sbp == "" || len(p.SubCovers) == 0 {
		return true
	}
	return slices.Contains(p.SubCovers, sbp)
}

// ArmorDef is the armor block of an item definition.
type ArmorDef struct {
	Layer    Layer        `yaml:"layer"`
	Portions []PortionDef `yaml:"portions"`
	// Resist is a flat resistance table that applies regardless of material rolls.
	Resist map[string]float64 `yaml:"resist"`
	// EnvResist protects covered body parts from environmental effects.
	EnvResist int `yaml:"env_resist"`
	// NonFunctional names the item this piece turns into when it breaks.
	// Plates with a replacement break through DamageArmorTransforms.
	NonFunctional string `yaml:"non_functional"`
	// DamageVerb replaces "is shattered" when the piece transforms.
	DamageVerb string `yaml:"damage_verb"`

	resist damage.Resistances
}

// validate reports every structural problem with a, prefixing messages with id.
func (a *ArmorDef) validate(id string) error {
	var errs []error
	if a.Layer != "" {
		if _, ok := layerRank[a.Layer]; !ok {
			errs = append(errs, fmt.Errorf("item %q: layer %q is not a valid armor layer", id, a.Layer))
		}
	}
	if len(a.Portions) == 0 {
		errs = append(errs, fmt.Errorf("item %q: armor needs at least one portion", id))
	}
	for i, p := range a.Portions {
		if len(p.Covers) == 0 {
			errs = append(errs, fmt.Errorf("item %q: portions[%d] covers nothing", id, i))
		}
		for _, c := range []struct {
			name string
			v    *int
		}{{"coverage", &p.Coverage}, {"cover_melee", p.CoverMelee}, {"cover_ranged", p.CoverRanged}} {
			if c.v != nil && (*c.v < 0 || *c.v > 100) {
				errs = append(errs, fmt.Errorf("item %q: portions[%d].%s must be in [0,100]", id, i, c.name))
			}
		}
	}
	if a.EnvResist < 0 {
		errs = append(errs, fmt.Errorf("item %q: env_resist must be >= 0", id))
	}
	return errors.Join(errs...)
}

// Coverage returns the percent coverage at sub-part sbp of bp for cover, the
// best of every portion covering that location, or 0.
func (a *ArmorDef) Coverage(bp anatomy.BodyPartID, sbp anatomy.SubPartID, cover damage.Cover) int {
	best := 0
	for i := range a.Portions {
		if a.Portions[i].covers(bp, sbp) {
			best = max(best, a.Portions[i].CoverageFor(cover))
		}
	}
	return best
}

// Covers reports whether any portion covers bp.
func (a *ArmorDef) Covers(bp anatomy.BodyPartID) bool {
	for i := range a.Portions {
		if slices.Contains(a.Portions[i].Covers, bp) {
			return true
		}
	}
	return false
}

// CoversSubPart reports whether any portion covers sub-part sbp of bp.
func (a *ArmorDef) CoversSubPart(bp anatomy.BodyPartID, sbp anatomy.SubPartID) bool {
	for i := range a.Portions {
		if a.Portions[i].covers(bp, sbp) {
			return true
		}
	}
	return false
}

// CoveredParts returns every distinct body part a covers, in declaration order.
func (a *ArmorDef) CoveredParts() []anatomy.BodyPartID {
	var out []anatomy.BodyPartID
	for _, p := range a.Portions {
		for _, bp := range p.Covers {
			if !slices.Contains(out, bp) {
				out = append(out, bp)
			}
		}
	}
	return out
}

func (a *ArmorDef) link(id string, types *damage.Registry, parts *anatomy.Registry) error {
	var errs []error
	res, err := anatomy.ResolveResistances(types, a.Resist)
	if err != nil {
		errs = append(errs, fmt.Errorf("item %q: %w", id, err))
	}
	a.resist = res
	for _, p := range a.Portions {
		for _, bp := range p.Covers {
			if _, ok := parts.Get(bp); !ok {
				errs = append(errs, fmt.Errorf("item %q: unknown body part %q", id, bp))
			}
		}
		for _, sbp := range p.SubCovers {
			sp, ok := parts.SubPart(sbp)
			if !ok {
				errs = append(errs, fmt.Errorf("item %q: unknown sub part %q", id, sbp))
				continue
			}
			if !slices.Contains(p.Covers, sp.Parent()) {
				errs = append(errs, fmt.Errorf("item %q: sub part %q outside covered body parts", id, sbp))
			}
		}
	}
	return errors.Join(errs...)
}
