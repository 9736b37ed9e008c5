package inventory

import (
	"math"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
)

// ArmorStatus is the outcome of wear applied to an armor piece by one hit.
type ArmorStatus int

const (
	Undamaged ArmorStatus = iota
	Damaged
	Destroyed
	// Transformed plates broke into their non-functional form.
	Transformed
)

// String returns the status label.
func (s ArmorStatus) String() string {
	switch s {
	case Damaged:
		return "damaged"
	case Destroyed:
		return "destroyed"
	case Transformed:
		return "transformed"
	default:
		return "undamaged"
	}
}

// RollPerMaterial asks Mitigate to roll every material's cover separately.
const RollPerMaterial = -1

// Threshold above which an armor's own resistance makes it immune to wear.
const unwearableResist = 1000

// Coverage returns the percent chance the item intercepts a hit at sub-part
// sbp of bp. Non-armor items cover nothing.
func (it *Item) Coverage(bp anatomy.BodyPartID, sbp anatomy.SubPartID, cover damage.Cover) int {
	if it.def.Armor == nil {
		return 0
	}
	return it.def.Armor.Coverage(bp, sbp, cover)
}

// Covers reports whether the item is armor covering bp.
func (it *Item) Covers(bp anatomy.BodyPartID) bool {
	return it.def.Armor != nil && it.def.Armor.Covers(bp)
}

// CoversSubPart reports whether the item is armor covering sub-part sbp of bp.
func (it *Item) CoversSubPart(bp anatomy.BodyPartID, sbp anatomy.SubPartID) bool {
	return it.def.Armor != nil && it.def.Armor.CoversSubPart(bp, sbp)
}

// Layer returns the armor layer, LayerNormal for non-armor.
func (it *Item) Layer() Layer {
	if it.def.Armor == nil || it.def.Armor.Layer == "" {
		return LayerNormal
	}
	return it.def.Armor.Layer
}

// resistances sums material and explicit armor resistance. Materials take
// part when their cover beats roll; RollPerMaterial rolls each one with src.
func (it *Item) resistances(roll int, src dice.Source) damage.Resistances {
	var res damage.Resistances
	for i := range it.def.Materials {
		m := &it.def.Materials[i]
		if m.def == nil {
			continue
		}
		r := roll
		if roll == RollPerMaterial {
			r = src.Intn(100)
		}
		if r >= m.cover() {
			continue
		}
		res.Add(m.def.Resistances().Scaled(m.Thickness))
	}
	if it.def.Armor != nil {
		res.Add(it.def.Armor.resist)
	}
	return res
}

// allResistances returns every material's resistance as if all were struck.
func (it *Item) allResistances() damage.Resistances {
	return it.resistances(0, nil)
}

// Resist returns the item's own flat resistance against t at bp. Armor not
// covering bp contributes nothing; an empty bp ignores coverage.
func (it *Item) Resist(t damage.Type, bp anatomy.BodyPartID) float64 {
	if bp != "" && !it.Covers(bp) {
		return 0
	}
	return it.allResistances().TypeResist(t)
}

// EnvResist returns the environmental protection the item gives bp.
func (it *Item) EnvResist(bp anatomy.BodyPartID) int {
	if !it.Covers(bp) {
		return 0
	}
	return it.def.Armor.EnvResist
}

// Mitigate reduces u by the item's resistance. Pass RollPerMaterial to roll
// every material's cover independently with src.
//
// Precondition: src must be non-nil when roll == RollPerMaterial.
// Postcondition: u.Amount >= 0.
func (it *Item) Mitigate(u *damage.Unit, roll int, src dice.Source) {
	it.resistances(roll, src).Mitigate(u)
}

// DamageArmorDurability decides whether the mitigated hit u wears the item.
// Pieces covering several body parts wear proportionally less often. Hits
// beating the item's own resistance wear it about half the time; weaker hits
// only chip non-sturdy armor, once in 200.
//
// Precondition: src must be non-nil.
// Postcondition: Returns Damaged or Destroyed only after one level of wear was applied.
func (it *Item) DamageArmorDurability(u damage.Unit, bp anatomy.BodyPartID, src dice.Source) ArmorStatus {
	if it.HasFlag(FlagUnbreakable) || u.Amount <= 0 {
		return Undamaged
	}
	own := it.Resist(u.Type, "")
	if own > unwearableResist {
		return Undamaged
	}
	parts := 1
	if it.def.Armor != nil {
		parts = max(1, len(it.def.Armor.CoveredParts()))
	}
	if !dice.OneIn(src, parts) {
		return Undamaged
	}
	if u.Amount > own {
		if dice.OneIn(src, int(math.Ceil(u.Amount))) || dice.OneIn(src, 2) {
			return Undamaged
		}
	} else if it.HasFlag(FlagSturdy) || !dice.OneIn(src, 200) {
		return Undamaged
	}
	if it.ModDamage(LevelWidth) {
		return Destroyed
	}
	return Damaged
}

// DamageArmorTransforms decides whether the unmitigated hit pre breaks a
// plate. Plates are rated to survive three hits at their own resistance, so
// the break chance is 33.3% per multiple of that resistance.
//
// Precondition: src must be non-nil.
func (it *Item) DamageArmorTransforms(pre damage.Unit, src dice.Source) ArmorStatus {
	if pre.Amount <= 0 {
		return Undamaged
	}
	own := it.Resist(pre.Type, "")
	if own <= 0 {
		return Transformed
	}
	if dice.FloatRange(src, 0, 100) < 33.3*(pre.Amount/own) {
		return Transformed
	}
	return Undamaged
}

// BaseMaterial returns the material with the largest portion, or nil.
func (it *Item) BaseMaterial() *MaterialDef {
	var best *MaterialUse
	for i := range it.def.Materials {
		m := &it.def.Materials[i]
		if best == nil || m.portion() > best.portion() {
			best = m
		}
	}
	if best == nil {
		return nil
	}
	return best.def
}

// RandomMaterial picks a material weighted by portion, or nil.
//
// Precondition: src must be non-nil.
func (it *Item) RandomMaterial(src dice.Source) *MaterialDef {
	total := 0
	for i := range it.def.Materials {
		total += it.def.Materials[i].portion()
	}
	if total == 0 {
		return nil
	}
	pick := src.Intn(total)
	for i := range it.def.Materials {
		pick -= it.def.Materials[i].portion()
		if pick < 0 {
			return it.def.Materials[i].def
		}
	}
	return it.def.Materials[len(it.def.Materials)-1].def
}
