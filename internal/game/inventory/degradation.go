package inventory

import "github.com/cory-johannsen/survival/internal/game/dice"

// Wear scale. Damage levels are LevelWidth wide; negative levels are better
// than factory condition.
const (
	MinDamage                = -1000
	MaxDamage                = 4000
	LevelWidth               = 1000
	DefaultDegradeIncrements = 50
)

// Damage returns the current repairable wear.
func (it *Item) Damage() int { return it.damage }

// Degradation returns the permanent wear floor.
func (it *Item) Degradation() int { return it.degradation }

// MinDamage returns the lowest damage a fully repaired, undegraded item can reach.
func (it *Item) MinDamage() int { return MinDamage }

// MaxDamage returns the damage at which the item is destroyed.
func (it *Item) MaxDamage() int { return MaxDamage }

// repairFloor is the lowest damage repair can reach.
func (it *Item) repairFloor() int { return it.degradation + MinDamage }

// DegradeIncrements returns how many damage/repair cycles add one level of
// degradation. Zero means the item never degrades.
func (it *Item) DegradeIncrements() int {
	if it.def.DegradeIncrements == nil {
		return DefaultDegradeIncrements
	}
	return *it.def.DegradeIncrements
}

// DamageLevel returns the signed wear level: 0 for exactly 0 damage, otherwise
// the damage divided by LevelWidth rounded away from zero.
func (it *Item) DamageLevel() int {
	switch {
	case it.damage == 0:
		return 0
	case it.damage > 0:
		return (it.damage-1)/LevelWidth + 1
	default:
		return -((-it.damage-1)/LevelWidth + 1)
	}
}

// SetDamage sets the current wear.
//
// Postcondition: Damage() is qty clamped to [Degradation()+MinDamage, MaxDamage].
func (it *Item) SetDamage(qty int) {
	it.damage = min(max(qty, it.repairFloor()), MaxDamage)
}

// SetDegradation sets the permanent wear floor and lifts damage onto it.
//
// Postcondition: Degradation() is in [0, MaxDamage], or 0 when DegradeIncrements() is 0.
func (it *Item) SetDegradation(qty int) {
	if it.DegradeIncrements() <= 0 {
		it.degradation = 0
	} else {
		it.degradation = min(max(qty, 0), MaxDamage)
	}
	it.SetDamage(it.damage)
}

// ModDamage adds qty to the current wear and reports whether that destroyed
// the item. Wear gained by a surviving item books a fifth of a level per
// increment as degradation, so repeated damage and repair cycles raise the
// repair floor. Unbreakable items are never changed.
//
// Postcondition: Returns true iff Damage()+qty exceeded MaxDamage.
func (it *Item) ModDamage(qty int) bool {
	if it.HasFlag(FlagUnbreakable) {
		return false
	}
	destroyed := it.damage+qty > MaxDamage
	before := it.damage
	it.SetDamage(it.damage + qty)
	if qty > 0 && !destroyed {
		if inc := it.DegradeIncrements(); inc > 0 {
			it.SetDegradation(it.degradation + (it.damage-before)*5/inc)
		}
	}
	return destroyed
}

// RandDegradation returns the degradation an item spawned with its current
// damage starts with: a uniform share of that damage scaled by the
// degradation rate.
//
// Precondition: src must be non-nil.
func (it *Item) RandDegradation(src dice.Source) int {
	inc := it.DegradeIncrements()
	if it.damage <= 0 || inc <= 0 {
		return 0
	}
	return dice.Range(src, 0, it.damage) * DefaultDegradeIncrements / inc
}

// RepairFully removes all repairable wear without making the item better than new.
//
// Postcondition: Damage() == max(0, Degradation()+MinDamage).
func (it *Item) RepairFully() {
	it.SetDamage(max(0, it.repairFloor()))
}

// RepairLevel removes one level of wear. Unlike RepairFully it can reinforce
// an item below zero damage.
//
// Postcondition: Damage() is lowered by LevelWidth but never below the repair floor.
func (it *Item) RepairLevel() {
	it.SetDamage(it.damage - LevelWidth)
}

// SetHP maps hit points out of durability onto the damage scale.
//
// Precondition: durability > 0.
// Postcondition: Degradation() is unchanged; Damage() never drops below the repair floor or 0.
func (it *Item) SetHP(hp, durability int) {
	if durability <= 0 {
		return
	}
	hp = min(max(hp, 0), durability)
	it.SetDamage(max(0, (durability-hp)*MaxDamage/durability))
}
