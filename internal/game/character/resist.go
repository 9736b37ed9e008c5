package character

import (
	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/trait"
)

// Extra environmental protection granted to the eyes by sleep-sight mutations.
const seeSleepEyeProtection = 8

// CanInterfaceArmor reports whether a powered bionic lets the character
// operate armor that needs a neural interface.
func (c *Character) CanInterfaceArmor() bool {
	for _, b := range c.Bionics {
		if b.Powered && b.ID.Def().HasFlag(trait.FlagArmorInterface) {
			return true
		}
	}
	return false
}

// MutationArmor returns the summed natural protection of every mutation on bp.
func (c *Character) MutationArmor(bp anatomy.BodyPartID) damage.Resistances {
	var res damage.Resistances
	for _, m := range c.Mutations {
		res.Add(m.ArmorAt(bp))
	}
	return res
}

// MutationArmorType returns the flat mutation protection against t on bp.
func (c *Character) MutationArmorType(bp anatomy.BodyPartID, t damage.Type) float64 {
	return c.MutationArmor(bp).TypeResist(t)
}

// MutationArmorUnit returns how much of u mutations on bp stop.
func (c *Character) MutationArmorUnit(bp anatomy.BodyPartID, u damage.Unit) float64 {
	return c.MutationArmor(bp).EffectiveResist(u)
}

// bionicProtec sums the flat protection of every installed bionic on bp.
func (c *Character) bionicProtec(bp anatomy.BodyPartID) damage.Resistances {
	var res damage.Resistances
	for _, b := range c.Bionics {
		res.Add(b.ID.Def().ProtecAt(bp))
	}
	return res
}

// GetArmorType returns the total flat protection against t on bp: worn
// armor, the armor bonus, bionics, mutations and the body part itself.
//
// Postcondition: Returns 0 for types that ignore resistance; has no side effects.
func (c *Character) GetArmorType(t damage.Type, bp anatomy.BodyPartID) float64 {
	if t.NoResist() {
		return 0
	}
	sum := c.Worn.DamageResist(t, bp)
	sum += c.ArmorBonus.TypeResist(t)
	sum += c.bionicProtec(bp).TypeResist(t)
	sum += c.MutationArmorType(bp, t)
	if part, ok := c.parts.Get(bp); ok {
		sum += part.Intrinsic().TypeResist(t)
	}
	return sum
}

// GetAllArmorType returns GetArmorType for every body part, plus the own
// resistance of each extra item listed for that part in clothing.
//
// Postcondition: The result has an entry for every registered body part.
func (c *Character) GetAllArmorType(t damage.Type, clothing map[anatomy.BodyPartID][]*inventory.Item) map[anatomy.BodyPartID]float64 {
	out := make(map[anatomy.BodyPartID]float64)
	for _, part := range c.parts.All() {
		v := c.GetArmorType(t, part.ID)
		for _, it := range clothing[part.ID] {
			v += it.Resist(t, part.ID)
		}
		out[part.ID] = v
	}
	return out
}

// GetEnvResist returns the environmental protection of bp.
func (c *Character) GetEnvResist(bp anatomy.BodyPartID) int {
	ret := c.Worn.EnvResist(bp)
	for _, b := range c.Bionics {
		ret += b.ID.Def().EnvProtecAt(bp)
	}
	if c.HasFlag(trait.FlagSeeSleep) {
		if part, ok := c.parts.Get(bp); ok && part.Eyes {
			ret += seeSleepEyeProtection
		}
	}
	return ret
}
