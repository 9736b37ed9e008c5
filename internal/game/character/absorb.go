package character

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// Pipeline messages.
const (
	msgAttackNegated = "The incoming attack was made ineffective."
	msgADSRipple     = "The defensive forcefield surrounding your body ripples as it reduces velocity of incoming attack."
	defaultPlateVerb = "is shattered"
)

// WeakpointAttack describes the attack being absorbed.
type WeakpointAttack struct {
	// Attacker names the source of the hit for logs.
	Attacker string
}

// Weakpoint is a vulnerable spot an attack exploited.
type Weakpoint struct {
	ID   string
	Name string
}

// AbsorbResult collects the effects of absorbing one attack. The caller
// applies them with ApplyAbsorbResult.
type AbsorbResult struct {
	// Weakpoint is the weak spot struck. Weak spots are not modelled; it is always nil.
	Weakpoint *Weakpoint
	// Remains are the contents of destroyed armor, to be left at the character's feet.
	Remains []*inventory.Item
	// ArmorDestroyed is set when a worn layer was destroyed.
	ArmorDestroyed bool
	// Negated is set when a forcefield voided the whole attack.
	Negated bool
}

// AbsorbHit runs every unit of dam through the character's defenses in
// order: forcefield, active defense bionics, armor enchantments, worn armor,
// natural and bionic protection, then post-armor enchantments. Units are
// mutated in place.
//
// Precondition: dam must be non-nil.
// Postcondition: every unit's Amount is >= 0.
func (c *Character) AbsorbHit(atk WeakpointAttack, bp anatomy.BodyPartID, dam *damage.Instance) AbsorbResult {
	var res AbsorbResult

	ff := c.Enchantments.ModifyValue(enchant.Forcefield, 0)
	if float64(c.rng.Intn(100)) < ff*100 {
		c.addMsgIfPlayer(notify.Good, msgAttackNegated)
		res.Negated = true
	}

	for i := range dam.Units {
		u := &dam.Units[i]
		incoming := u.Amount
		if res.Negated {
			u.Amount = 0
		}
		// Negative hits must not wear armor.
		if u.Amount < 0 {
			u.Amount = 0
			continue
		}

		c.adsAbsorb(u)

		u.Amount = c.Enchantments.CalculateByEnchantment(u.Amount, u.Type.ArmorMod())
		u.Clamp()

		c.absorbWorn(u, bp, &res)
		c.passiveAbsorb(bp, u)

		u.Amount = c.Enchantments.CalculateByEnchantment(u.Amount, u.Type.ExtraMod())
		u.Clamp()

		c.recorder.UnitAbsorbed(u.Type.ID(), incoming, u.Amount)
		c.logger.Debug("unit absorbed",
			zap.String("attacker", atk.Attacker),
			zap.String("body_part", string(bp)),
			zap.String("type", u.Type.ID()),
			zap.Float64("incoming", incoming),
			zap.Float64("remaining", u.Amount),
		)
	}
	return res
}

// adsAbsorb lets powered active defense bionics blunt u before it reaches
// armor. Each engagement is paid for whether or not the type is absorbed.
func (c *Character) adsAbsorb(u *damage.Unit) {
	for _, b := range c.Bionics {
		ads := b.ID.Def().ADS
		if !b.Powered || ads == nil {
			continue
		}
		if u.Amount <= 0 || c.power <= ads.MinPower() {
			continue
		}
		cost := ads.Cost(u.Amount)
		if div, ok := ads.Divisor(u.Type); ok {
			if u.Amount > ads.MaxAbsorption {
				u.Amount -= ads.MaxAbsorption
			} else {
				u.Amount /= div
			}
		}
		c.ModPowerLevel(-cost)
		c.addMsgIfPlayer(notify.Good, msgADSRipple)
		u.Clamp()
	}
}

// absorbWorn runs u through every worn piece covering bp, outermost first.
// One coverage roll is shared by all layers.
func (c *Character) absorbWorn(u *damage.Unit, bp anatomy.BodyPartID, res *AbsorbResult) {
	var sbp, secondary anatomy.SubPartID
	if part, ok := c.parts.Get(bp); ok && len(part.SubParts) > 0 {
		if sp := part.RandomSubPart(c.rng, false); sp != nil {
			sbp = sp.ID
		}
		if sp := part.RandomSubPart(c.rng, true); sp != nil {
			secondary = sp.ID
		}
	}
	roll := c.rng.Intn(100)

	for _, it := range c.Worn.OutermostFirst() {
		if !it.Covers(bp) {
			continue
		}
		if len(it.AblativePockets()) > 0 {
			c.ablativeAbsorb(u, it, bp, sbp, roll)
		}

		var destroyed bool
		switch {
		case sbp == "":
			destroyed = c.armorAbsorb(u, it, bp, "", roll)
		case it.CoversSubPart(bp, sbp):
			destroyed = c.armorAbsorb(u, it, bp, sbp, roll)
		case secondary != "" && it.CoversSubPart(bp, secondary):
			destroyed = c.armorAbsorb(u, it, bp, secondary, roll)
		}
		if !destroyed {
			continue
		}
		c.destroyedArmor(it.Name())
		res.ArmorDestroyed = true
		res.Remains = append(res.Remains, it.Contents()...)
		c.Worn.TakeOff(it)
	}
}

// armorAbsorb applies one worn layer to u and reports whether the layer was
// destroyed. A roll at or above the layer's coverage misses it.
func (c *Character) armorAbsorb(u *damage.Unit, it *inventory.Item, bp anatomy.BodyPartID, sbp anatomy.SubPartID, roll int) bool {
	// roll is 0..99, so a layer with coverage N is struck on exactly N rolls.
	if roll >= it.Coverage(bp, sbp, u.Type.Cover()) {
		return false
	}
	if it.HasFlag(inventory.FlagUsePowerWhenHit) {
		it.EnergyConsume(units.FromKilojoule(u.Amount))
	}
	it.Mitigate(u, inventory.RollPerMaterial, c.rng)

	status := it.DamageArmorDurability(*u, bp, c.rng)
	c.recorder.ArmorWorn(status.String())
	if status == inventory.Damaged || status == inventory.Destroyed {
		c.describeDamage(*u, it)
	}
	return status == inventory.Destroyed
}

// hitPlate folds roll over the non-empty ablative pockets of carrier and
// returns the plate it lands on with its pocket. Each plate missed spends
// its coverage from the roll. Returns nil when every plate is missed.
func hitPlate(carrier *inventory.Item, bp anatomy.BodyPartID, sbp anatomy.SubPartID, cover damage.Cover, roll int) (*inventory.Pocket, *inventory.Item) {
	for _, p := range carrier.AblativePockets() {
		if p.Empty() {
			continue
		}
		plate := p.Front()
		coverage := plate.Coverage(bp, sbp, cover)
		if roll < coverage {
			return p, plate
		}
		roll -= coverage
	}
	return nil, nil
}

// ablativeAbsorb lets at most one plate carried by carrier absorb u. Plates
// with a broken form break by the unmitigated hit; others wear normally.
//
// Postcondition: Returns Undamaged when no plate was struck.
func (c *Character) ablativeAbsorb(u *damage.Unit, carrier *inventory.Item, bp anatomy.BodyPartID, sbp anatomy.SubPartID, roll int) inventory.ArmorStatus {
	pocket, plate := hitPlate(carrier, bp, sbp, u.Type.Cover(), roll)
	if plate == nil {
		return inventory.Undamaged
	}
	pre := *u
	plate.Mitigate(u, 0, c.rng)

	armor := plate.Def().Armor
	var status inventory.ArmorStatus
	if armor.NonFunctional != "" {
		status = plate.DamageArmorTransforms(pre, c.rng)
	} else {
		status = plate.DamageArmorDurability(*u, bp, c.rng)
	}
	c.recorder.ArmorWorn(status.String())

	switch status {
	case inventory.Transformed:
		verb := armor.DamageVerb
		if verb == "" {
			verb = defaultPlateVerb
		}
		c.addMsgIfPlayer(notify.Bad, fmt.Sprintf("Your %s %s!", plate.Name(), verb))
		repl, err := c.items.NewItem(armor.NonFunctional)
		if err != nil {
			c.logger.Warn("broken plate has no replacement",
				zap.String("plate", plate.Def().ID),
				zap.Error(err),
			)
			pocket.Remove(plate)
			break
		}
		pocket.Replace(plate, repl)
	case inventory.Damaged:
		c.describeDamage(*u, plate)
	case inventory.Destroyed:
		c.describeDamage(*u, plate)
		c.destroyedArmor(plate.Name())
		pocket.Remove(plate)
	}
	return status
}

// describeDamage tells the avatar how a hit marked it.
func (c *Character) describeDamage(u damage.Unit, it *inventory.Item) {
	verb := "damaged"
	if m := it.RandomMaterial(c.rng); m != nil && m.DamageVerb(u.Type) != "" {
		verb = m.DamageVerb(u.Type)
	}
	adj := ""
	if base := it.BaseMaterial(); base != nil {
		adj = base.DamageAdjective(it.DamageLevel())
	}
	format := "Your %s is %s!"
	if adj == verb {
		format = "Your %s is %s further!"
	}
	c.addMsgIfPlayer(notify.Bad, fmt.Sprintf(format, it.Name(), verb))
}

// destroyedArmor reports a destroyed piece and records it in the avatar's memorial.
func (c *Character) destroyedArmor(name string) {
	if c.Avatar {
		c.memorial = append(c.memorial, fmt.Sprintf("Worn %s was completely destroyed.", name))
	}
	c.addMsgPlayerOrNPC(notify.Bad,
		fmt.Sprintf("Your %s is completely destroyed!", name),
		fmt.Sprintf("%s's %s is completely destroyed!", c.Name, name),
	)
	c.recorder.ArmorDestroyed()
	c.logger.Info("armor destroyed", zap.String("item", name))
	if c.Hooks.ArmorDestroyed != nil {
		c.Hooks.ArmorDestroyed(c, name)
	}
}

// passiveAbsorb subtracts natural and bionic protection of bp from u.
func (c *Character) passiveAbsorb(bp anatomy.BodyPartID, u *damage.Unit) {
	if u.Type.NoResist() {
		return
	}
	if u.Amount > 0 {
		mu := *u
		mu.Type = u.Type.MutationResistType()
		u.Amount -= c.MutationArmorUnit(bp, mu)
	}
	u.Amount -= c.bionicProtec(bp).TypeResist(u.Type)
	u.Clamp()
}

// ApplyAbsorbResult leaves res.Remains at the character's location and, when
// armor was destroyed, drops carried items that no longer fit.
//
// Precondition: floor must be non-nil.
func (c *Character) ApplyAbsorbResult(floor *inventory.Floor, res AbsorbResult) {
	if len(res.Remains) > 0 {
		floor.Drop(c.Location, res.Remains...)
	}
	if res.ArmorDestroyed {
		c.DropInvalidInventory(floor)
	}
}

// DropInvalidInventory drops the most recently stowed items until the rest
// fit in the storage the outfit still offers.
//
// Postcondition: Inventory.TotalVolume() <= Worn.Capacity(); returns the dropped items.
func (c *Character) DropInvalidInventory(floor *inventory.Floor) []*inventory.Item {
	dropped := c.Inventory.Overflow(c.Worn.Capacity())
	if len(dropped) == 0 {
		return nil
	}
	floor.Drop(c.Location, dropped...)
	for _, it := range dropped {
		c.addMsgIfPlayer(notify.Info, fmt.Sprintf("Your %s falls to the ground.", it.Name()))
	}
	return dropped
}

// TakeHit absorbs dam and applies the resulting effects.
//
// Precondition: dam and floor must be non-nil.
func (c *Character) TakeHit(atk WeakpointAttack, bp anatomy.BodyPartID, dam *damage.Instance, floor *inventory.Floor) AbsorbResult {
	res := c.AbsorbHit(atk, bp, dam)
	c.ApplyAbsorbResult(floor, res)
	return res
}
