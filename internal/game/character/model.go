// Package character defines the survival character: what it wears and
// carries, the traits it has, the hits it absorbs and the food it digests.
package character

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/trait"
	"github.com/cory-johannsen/survival/internal/game/units"
	"github.com/cory-johannsen/survival/internal/scripting"
)

// Bionic is an installed bionic and whether it is switched on.
type Bionic struct {
	ID      trait.BionicID
	Powered bool
}

// Hooks are optional callbacks fired on notable events. Nil fields are skipped.
type Hooks struct {
	// ArmorDestroyed fires after a worn piece or plate is destroyed.
	ArmorDestroyed func(c *Character, name string)
}

// Character represents a survival character's simulated state.
//
// A Character is owned by a single actor per tick and is not safe for
// concurrent use.
type Character struct {
	ID       string
	Name     string
	Avatar   bool
	Location string // where dropped items land

	Worn      *inventory.Worn
	Inventory *inventory.Backpack
	Mutations []*trait.MutationDef
	Bionics   []Bionic
	// ArmorBonus is a flat per-type protection override applied on every body part.
	ArmorBonus damage.Resistances

	Stomach *stomach.Contents
	Guts    *stomach.Contents

	Enchantments *enchant.Cache
	Hooks        Hooks

	power    units.Energy
	maxPower units.Energy

	absorbed  nutrition.Nutrients
	hydration units.Volume
	window    *clock.Window
	memorial  []string

	parts    *anatomy.Registry
	items    *inventory.Registry
	rng      dice.Source
	sink     notify.Sink
	recorder Recorder
	logger   *zap.Logger
}

// IsAvatar reports whether c is the player's character.
func (c *Character) IsAvatar() bool { return c.Avatar }

// PowerLevel returns the stored bionic power.
func (c *Character) PowerLevel() units.Energy { return c.power }

// MaxPowerLevel returns the bionic power capacity.
func (c *Character) MaxPowerLevel() units.Energy { return c.maxPower }

// ModPowerLevel adds delta to the stored power.
//
// Postcondition: 0 <= PowerLevel() <= MaxPowerLevel().
func (c *Character) ModPowerLevel(delta units.Energy) {
	c.power = min(max(c.power+delta, 0), c.maxPower)
}

// AddMessage delivers a message to the character's sink.
func (c *Character) AddMessage(kind notify.Kind, text string) {
	c.sink.Add(kind, text)
}

// addMsgIfPlayer only reaches the sink for the avatar.
func (c *Character) addMsgIfPlayer(kind notify.Kind, text string) {
	if c.Avatar {
		c.sink.Add(kind, text)
	}
}

// addMsgPlayerOrNPC delivers the second-person text for the avatar and the
// third-person text for anyone else.
func (c *Character) addMsgPlayerOrNPC(kind notify.Kind, player, npc string) {
	if c.Avatar {
		c.sink.Add(kind, player)
		return
	}
	c.sink.Add(kind, npc)
}

// Memorial returns the avatar's memorial log entries, oldest first.
func (c *Character) Memorial() []string { return slices.Clone(c.memorial) }

// HasFlag reports whether any mutation carries flag.
func (c *Character) HasFlag(flag string) bool {
	for _, m := range c.Mutations {
		if m.HasFlag(flag) {
			return true
		}
	}
	return false
}

// HasBionic reports whether a bionic with id is installed.
func (c *Character) HasBionic(id string) bool {
	return c.bionic(id) != nil
}

// HasActiveBionic reports whether a bionic with id is installed and powered.
func (c *Character) HasActiveBionic(id string) bool {
	b := c.bionic(id)
	return b != nil && b.Powered
}

func (c *Character) bionic(id string) *Bionic {
	for i := range c.Bionics {
		if c.Bionics[i].ID.String() == id {
			return &c.Bionics[i]
		}
	}
	return nil
}

// SetBionicPowered switches the bionic with id on or off.
//
// Postcondition: Returns false when no such bionic is installed.
func (c *Character) SetBionicPowered(id string, powered bool) bool {
	b := c.bionic(id)
	if b == nil {
		return false
	}
	b.Powered = powered
	return true
}

// MutationIDs returns the ids of every mutation.
func (c *Character) MutationIDs() []string {
	out := make([]string, 0, len(c.Mutations))
	for _, m := range c.Mutations {
		out = append(out, m.ID)
	}
	return out
}

// BionicIDs returns the ids of every installed bionic.
func (c *Character) BionicIDs() []string {
	out := make([]string, 0, len(c.Bionics))
	for _, b := range c.Bionics {
		out = append(out, b.ID.String())
	}
	return out
}

// RebuildEnchantments recomputes the enchantment cache from every mutation
// and powered bionic. Conditional enchantments are decided by eval.
func (c *Character) RebuildEnchantments(eval enchant.Evaluator) {
	var defs []*enchant.Def
	for _, m := range c.Mutations {
		defs = append(defs, m.EnchantmentDefs()...)
	}
	for _, b := range c.Bionics {
		if b.Powered {
			defs = append(defs, b.ID.Def().EnchantmentDefs()...)
		}
	}
	c.Enchantments.Rebuild(c.ID, defs, eval, c.logger)
}

// Info returns the snapshot of c handed to Lua hooks.
func (c *Character) Info() *scripting.CharacterInfo {
	return &scripting.CharacterInfo{
		ID:        c.ID,
		Name:      c.Name,
		IsAvatar:  c.Avatar,
		PowerKJ:   c.power.Kilojoules(),
		KCal:      c.Stomach.Calories(),
		WaterML:   c.Stomach.Water().Milliliters(),
		Mutations: c.MutationIDs(),
		Bionics:   c.BionicIDs(),
	}
}
