package character

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// ErrStomachFull is returned when a meal does not fit in the stomach.
var ErrStomachFull = errors.New("stomach full")

// FixedCapacity reports the capacity override of an installed artificial
// digestive tract.
func (c *Character) FixedCapacity() (units.Volume, bool) {
	for _, b := range c.Bionics {
		if v, ok := b.ID.Def().FixedCapacity(); ok {
			return v, true
		}
	}
	return 0, false
}

// CapacityMultiplier returns the product of every mutation's stomach size multiplier.
func (c *Character) CapacityMultiplier() float64 {
	mult := 1.0
	for _, m := range c.Mutations {
		mult *= m.StomachMultiplier()
	}
	return mult
}

// DigestionEnergyCost returns the per-milliliter cost of the first installed
// bionic that powers digestion, or zero.
func (c *Character) DigestionEnergyCost() units.Energy {
	for _, b := range c.Bionics {
		if cost := b.ID.Def().DigestionCost(); cost > 0 {
			return cost
		}
	}
	return 0
}

// Absorbed returns the nutrients the body has taken in so far.
func (c *Character) Absorbed() nutrition.Nutrients { return c.absorbed.Clone() }

// Hydration returns the water the body has taken in so far.
func (c *Character) Hydration() units.Volume { return c.hydration }

// Eat puts food into the stomach.
//
// Postcondition: Returns ErrStomachFull and leaves the stomach unchanged when food does not fit.
func (c *Character) Eat(food stomach.FoodSummary, now clock.Turn) error {
	vol := food.Solids + food.Water
	if remaining := c.Stomach.StomachRemaining(c); vol > remaining {
		return fmt.Errorf("eating %s with %s free: %w", vol, remaining, ErrStomachFull)
	}
	c.Stomach.Ingest(food, now)
	return nil
}

// ProcessDigestion digests every window elapsed since the last call: the
// stomach passes food to the guts, and the guts pass it to the body.
//
// Postcondition: Returns what the body absorbed; a now at or before the last
// processed turn digests nothing.
func (c *Character) ProcessDigestion(rates stomach.NeedsRates, now clock.Turn) stomach.FoodSummary {
	fiveMins, halfHours := c.window.Advance(now)
	if fiveMins == 0 && halfHours == 0 {
		return stomach.FoodSummary{}
	}
	fromStomach := c.Stomach.Digest(c, rates, fiveMins, halfHours)
	if !emptyFood(fromStomach) {
		c.Guts.Ingest(fromStomach, now)
	}
	toBody := c.Guts.Digest(c, rates, fiveMins, halfHours)

	c.absorbed.Add(toBody.Nutr)
	c.hydration += toBody.Water
	c.recorder.Digested(toBody.Nutr.KCal(), toBody.Water.Milliliters())
	c.logger.Debug("digested",
		zap.Int("five_minutes", fiveMins),
		zap.Int("half_hours", halfHours),
		zap.Int("kcal", toBody.Nutr.KCal()),
		zap.Stringer("water", toBody.Water),
	)
	return toBody
}

func emptyFood(f stomach.FoodSummary) bool {
	return f.Solids == 0 && f.Water == 0 && f.Nutr.Calories == 0 && len(f.Nutr.VitaminIDs()) == 0
}
