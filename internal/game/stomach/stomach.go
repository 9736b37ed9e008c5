// Package stomach simulates the two digestive buffers of a character: the
// stomach, which passes food on quickly, and the guts, which absorb it.
package stomach

import (
	"math"
	"time"

	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// Default container sizes and starting contents for a new character.
const (
	DefaultStomachVolume = 2500 * units.Milliliter
	DefaultGutsVolume    = 24 * units.Liter
	StartingStomachKCal  = 800
	StartingGutsKCal     = 300
	StartingContents     = 475 * units.Milliliter
)

// Stomach pass-through rates.
const (
	stomachWaterRate  = 250 * units.Milliliter
	gutsSolidsRate    = 250 * units.Milliliter
	gutsWaterRate     = 250 * units.Milliliter
	stomachMinVitamin = 1
	stomachMinCal     = 5000
	quenchVolume      = 5 * units.Milliliter
)

// PowerWarning is sent when powered digestion cannot draw enough energy.
const PowerWarning = "WARNING!  User's digestive system lacks power to operate!"

// FoodSummary is a bundle of food moved between digestive stages.
type FoodSummary struct {
	Solids units.Volume
	Water  units.Volume
	Nutr   nutrition.Nutrients
}

// NeedsRates are the owner's metabolic demands.
type NeedsRates struct {
	Thirst   float64
	Hunger   float64
	Fatigue  float64
	Recovery float64
	// KCal is the daily calorie requirement.
	KCal float64
}

// DigestRates govern how much a container processes per window.
// They are derived fresh for every digest call.
type DigestRates struct {
	// Solids per half hour.
	Solids units.Volume
	// Water per five minutes.
	Water          units.Volume
	MinCalories    int
	PercentKCal    float64
	MinVitamin     int
	PercentVitamin float64
}

// Owner is the character a container belongs to.
type Owner interface {
	// FixedCapacity reports a capacity override from an artificial digestive tract.
	FixedCapacity() (units.Volume, bool)
	// CapacityMultiplier scales the natural capacity, e.g. from mutations.
	CapacityMultiplier() float64
	// DigestionEnergyCost is the energy per milliliter of solids drawn by
	// powered digestion, zero when digestion is unpowered.
	DigestionEnergyCost() units.Energy
	PowerLevel() units.Energy
	ModPowerLevel(delta units.Energy)
	AddMessage(kind notify.Kind, text string)
}

// Contents is one digestive container.
//
// Invariant: contents and water never go negative.
type Contents struct {
	maxVolume units.Volume
	isStomach bool
	contents  units.Volume
	water     units.Volume
	nutr      nutrition.Nutrients
	lastAte   clock.Turn
}

// New creates an empty container.
//
// Postcondition: LastAte() == clock.BeforeTimeStarts.
func New(maxVolume units.Volume, isStomach bool) *Contents {
	return &Contents{maxVolume: maxVolume, isStomach: isStomach, lastAte: clock.BeforeTimeStarts}
}

// NewStomach creates a stomach with the default starting contents.
func NewStomach() *Contents {
	s := New(DefaultStomachVolume, true)
	s.ModCalories(StartingStomachKCal)
	s.ModContents(StartingContents)
	return s
}

// NewGuts creates guts with the default starting calories.
func NewGuts() *Contents {
	g := New(DefaultGutsVolume, false)
	g.ModCalories(StartingGutsKCal)
	return g
}

// IsStomach reports whether c is the stomach rather than the guts.
func (c *Contents) IsStomach() bool { return c.isStomach }

// MaxVolume returns the natural capacity before owner adjustments.
func (c *Contents) MaxVolume() units.Volume { return c.maxVolume }

// Capacity returns how much c can hold for owner.
func (c *Contents) Capacity(owner Owner) units.Volume {
	if fixed, ok := owner.FixedCapacity(); ok {
		return fixed
	}
	return c.maxVolume.Scale(owner.CapacityMultiplier())
}

// StomachRemaining returns the free volume. It may be negative when overfull.
func (c *Contents) StomachRemaining(owner Owner) units.Volume {
	return c.Capacity(owner) - c.contents - c.water
}

// Contains returns solids plus water.
func (c *Contents) Contains() units.Volume { return c.contents + c.water }

// Solids returns the solid volume.
func (c *Contents) Solids() units.Volume { return c.contents }

// Nutrients returns a copy of the undigested nutrients.
func (c *Contents) Nutrients() nutrition.Nutrients { return c.nutr.Clone() }

// Ingest adds food and records the meal time.
func (c *Contents) Ingest(food FoodSummary, now clock.Turn) {
	c.contents += food.Solids
	c.water += food.Water
	c.nutr.Add(food.Nutr)
	c.lastAte = now
}

// DigestRatesFor derives the processing rates of c for owner.
func (c *Contents) DigestRatesFor(rates NeedsRates, owner Owner) DigestRates {
	if c.isStomach {
		return DigestRates{
			Solids:         c.Capacity(owner) / 6,
			Water:          stomachWaterRate,
			MinVitamin:     stomachMinVitamin,
			PercentVitamin: 1.0 / 6.0,
			MinCalories:    stomachMinCal,
			PercentKCal:    1.0 / 6.0,
		}
	}
	return DigestRates{
		Solids:         gutsSolidsRate,
		Water:          gutsWaterRate,
		MinCalories:    int(math.Floor(rates.KCal / 24.0 * rates.Hunger * 1000)),
		PercentKCal:    0.05 * rates.Hunger,
		MinVitamin:     int(math.Round(100.0 / 24.0 * rates.Hunger)),
		PercentVitamin: 0.05 * rates.Hunger,
	}
}

// Digest processes fiveMins five-minute windows of water and halfHours
// half-hour windows of solids and nutrients, returning what left c.
//
// Water always moves. With no half-hour windows nothing else does. Powered
// digestion draws DigestionEnergyCost per milliliter of solids and, when the
// owner cannot pay, warns and leaves solids and nutrients in place.
//
// Precondition: fiveMins >= 0 and halfHours >= 0, covering a window not digested before.
// Postcondition: nothing removed exceeds what c held before the call.
func (c *Contents) Digest(owner Owner, rates NeedsRates, fiveMins, halfHours int) FoodSummary {
	var digested FoodSummary
	dr := c.DigestRatesFor(rates, owner)

	digested.Water = units.MinVolume(c.water, dr.Water*units.Volume(fiveMins))
	c.water -= digested.Water

	if halfHours <= 0 {
		return digested
	}

	solids := units.MinVolume(c.contents, dr.Solids*units.Volume(halfHours))
	if perML := owner.DigestionEnergyCost(); perML > 0 {
		cost := perML * units.Energy(solids.Milliliters())
		if owner.PowerLevel() <= cost {
			owner.AddMessage(notify.Warning, PowerWarning)
			return digested
		}
		owner.ModPowerLevel(-cost)
	}
	digested.Solids = solids
	c.contents -= solids

	kcalFraction := int(math.Round(float64(c.nutr.KCal()) * dr.PercentKCal))
	digested.Nutr.Calories = windowAmount(halfHours, dr.MinCalories, kcalFraction*1000, c.nutr.Calories)
	for _, id := range c.nutr.VitaminIDs() {
		have := c.nutr.Vitamin(id)
		fraction := int(math.Round(float64(have) * dr.PercentVitamin))
		digested.Nutr.SetVitamin(id, windowAmount(halfHours, dr.MinVitamin, fraction, have))
	}

	c.nutr.Sub(digested.Nutr)
	return digested
}

// windowAmount returns halfHours times base raised to floor and capped at
// have, never more than have in total.
func windowAmount(halfHours, base, floor, have int) int {
	if have <= 0 {
		return 0
	}
	per := min(max(base, floor), have)
	return min(halfHours*per, have)
}

// Empty discards every content.
func (c *Contents) Empty() {
	c.nutr = nutrition.Nutrients{}
	c.water = 0
	c.contents = 0
}

// ModCalories adds kcal kilocalories. Removing at least the whole stored
// amount zeroes it.
func (c *Contents) ModCalories(kcal int) {
	if -kcal >= c.nutr.KCal() {
		c.nutr.Calories = 0
		return
	}
	c.nutr.Calories += kcal * 1000
}

// ModNutr converts a legacy nutrition delta to calories and removes them.
func (c *Contents) ModNutr(nutr int) {
	c.ModCalories(-int(math.Round(float64(nutr) * 2500.0 / (12 * 24))))
}

// ModWater adds h2o when positive.
func (c *Contents) ModWater(h2o units.Volume) {
	if h2o > 0 {
		c.water += h2o
	}
}

// ModQuench adds 5 ml of water per point of quench.
func (c *Contents) ModQuench(quench int) {
	c.ModWater(quenchVolume * units.Volume(quench))
}

// ModContents adjusts solids, clamping at zero.
func (c *Contents) ModContents(vol units.Volume) {
	if -vol >= c.contents {
		c.contents = 0
		return
	}
	c.contents += vol
}

// Calories returns the stored whole kilocalories.
func (c *Contents) Calories() int { return c.nutr.KCal() }

// Water returns the stored water.
func (c *Contents) Water() units.Volume { return c.water }

// LastAte returns the turn of the most recent Ingest.
func (c *Contents) LastAte() clock.Turn { return c.lastAte }

// TimeSinceAte returns the duration between the last meal and now.
func (c *Contents) TimeSinceAte(now clock.Turn) time.Duration {
	return c.lastAte.Since(now)
}
