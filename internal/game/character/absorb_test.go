package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/units"
)

func TestAbsorbHit_SingleLayerSubtractsFlatResist(t *testing.T) {
	w := newWorld(t)
	c, log := w.build(t, &character.Loadout{Avatar: true, Worn: []character.WornSpec{{Item: "shirt"}}}, &fixedSource{val: 0})

	dam := damage.NewInstance(w.bash(1000))
	res := c.AbsorbHit(character.WeakpointAttack{}, "arm", dam)

	assert.Equal(t, 700.0, dam.Units[0].Amount)
	assert.Nil(t, res.Weakpoint)
	assert.Empty(t, res.Remains)
	assert.False(t, res.ArmorDestroyed)
	assert.False(t, res.Negated)
	assert.Empty(t, log.Texts())
	assert.Equal(t, 0, worn(t, c, "padded shirt").Damage())
}

func TestAbsorbHit_NegativeUnitIsZeroedWithoutWear(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "jacket"}}}, &fixedSource{val: 1})
	jacket := worn(t, c, "flimsy jacket")
	jacket.SetDamage(inventory.MaxDamage)

	dam := damage.NewInstance(w.bash(-5))
	res := c.AbsorbHit(character.WeakpointAttack{}, "arm", dam)

	assert.Equal(t, 0.0, dam.Units[0].Amount)
	assert.False(t, res.ArmorDestroyed)
	assert.Len(t, c.Worn.Items(), 1)
	assert.Equal(t, inventory.MaxDamage, jacket.Damage())
}

func TestAbsorbHit_ForcefieldNegatesEveryUnit(t *testing.T) {
	w := newWorld(t)
	c, log := w.build(t, &character.Loadout{Avatar: true, Worn: []character.WornSpec{{Item: "shirt"}}}, &fixedSource{val: 0})
	c.Enchantments.Include(w.enchant(t, "ff_full"))

	dam := damage.NewInstance(w.bash(1000), w.unit("cut", 50), w.unit("psi", 20))
	res := c.AbsorbHit(character.WeakpointAttack{}, "arm", dam)

	assert.True(t, res.Negated)
	for _, u := range dam.Units {
		assert.Equal(t, 0.0, u.Amount, u.Type.ID())
	}
	assert.Equal(t, []notify.Message{{Kind: notify.Good, Text: "The incoming attack was made ineffective."}}, log.Messages())
	assert.Equal(t, 0, worn(t, c, "padded shirt").Damage())
}

func TestAbsorbHit_NoForcefieldNeverNegates(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{}, &fixedSource{val: 0})

	dam := damage.NewInstance(w.bash(10))
	res := c.AbsorbHit(character.WeakpointAttack{}, "eyes", dam)

	assert.False(t, res.Negated)
	assert.Equal(t, 10.0, dam.Units[0].Amount)
}

func TestAbsorbHit_ADS(t *testing.T) {
	tests := []struct {
		name      string
		unit      string
		amount    float64
		powerKJ   float64
		want      float64
		wantPower units.Energy
	}{
		{name: "bash within cap is halved", unit: "bash", amount: 40, powerKJ: 100, want: 20, wantPower: units.FromKilojoule(84)},
		{name: "cut within cap is divided by three", unit: "cut", amount: 30, powerKJ: 100, want: 10, wantPower: units.FromKilojoule(91)},
		{name: "bullet above cap loses the cap", unit: "bullet", amount: 80, powerKJ: 100, want: 30, wantPower: units.FromKilojoule(75)},
		{name: "unlisted type still pays", unit: "heat", amount: 10, powerKJ: 100, want: 10, wantPower: units.FromKilojoule(99)},
		{name: "power at threshold skips", unit: "bash", amount: 40, powerKJ: 24, want: 40, wantPower: units.FromKilojoule(24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			c, log := w.build(t, &character.Loadout{
				Avatar:  true,
				Bionics: []character.BionicSpec{{ID: "bio_ads", Powered: true}},
				PowerKJ: tt.powerKJ, MaxPowerKJ: 100,
			}, &fixedSource{val: 0})

			dam := damage.NewInstance(w.unit(tt.unit, tt.amount))
			c.AbsorbHit(character.WeakpointAttack{}, "eyes", dam)

			assert.InDelta(t, tt.want, dam.Units[0].Amount, 1e-9)
			assert.Equal(t, tt.wantPower, c.PowerLevel())
			if tt.wantPower != units.FromKilojoule(tt.powerKJ) {
				assert.Contains(t, log.Texts(), "The defensive forcefield surrounding your body ripples as it reduces velocity of incoming attack.")
			} else {
				assert.Empty(t, log.Texts())
			}
		})
	}
}

func TestAbsorbHit_UnpoweredADSDoesNothing(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{
		Bionics: []character.BionicSpec{{ID: "bio_ads"}},
		PowerKJ: 100, MaxPowerKJ: 100,
	}, &fixedSource{val: 0})

	dam := damage.NewInstance(w.bash(40))
	c.AbsorbHit(character.WeakpointAttack{}, "eyes", dam)

	assert.Equal(t, 40.0, dam.Units[0].Amount)
	assert.Equal(t, units.FromKilojoule(100), c.PowerLevel())
}

func TestAbsorbHit_EnchantmentsBeforeAndAfterArmor(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "shirt"}}}, &fixedSource{val: 0})
	c.Enchantments.Include(w.enchant(t, "bash_half"))
	c.Enchantments.Include(w.enchant(t, "extra_bash"))

	dam := damage.NewInstance(w.bash(1000))
	c.AbsorbHit(character.WeakpointAttack{}, "arm", dam)

	// 1000 halved to 500, 300 stopped by the shirt, then 5 added back.
	assert.Equal(t, 205.0, dam.Units[0].Amount)
}

func TestAbsorbHit_PassiveProtection(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{
		Mutations: []string{"THICK_SCALES"},
		Bionics:   []character.BionicSpec{{ID: "bio_armor_arm"}},
	}, &fixedSource{val: 0})

	dam := damage.NewInstance(w.bash(25), w.unit("stab", 20), w.unit("cut", 3), w.unit("psi", 30))
	c.AbsorbHit(character.WeakpointAttack{}, "arm", dam)

	assert.Equal(t, 14.0, dam.Units[0].Amount, "1 from scales and 10 from the bionic")
	assert.Equal(t, 15.0, dam.Units[1].Amount, "stab uses the cut scales")
	assert.Equal(t, 0.0, dam.Units[2].Amount, "clamped at zero")
	assert.Equal(t, 30.0, dam.Units[3].Amount, "psi ignores protection")
}

func TestAbsorbHit_PowerDrawnWhenHit(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "heated_sleeve"}}}, &fixedSource{val: 0})

	c.AbsorbHit(character.WeakpointAttack{}, "arm", damage.NewInstance(w.bash(30)))

	assert.Equal(t, units.FromKilojoule(70), worn(t, c, "heated sleeve").Energy())
}

func TestAbsorbHit_SecondarySubPartLayer(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "belt"}}}, &fixedSource{val: 0})

	dam := damage.NewInstance(w.bash(1000))
	c.AbsorbHit(character.WeakpointAttack{}, "torso", dam)

	assert.Equal(t, 950.0, dam.Units[0].Amount)
}

func TestAbsorbHit_RollAgainstCoverage(t *testing.T) {
	tests := []struct {
		name string
		roll int
		want float64
	}{
		{name: "roll at coverage misses", roll: 50, want: 100},
		{name: "roll below coverage hits", roll: 49, want: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "visor"}}},
				&seqSource{vals: []int{99, tt.roll, 0, 0}})

			dam := damage.NewInstance(w.bash(100))
			c.AbsorbHit(character.WeakpointAttack{}, "eyes", dam)

			assert.Equal(t, tt.want, dam.Units[0].Amount)
		})
	}
}

func TestAbsorbHit_PlateIgnoresUncoveredSubPart(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "plate_carrier"}}},
		// forcefield, sub-part, secondary, coverage roll
		&seqSource{vals: []int{99, 1, 0, 99, 0}})

	dam := damage.NewInstance(w.unit("bullet", 100))
	c.AbsorbHit(character.WeakpointAttack{}, "torso", dam)

	// Lower torso: the plate does not cover it, the carrier still does.
	assert.Equal(t, 100.0, dam.Units[0].Amount)
	plate := worn(t, c, "plate carrier").AblativePockets()[0].Front()
	assert.Equal(t, "ceramic plate", plate.Name())
}

func TestAbsorbHit_PlateTransforms(t *testing.T) {
	w := newWorld(t)
	rec := &recorded{}
	log := &notify.Log{}
	// forcefield, upper torso, secondary, coverage roll 10, transform roll,
	// carrier material roll, carrier wear check.
	src := &seqSource{vals: []int{99, 0, 0, 10, 500000, 0, 0}}
	c, err := character.Build(&character.Loadout{Name: "Tester", Avatar: true,
		Worn: []character.WornSpec{{Item: "plate_carrier"}}}, w.deps(src, log, rec))
	require.NoError(t, err)

	dam := damage.NewInstance(w.bash(100))
	res := c.AbsorbHit(character.WeakpointAttack{}, "torso", dam)

	// Plate stops 30 bash, the carrier's kevlar 4 more.
	assert.Equal(t, 66.0, dam.Units[0].Amount)
	assert.False(t, res.ArmorDestroyed)
	carrier := worn(t, c, "plate carrier")
	plate := carrier.AblativePockets()[0].Front()
	require.NotNil(t, plate)
	assert.Equal(t, "broken ceramic plate", plate.Name())
	assert.Contains(t, log.Texts(), "Your ceramic plate cracks apart!")
	assert.Equal(t, []string{"transformed", "undamaged"}, rec.statuses)
	assert.Equal(t, 1, rec.units)
}

func TestAbsorbHit_PlateMissedSpendsCoverage(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{Worn: []character.WornSpec{{Item: "plate_carrier"}}},
		&seqSource{vals: []int{99, 0, 0, 50, 0, 0}})

	dam := damage.NewInstance(w.bash(100))
	c.AbsorbHit(character.WeakpointAttack{}, "torso", dam)

	assert.Equal(t, 96.0, dam.Units[0].Amount)
	assert.Equal(t, "ceramic plate", worn(t, c, "plate carrier").AblativePockets()[0].Front().Name())
}

func TestAbsorbHit_PlateDestroyedByWear(t *testing.T) {
	w := newWorld(t)
	var hooked []string
	// forcefield, upper torso, secondary, coverage roll, two failed escape
	// checks, material pick for the description, then the carrier.
	c, log := w.build(t, &character.Loadout{Avatar: true, Worn: []character.WornSpec{{Item: "steel_carrier"}}},
		&seqSource{vals: []int{99, 0, 0, 10, 5, 1, 0, 0, 0}})
	c.Hooks.ArmorDestroyed = func(_ *character.Character, name string) { hooked = append(hooked, name) }
	carrier := worn(t, c, "steel carrier")
	carrier.AblativePockets()[0].Front().SetDamage(inventory.MaxDamage)

	dam := damage.NewInstance(w.bash(100))
	res := c.AbsorbHit(character.WeakpointAttack{}, "torso", dam)

	// Steel stops 20, kevlar 4.
	assert.Equal(t, 76.0, dam.Units[0].Amount)
	assert.True(t, carrier.AblativePockets()[0].Empty())
	assert.False(t, res.ArmorDestroyed, "plates are not worn layers")
	assert.Contains(t, log.Texts(), "Your steel plate is dented!")
	assert.Contains(t, log.Texts(), "Your steel plate is completely destroyed!")
	assert.Equal(t, []string{"Worn steel plate was completely destroyed."}, c.Memorial())
	assert.Equal(t, []string{"steel plate"}, hooked)
}

// destroyJacket is the roll sequence that destroys a jacket at maximum
// damage on the arm: forcefield, coverage, material, two failed escape
// checks, then the description's material pick.
func destroyJacket() *seqSource {
	return &seqSource{vals: []int{99, 0, 0, 5, 1, 0}}
}

func TestTakeHit_DestroyedLayerLeavesRemains(t *testing.T) {
	w := newWorld(t)
	c, log := w.build(t, &character.Loadout{
		Avatar:   true,
		Location: "room1",
		Worn:     []character.WornSpec{{Item: "jacket"}},
		Carried:  []string{"brick"},
	}, destroyJacket())
	jacket := worn(t, c, "flimsy jacket")
	jacket.SetDamage(inventory.MaxDamage)
	pebble, err := w.items.NewItem("pebble")
	require.NoError(t, err)
	require.NoError(t, jacket.Pockets()[0].Add(pebble))
	floor := inventory.NewFloor()

	dam := damage.NewInstance(w.bash(1000))
	res := c.TakeHit(character.WeakpointAttack{Attacker: "zombie"}, "arm", dam, floor)

	assert.Equal(t, 1000.0, dam.Units[0].Amount)
	assert.True(t, res.ArmorDestroyed)
	assert.Equal(t, []*inventory.Item{pebble}, res.Remains)
	assert.Empty(t, c.Worn.Items())
	assert.Empty(t, c.Inventory.Items())

	names := make([]string, 0)
	for _, it := range floor.At("room1") {
		names = append(names, it.Name())
	}
	assert.ElementsMatch(t, []string{"pebble", "brick"}, names)
	assert.Equal(t, []string{
		"Your flimsy jacket is ripped!",
		"Your flimsy jacket is completely destroyed!",
		"Your brick falls to the ground.",
	}, log.Texts())
	assert.Equal(t, []string{"Worn flimsy jacket was completely destroyed."}, c.Memorial())
}

func TestAbsorbHit_NPCDestroyedMessage(t *testing.T) {
	w := newWorld(t)
	c, log := w.build(t, &character.Loadout{Name: "Raider", Worn: []character.WornSpec{{Item: "jacket"}}}, destroyJacket())
	worn(t, c, "flimsy jacket").SetDamage(inventory.MaxDamage)

	res := c.AbsorbHit(character.WeakpointAttack{}, "arm", damage.NewInstance(w.bash(1000)))

	assert.True(t, res.ArmorDestroyed)
	assert.Equal(t, []string{"Raider's flimsy jacket is completely destroyed!"}, log.Texts())
	assert.Empty(t, c.Memorial())
}

func TestApplyAbsorbResult_NoDestructionKeepsInventory(t *testing.T) {
	w := newWorld(t)
	c, _ := w.build(t, &character.Loadout{
		Location: "room1",
		Worn:     []character.WornSpec{{Item: "jacket"}},
		Carried:  []string{"brick"},
	}, &fixedSource{val: 0})
	floor := inventory.NewFloor()

	c.ApplyAbsorbResult(floor, character.AbsorbResult{})

	assert.Len(t, c.Inventory.Items(), 1)
	assert.Empty(t, floor.At("room1"))
}

func TestProperty_AbsorbHit_NeverNegative(t *testing.T) {
	w := newWorld(t)
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Range(1, 1<<40).Draw(rt, "seed")
		c, err := character.Build(&character.Loadout{
			Name:       "Prop",
			Worn:       []character.WornSpec{{Item: "shirt"}, {Item: "jacket"}, {Item: "plate_carrier"}, {Item: "belt"}},
			Mutations:  []string{"THICK_SCALES"},
			Bionics:    []character.BionicSpec{{ID: "bio_ads", Powered: true}, {ID: "bio_armor_arm"}},
			PowerKJ:    rapid.Float64Range(0, 200).Draw(rt, "power"),
			MaxPowerKJ: 200,
		}, w.deps(dice.NewSeededSource(seed), notify.Discard, nil))
		if err != nil {
			rt.Fatalf("build: %v", err)
		}
		ids := []string{"bash", "cut", "stab", "bullet", "heat", "psi"}
		var us []damage.Unit
		for range rapid.IntRange(1, 5).Draw(rt, "units") {
			id := rapid.SampledFrom(ids).Draw(rt, "type")
			us = append(us, w.unit(id, rapid.Float64Range(-100, 5000).Draw(rt, "amount")))
		}
		bp := rapid.SampledFrom([]string{"arm", "torso", "eyes"}).Draw(rt, "bp")
		dam := damage.NewInstance(us...)
		c.AbsorbHit(character.WeakpointAttack{}, anatomy.BodyPartID(bp), dam)
		for _, u := range dam.Units {
			if u.Amount < 0 {
				rt.Fatalf("unit %s ended at %v", u.Type.ID(), u.Amount)
			}
		}
		if c.PowerLevel() < 0 {
			rt.Fatalf("power went negative: %v", c.PowerLevel())
		}
	})
}
