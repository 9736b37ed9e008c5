package character_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/trait"
)

// fixedSource always returns val for any Intn call, capped at n-1.
type fixedSource struct{ val int }

func (f *fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// seqSource replays vals in order, each capped at n-1, then repeats the last.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	if v >= n {
		return n - 1
	}
	return v
}

type recorded struct {
	units     int
	statuses  []string
	destroyed int
	kcal      int
	waterML   int64
}

func (r *recorded) UnitAbsorbed(string, float64, float64) { r.units++ }
func (r *recorded) ArmorWorn(status string)              { r.statuses = append(r.statuses, status) }
func (r *recorded) ArmorDestroyed()                      { r.destroyed++ }
func (r *recorded) Digested(kcal int, waterML int64) {
	r.kcal += kcal
	r.waterML += waterML
}

type world struct {
	types    *damage.Registry
	parts    *anatomy.Registry
	items    *inventory.Registry
	traits   *trait.Registry
	enchants *enchant.Registry
}

func newWorld(t *testing.T) *world {
	t.Helper()
	types := damage.NewRegistry()
	for _, d := range []*damage.TypeDef{
		{ID: "bash", Blunt: true, Cover: "melee", ArmorMod: "ARMOR_BASH", ExtraMod: "EXTRA_BASH"},
		{ID: "cut", Cover: "melee", ArmorMod: "ARMOR_CUT"},
		{ID: "stab", Cover: "melee", MutationResistAs: "cut"},
		{ID: "bullet", Cover: "ranged"},
		{ID: "heat"},
		{ID: "psi", NoResist: true},
	} {
		require.NoError(t, types.Register(d))
	}
	require.NoError(t, types.Link())

	parts := anatomy.NewRegistry()
	for _, d := range []*anatomy.BodyPartDef{
		{ID: "arm", Name: "arm", Resist: map[string]float64{"bash": 4}},
		{ID: "eyes", Name: "eyes", Eyes: true},
		{
			ID: "torso", Name: "torso",
			SubParts: []*anatomy.SubPartDef{
				{ID: "torso_upper", HitSize: 1},
				{ID: "torso_lower", HitSize: 1},
				{ID: "torso_hanging", Secondary: true},
			},
		},
	} {
		require.NoError(t, parts.Register(d))
	}
	require.NoError(t, parts.Link(types))

	items := inventory.NewRegistry()
	for _, m := range []*inventory.MaterialDef{
		{ID: "cloth", BashVerb: "ripped", CutVerb: "ripped", DamageAdjectives: []string{"ripped", "torn"}},
		{ID: "kevlar", BashVerb: "dented", CutVerb: "cut", Resist: map[string]float64{"bash": 2, "cut": 4}},
		{ID: "ceramic", BashVerb: "cracked", CutVerb: "chipped", Resist: map[string]float64{"bash": 3, "bullet": 4}},
		{ID: "steel", BashVerb: "dented", CutVerb: "scratched", Resist: map[string]float64{"bash": 5}},
	} {
		require.NoError(t, items.RegisterMaterial(m))
	}
	arm := []anatomy.BodyPartID{"arm"}
	torso := []anatomy.BodyPartID{"torso"}
	upper := []anatomy.SubPartID{"torso_upper"}
	cloth := []inventory.MaterialUse{{Material: "cloth", Thickness: 1}}
	for _, d := range []*inventory.ItemDef{
		{
			ID: "shirt", Name: "padded shirt", VolumeML: 500, Materials: cloth,
			Armor: &inventory.ArmorDef{Layer: inventory.LayerNormal, EnvResist: 1, Resist: map[string]float64{"bash": 300},
				Portions: []inventory.PortionDef{{Covers: arm, Coverage: 100}}},
		},
		{
			ID: "jacket", Name: "flimsy jacket", VolumeML: 800, Materials: cloth,
			Armor: &inventory.ArmorDef{Layer: inventory.LayerOuter,
				Portions: []inventory.PortionDef{{Covers: arm, Coverage: 100}}},
			Pockets: []inventory.PocketDef{{Kind: inventory.PocketContainer, MaxVolumeML: 3000}},
		},
		{
			ID: "heated_sleeve", Name: "heated sleeve", VolumeML: 300, Materials: cloth, BatteryKJ: 100,
			Flags: []string{inventory.FlagUsePowerWhenHit},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerSkintight,
				Portions: []inventory.PortionDef{{Covers: arm, Coverage: 100}}},
		},
		{
			ID: "visor", Name: "visor", VolumeML: 200, Materials: cloth,
			Armor: &inventory.ArmorDef{Resist: map[string]float64{"bash": 10},
				Portions: []inventory.PortionDef{{Covers: []anatomy.BodyPartID{"eyes"}, Coverage: 50}}},
		},
		{
			ID: "belt", Name: "leather belt", VolumeML: 200, Materials: cloth,
			Armor: &inventory.ArmorDef{Layer: inventory.LayerBelted, Resist: map[string]float64{"bash": 50},
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: []anatomy.SubPartID{"torso_hanging"}, Coverage: 100}}},
		},
		{
			ID: "ceramic_plate", Name: "ceramic plate", VolumeML: 1000,
			Materials: []inventory.MaterialUse{{Material: "ceramic", Thickness: 10}},
			Armor: &inventory.ArmorDef{NonFunctional: "broken_plate", DamageVerb: "cracks apart",
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: upper, Coverage: 45}}},
		},
		{
			ID: "broken_plate", Name: "broken ceramic plate", VolumeML: 1000,
			Materials: []inventory.MaterialUse{{Material: "ceramic", Thickness: 1}},
			Armor: &inventory.ArmorDef{
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: upper, Coverage: 45}}},
		},
		{
			ID: "steel_plate", Name: "steel plate", VolumeML: 1000,
			Materials: []inventory.MaterialUse{{Material: "steel", Thickness: 4}},
			Armor: &inventory.ArmorDef{
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: upper, Coverage: 45}}},
		},
		{
			ID: "plate_carrier", Name: "plate carrier", VolumeML: 1500,
			Materials: []inventory.MaterialUse{{Material: "kevlar", Thickness: 2}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerOuter,
				Portions: []inventory.PortionDef{{Covers: torso, Coverage: 100}}},
			Pockets: []inventory.PocketDef{
				{Kind: inventory.PocketAblative, Default: "ceramic_plate"},
				{Kind: inventory.PocketAblative},
			},
		},
		{
			ID: "steel_carrier", Name: "steel carrier", VolumeML: 1500,
			Materials: []inventory.MaterialUse{{Material: "kevlar", Thickness: 2}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerOuter,
				Portions: []inventory.PortionDef{{Covers: torso, Coverage: 100}}},
			Pockets: []inventory.PocketDef{{Kind: inventory.PocketAblative, Default: "steel_plate"}},
		},
		{ID: "pebble", Name: "pebble", VolumeML: 100, Materials: []inventory.MaterialUse{{Material: "ceramic"}}},
		{ID: "brick", Name: "brick", VolumeML: 2500, Materials: []inventory.MaterialUse{{Material: "ceramic"}}},
	} {
		require.NoError(t, items.RegisterItem(d))
	}
	require.NoError(t, items.Link(types, parts))

	enchants := enchant.NewRegistry()
	for _, d := range []*enchant.Def{
		{ID: "ff_full", Values: []enchant.ValueDef{{Mod: enchant.Forcefield, Add: 1}}},
		{ID: "bash_half", Values: []enchant.ValueDef{{Mod: "ARMOR_BASH", Multiply: -0.5}}},
		{ID: "extra_bash", Values: []enchant.ValueDef{{Mod: "EXTRA_BASH", Add: 5}}},
		{ID: "night_only", Condition: "is_night", Values: []enchant.ValueDef{{Mod: "ARMOR_CUT", Add: -1}}},
	} {
		require.NoError(t, enchants.Register(d))
	}

	traits := trait.NewRegistry()
	for _, d := range []*trait.BionicDef{
		{
			ID:        "bio_armor_arm",
			Protec:    map[anatomy.BodyPartID]map[string]float64{"arm": {"bash": 10}},
			EnvProtec: map[anatomy.BodyPartID]int{"arm": 3},
		},
		{
			ID: "bio_ads",
			ADS: &trait.ADSDef{
				MaxAbsorption: 50,
				MinPowerKJ:    24,
				CostFactorJ:   10,
				MaxCostJ:      25000,
				Divisors:      map[string]float64{"bash": 2, "cut": 3, "stab": 4, "bullet": 4},
			},
		},
		{ID: "bio_interface", Flags: []string{trait.FlagArmorInterface}},
		{ID: "bio_digestion", Flags: []string{trait.FlagPoweredDigestion}},
		{ID: "bio_guts_replacer", Flags: []string{trait.FlagGutsReplacer}},
		{ID: "bio_shield", Enchantments: []string{"bash_half"}},
	} {
		require.NoError(t, traits.RegisterBionic(d))
	}
	for _, d := range []*trait.MutationDef{
		{ID: "THICK_SCALES", Armor: map[anatomy.BodyPartID]map[string]float64{"arm": {"cut": 5, "bash": 1}}},
		{ID: "NIGHT_EYES", Flags: []string{trait.FlagSeeSleep}},
		{ID: "BIG_STOMACH", StomachSizeMultiplier: 2},
		{ID: "WIDE_GUT", StomachSizeMultiplier: 1.5},
		{ID: "SHIMMER", Enchantments: []string{"extra_bash", "night_only"}},
	} {
		require.NoError(t, traits.RegisterMutation(d))
	}
	require.NoError(t, traits.Link(types, parts, enchants))

	return &world{types: types, parts: parts, items: items, traits: traits, enchants: enchants}
}

func (w *world) deps(src dice.Source, sink notify.Sink, rec character.Recorder) character.Deps {
	return character.Deps{
		Types:    w.types,
		Parts:    w.parts,
		Items:    w.items,
		Traits:   w.traits,
		Rand:     src,
		Sink:     sink,
		Recorder: rec,
		Logger:   zap.NewNop(),
	}
}

// build creates a character from l with a recording sink. Only an avatar
// (l.Avatar) hears first-person messages.
func (w *world) build(t *testing.T, l *character.Loadout, src dice.Source) (*character.Character, *notify.Log) {
	t.Helper()
	if l.Name == "" {
		l.Name = "Tester"
	}
	log := &notify.Log{}
	c, err := character.Build(l, w.deps(src, log, nil))
	require.NoError(t, err)
	return c, log
}

func (w *world) bash(amount float64) damage.Unit {
	return damage.NewUnit(w.types.MustLookup("bash"), amount)
}

func (w *world) unit(id string, amount float64) damage.Unit {
	return damage.NewUnit(w.types.MustLookup(id), amount)
}

func (w *world) enchant(t *testing.T, id string) *enchant.Def {
	t.Helper()
	d, ok := w.enchants.Get(id)
	require.True(t, ok)
	return d
}

// worn returns the first worn piece named name.
func worn(t *testing.T, c *character.Character, name string) *inventory.Item {
	t.Helper()
	for _, it := range c.Worn.Items() {
		if it.Name() == name {
			return it
		}
	}
	t.Fatalf("%s not worn", name)
	return nil
}
