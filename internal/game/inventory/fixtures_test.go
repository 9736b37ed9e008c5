package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/inventory"
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

func intp(v int) *int { return &v }

type world struct {
	types *damage.Registry
	parts *anatomy.Registry
	items *inventory.Registry
	bash  damage.Type
	cut   damage.Type
}

func newWorld(t *testing.T) *world {
	t.Helper()
	types := damage.NewRegistry()
	for _, d := range []*damage.TypeDef{
		{ID: "bash", Blunt: true, Cover: "melee"},
		{ID: "cut", Cover: "melee"},
		{ID: "bullet", Cover: "ranged"},
	} {
		require.NoError(t, types.Register(d))
	}
	require.NoError(t, types.Link())

	parts := anatomy.NewRegistry()
	require.NoError(t, parts.Register(&anatomy.BodyPartDef{
		ID: "torso", Name: "torso",
		SubParts: []*anatomy.SubPartDef{
			{ID: "torso_upper", HitSize: 1},
			{ID: "torso_lower", HitSize: 1},
			{ID: "torso_hanging", Secondary: true},
		},
	}))
	require.NoError(t, parts.Register(&anatomy.BodyPartDef{
		ID: "arm_l", Name: "left arm",
		SubParts: []*anatomy.SubPartDef{{ID: "arm_upper_l"}},
	}))
	require.NoError(t, parts.Link(types))

	items := inventory.NewRegistry()
	for _, m := range []*inventory.MaterialDef{
		{ID: "kevlar", BashVerb: "dented", CutVerb: "cut", Resist: map[string]float64{"bash": 2, "cut": 4},
			DamageAdjectives: []string{"scratched", "cut", "shredded"}},
		{ID: "ceramic", BashVerb: "cracked", CutVerb: "chipped", Resist: map[string]float64{"bash": 3, "bullet": 4}},
		{ID: "cotton", BashVerb: "ripped", CutVerb: "ripped", DamageAdjectives: []string{"ripped", "torn"}},
		{ID: "wood", BashVerb: "dented", CutVerb: "gouged"},
	} {
		require.NoError(t, items.RegisterMaterial(m))
	}
	torso := []anatomy.BodyPartID{"torso"}
	for _, d := range []*inventory.ItemDef{
		{
			ID: "vest", Name: "kevlar vest", VolumeML: 2000,
			Materials: []inventory.MaterialUse{{Material: "kevlar", Thickness: 10}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerOuter, EnvResist: 2,
				Portions: []inventory.PortionDef{{Covers: torso, Coverage: 90, CoverRanged: intp(70)}}},
		},
		{
			ID: "padding", Name: "padded shirt", VolumeML: 500,
			Materials: []inventory.MaterialUse{{Material: "cotton", Thickness: 1}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerNormal, Resist: map[string]float64{"bash": 300},
				Portions: []inventory.PortionDef{{Covers: torso, Coverage: 100}}},
		},
		{
			ID: "sleeve", Name: "sleeve", VolumeML: 100,
			Materials: []inventory.MaterialUse{{Material: "cotton", Thickness: 1}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerSkintight,
				Portions: []inventory.PortionDef{{Covers: []anatomy.BodyPartID{"arm_l"}, Coverage: 100}}},
		},
		{
			ID: "ceramic_plate", Name: "ceramic plate", VolumeML: 1000,
			Materials: []inventory.MaterialUse{{Material: "ceramic", Thickness: 10}},
			Armor: &inventory.ArmorDef{NonFunctional: "broken_plate", DamageVerb: "cracks apart",
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: []anatomy.SubPartID{"torso_upper"}, Coverage: 45}}},
		},
		{
			ID: "broken_plate", Name: "broken ceramic plate", VolumeML: 1000,
			Materials: []inventory.MaterialUse{{Material: "ceramic", Thickness: 1}},
			Armor: &inventory.ArmorDef{
				Portions: []inventory.PortionDef{{Covers: torso, SubCovers: []anatomy.SubPartID{"torso_upper"}, Coverage: 45}}},
		},
		{
			ID: "plate_carrier", Name: "plate carrier", VolumeML: 1500,
			Materials: []inventory.MaterialUse{{Material: "kevlar", Thickness: 2, Portion: 3}, {Material: "cotton", Thickness: 1}},
			Armor: &inventory.ArmorDef{Layer: inventory.LayerOuter,
				Portions: []inventory.PortionDef{{Covers: torso, Coverage: 100}}},
			Pockets: []inventory.PocketDef{
				{Kind: inventory.PocketAblative, Default: "ceramic_plate"},
				{Kind: inventory.PocketAblative},
				{Kind: inventory.PocketContainer, MaxVolumeML: 2000},
			},
		},
		{ID: "baseball", Name: "baseball", VolumeML: 200, Materials: []inventory.MaterialUse{{Material: "wood"}}},
		{ID: "baseball_half", Name: "baseball", VolumeML: 200, DegradeIncrements: intp(100), Materials: []inventory.MaterialUse{{Material: "wood"}}},
		{ID: "baseball_x2", Name: "baseball", VolumeML: 200, DegradeIncrements: intp(25), Materials: []inventory.MaterialUse{{Material: "wood"}}},
		{ID: "baseball_nodeg", Name: "baseball", VolumeML: 200, DegradeIncrements: intp(0), Materials: []inventory.MaterialUse{{Material: "wood"}}},
		{ID: "anvil", Name: "anvil", VolumeML: 5000, Flags: []string{inventory.FlagUnbreakable}, Materials: []inventory.MaterialUse{{Material: "wood"}}},
	} {
		require.NoError(t, items.RegisterItem(d))
	}
	require.NoError(t, items.Link(types, parts))
	return &world{
		types: types, parts: parts, items: items,
		bash: types.MustLookup("bash"), cut: types.MustLookup("cut"),
	}
}

func (w *world) item(t *testing.T, id string) *inventory.Item {
	t.Helper()
	it, err := w.items.NewItem(id)
	require.NoError(t, err)
	return it
}
