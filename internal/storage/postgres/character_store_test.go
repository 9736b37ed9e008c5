package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/content"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/units"
	"github.com/cory-johannsen/survival/internal/storage/postgres"
	"github.com/cory-johannsen/survival/internal/testutil"
)

func buildCharacter(t *testing.T, cat *content.Catalog, id string) *character.Character {
	t.Helper()
	c, err := character.Build(&character.Loadout{
		ID:      id,
		Name:    "Stored",
		Worn:    []character.WornSpec{{Item: "tshirt"}, {Item: "hoodie"}},
		Carried: []string{"rock"},
	}, character.Deps{
		Types:  cat.Types,
		Parts:  cat.Parts,
		Items:  cat.Items,
		Traits: cat.Traits,
		Rand:   dice.NewSeededSource(7),
		Sink:   notify.Discard,
	})
	require.NoError(t, err)
	return c
}

func wornByDef(t *testing.T, c *character.Character, defID string) *inventory.Item {
	t.Helper()
	for _, it := range c.Worn.Items() {
		if it.Def().ID == defID {
			return it
		}
	}
	t.Fatalf("%s is not worn", defID)
	return nil
}

func TestCharacterStore_PersistAndRestore(t *testing.T) {
	pool := testutil.NewPool(t)
	cat, err := content.Load("../../../content", zap.NewNop())
	require.NoError(t, err)
	store := postgres.NewCharacterStore(pool, cat.Vitamins, cat.Items, zap.NewNop())
	ctx := context.Background()
	id := uniqueID("char")

	before := buildCharacter(t, cat, id)
	require.NoError(t, before.Eat(stomach.FoodSummary{Water: 300 * units.Milliliter}, 60))
	for _, it := range before.Worn.Items() {
		if it.Def().ID == "hoodie" {
			it.SetDegradation(100)
			it.SetDamage(1500)
		}
	}
	require.NoError(t, store.Persist(ctx, before))

	after := buildCharacter(t, cat, id)
	require.NoError(t, store.Restore(ctx, after))

	assert.Equal(t, before.Stomach.Contains(), after.Stomach.Contains())
	assert.Equal(t, clock.Turn(60), after.Stomach.LastAte())
	hoodie := wornByDef(t, after, "hoodie")
	assert.Equal(t, 1500, hoodie.Damage())
	assert.Equal(t, wornByDef(t, before, "hoodie").Degradation(), hoodie.Degradation())
	assert.Equal(t, wornByDef(t, before, "tshirt").Damage(), wornByDef(t, after, "tshirt").Damage())

	stored, err := postgres.NewItemWearRepository(pool).Load(ctx, id, cat.Items)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, postgres.SlotCarried, stored[2].Slot)
	assert.Equal(t, "rock", stored[2].Item.Def().ID)
}

func TestCharacterStore_RestoreWithNothingStored(t *testing.T) {
	pool := testutil.NewPool(t)
	cat, err := content.Load("../../../content", zap.NewNop())
	require.NoError(t, err)
	store := postgres.NewCharacterStore(pool, cat.Vitamins, cat.Items, nil)

	c := buildCharacter(t, cat, uniqueID("fresh"))
	require.NoError(t, store.Restore(context.Background(), c))

	assert.Equal(t, stomach.StartingContents, c.Stomach.Contains())
	assert.Equal(t, stomach.StartingStomachKCal, c.Stomach.Calories())
}

func TestCharacterStore_RestoresPlates(t *testing.T) {
	pool := testutil.NewPool(t)
	cat, err := content.Load("../../../content", zap.NewNop())
	require.NoError(t, err)
	store := postgres.NewCharacterStore(pool, cat.Vitamins, cat.Items, zap.NewNop())
	ctx := context.Background()
	id := uniqueID("plated")

	build := func() *character.Character {
		c, err := character.Build(&character.Loadout{
			ID:   id,
			Name: "Plated",
			Worn: []character.WornSpec{{Item: "plate_carrier"}},
		}, character.Deps{
			Types:  cat.Types,
			Parts:  cat.Parts,
			Items:  cat.Items,
			Traits: cat.Traits,
			Rand:   dice.NewSeededSource(7),
			Sink:   notify.Discard,
		})
		require.NoError(t, err)
		return c
	}

	before := build()
	plates := wornByDef(t, before, "plate_carrier").AblativePockets()
	require.Len(t, plates, 2)
	broken, err := cat.Items.NewItem("ceramic_plate_broken")
	require.NoError(t, err)
	require.True(t, plates[0].Replace(plates[0].Front(), broken))
	plates[1].Front().SetDamage(2000)
	worn := plates[1].Front()
	require.NoError(t, store.Persist(ctx, before))

	after := build()
	require.NoError(t, store.Restore(ctx, after))

	restored := wornByDef(t, after, "plate_carrier").AblativePockets()
	require.Len(t, restored, 2)
	assert.Equal(t, "ceramic_plate_broken", restored[0].Front().Def().ID)
	assert.Equal(t, broken.ID, restored[0].Front().ID)
	assert.Equal(t, worn.ID, restored[1].Front().ID)
	assert.Equal(t, 2000, restored[1].Front().Damage())
	assert.Len(t, restored[1].Items(), 1)

	stored, err := postgres.NewItemWearRepository(pool).Load(ctx, id, cat.Items)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, postgres.SlotPocketed, stored[1].Slot)
	assert.Equal(t, stored[0].Item.ID, stored[1].Parent)
	assert.Equal(t, 1, stored[2].Pocket)
}
