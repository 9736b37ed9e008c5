package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/units"
	"github.com/cory-johannsen/survival/internal/storage/postgres"
	"github.com/cory-johannsen/survival/internal/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func vitamins(t *testing.T, ids ...nutrition.VitaminID) *nutrition.Registry {
	t.Helper()
	reg := nutrition.NewRegistry()
	for _, id := range ids {
		require.NoError(t, reg.Register(&nutrition.VitaminDef{ID: id, Kind: nutrition.KindVitamin}))
	}
	return reg
}

func TestStomachRepository_RoundTrip(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewStomachRepository(pool, vitamins(t, "vitC"), zap.NewNop())
	ctx := context.Background()
	id := uniqueID("char")

	st := stomach.NewStomach()
	food := stomach.FoodSummary{Solids: 250 * units.Milliliter, Water: 300 * units.Milliliter}
	food.Nutr.Calories = 120_000
	food.Nutr.SetVitamin("vitC", 12)
	st.Ingest(food, 900)
	guts := stomach.NewGuts()

	require.NoError(t, repo.Save(ctx, id, st, guts))
	gotSt, gotGuts, err := repo.Load(ctx, id)
	require.NoError(t, err)

	assert.True(t, gotSt.IsStomach())
	assert.Equal(t, st.Contains(), gotSt.Contains())
	assert.Equal(t, st.Water(), gotSt.Water())
	assert.True(t, st.Nutrients().Equal(gotSt.Nutrients()))
	assert.Equal(t, st.LastAte(), gotSt.LastAte())
	assert.False(t, gotGuts.IsStomach())
	assert.Equal(t, guts.Calories(), gotGuts.Calories())
	assert.Equal(t, stomach.DefaultGutsVolume, gotGuts.MaxVolume())
}

func TestStomachRepository_SaveOverwrites(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewStomachRepository(pool, vitamins(t), nil)
	ctx := context.Background()
	id := uniqueID("char")

	st := stomach.NewStomach()
	require.NoError(t, repo.Save(ctx, id, st, stomach.NewGuts()))
	st.Empty()
	require.NoError(t, repo.Save(ctx, id, st, stomach.NewGuts()))

	got, _, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, got.Contains())
	assert.Zero(t, got.Calories())
}

func TestStomachRepository_UnknownVitaminDropped(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	id := uniqueID("char")

	st := stomach.NewStomach()
	var food stomach.FoodSummary
	food.Nutr.SetVitamin("retired", 3)
	food.Nutr.SetVitamin("vitC", 4)
	st.Ingest(food, 0)
	require.NoError(t, postgres.NewStomachRepository(pool, vitamins(t, "retired", "vitC"), nil).
		Save(ctx, id, st, stomach.NewGuts()))

	core, logs := observer.New(zap.WarnLevel)
	got, _, err := postgres.NewStomachRepository(pool, vitamins(t, "vitC"), zap.New(core)).Load(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Nutrients().Vitamin("vitC"))
	assert.Zero(t, got.Nutrients().Vitamin("retired"))
	assert.Equal(t, 1, logs.Len())
}

func TestStomachRepository_NotFound(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewStomachRepository(pool, vitamins(t), nil)

	_, _, err := repo.Load(context.Background(), uniqueID("missing"))
	assert.ErrorIs(t, err, postgres.ErrStomachNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), uniqueID("missing")), postgres.ErrStomachNotFound)
}

func TestStomachRepository_Delete(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewStomachRepository(pool, vitamins(t), nil)
	ctx := context.Background()
	id := uniqueID("char")

	require.NoError(t, repo.Save(ctx, id, stomach.NewStomach(), stomach.NewGuts()))
	require.NoError(t, repo.Delete(ctx, id))
	_, _, err := repo.Load(ctx, id)
	assert.ErrorIs(t, err, postgres.ErrStomachNotFound)
}

func TestProperty_StomachRoundTripPreservesVolumes(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewStomachRepository(pool, vitamins(t), nil)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		solids := units.FromMilliliter(rapid.Int64Range(0, 5000).Draw(rt, "solids"))
		water := units.FromMilliliter(rapid.Int64Range(0, 5000).Draw(rt, "water"))
		st := stomach.New(stomach.DefaultStomachVolume, true)
		st.Ingest(stomach.FoodSummary{Solids: solids, Water: water}, 0)
		id := uniqueID("prop")

		if err := repo.Save(ctx, id, st, stomach.NewGuts()); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, _, err := repo.Load(ctx, id)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		if got.Solids() != solids || got.Water() != water {
			rt.Fatalf("got %s/%s, want %s/%s", got.Solids(), got.Water(), solids, water)
		}
	})
}
