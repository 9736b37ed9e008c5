// Package survey samples the wear items spawn with and summarizes it per
// item definition and starting damage.
package survey

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/telemetry"
)

// DefaultDamages are the starting wear levels surveyed when none are given.
var DefaultDamages = []int{0, 1000, 2000, 3000, 4000}

// Degradation spawns each named item definition samples times at each damage
// and summarizes the degradation it spawned with. No ids surveys every definition.
//
// Precondition: items must be linked; samples must be positive; src must be non-nil.
// Postcondition: Returns one record per definition and damage, ordered by
// definition ID then damage, or an error wrapping inventory.ErrUnknownItem.
func Degradation(items *inventory.Registry, ids []string, damages []int, samples int, src dice.Source) ([]telemetry.SurveyRecord, error) {
	if samples < 1 {
		return nil, fmt.Errorf("survey: samples must be >= 1, got %d", samples)
	}
	if src == nil {
		return nil, errors.New("survey: a random source is required")
	}
	if len(damages) == 0 {
		damages = DefaultDamages
	}
	if len(ids) == 0 {
		for _, def := range items.AllItems() {
			ids = append(ids, def.ID)
		}
	} else {
		ids = slices.Clone(ids)
		slices.Sort(ids)
	}

	var out []telemetry.SurveyRecord
	xs := make([]float64, samples)
	for _, id := range ids {
		for _, dmg := range damages {
			var increments int
			for i := range xs {
				it, err := items.Spawn(id, dmg, src)
				if err != nil {
					return nil, err
				}
				increments = it.DegradeIncrements()
				xs[i] = float64(it.Degradation())
			}
			out = append(out, summarize(id, dmg, increments, xs))
		}
	}
	return out, nil
}

func summarize(id string, dmg, increments int, xs []float64) telemetry.SurveyRecord {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return telemetry.SurveyRecord{
		Item:       id,
		Damage:     dmg,
		Increments: increments,
		Samples:    len(sorted),
		Mean:       mean,
		StdDev:     std,
		Min:        floats.Min(sorted),
		Median:     stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:        floats.Max(sorted),
	}
}
