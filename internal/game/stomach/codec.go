package stomach

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// record is the persisted form of Contents. Volumes use the "<n>_ml" encoding.
type record struct {
	Vitamins  map[nutrition.VitaminID]int `json:"vitamins"`
	Calories  int                         `json:"calories"`
	Water     string                      `json:"water"`
	MaxVolume string                      `json:"max_volume"`
	Contents  string                      `json:"contents"`
	LastAte   clock.Turn                  `json:"last_ate"`
	IsStomach bool                        `json:"is_stomach"`
}

// MarshalJSON encodes c in its persisted form.
func (c *Contents) MarshalJSON() ([]byte, error) {
	vits := c.nutr.Vitamins
	if vits == nil {
		vits = map[nutrition.VitaminID]int{}
	}
	return json.Marshal(record{
		Vitamins:  vits,
		Calories:  c.nutr.Calories,
		Water:     c.water.String(),
		MaxVolume: c.maxVolume.String(),
		Contents:  c.contents.String(),
		LastAte:   c.lastAte,
		IsStomach: c.isStomach,
	})
}

// Decode restores Contents from its persisted form. Vitamins unknown to
// vitamins are dropped with a warning so that retired vitamins never block
// a load.
//
// Precondition: vitamins and logger must be non-nil.
// Postcondition: Returns the decoded Contents or a non-nil error for malformed input.
func Decode(data []byte, vitamins *nutrition.Registry, logger *zap.Logger) (*Contents, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("stomach: decoding contents: %w", err)
	}
	water, err := units.ParseVolume(rec.Water)
	if err != nil {
		return nil, fmt.Errorf("stomach: water: %w", err)
	}
	maxVolume, err := units.ParseVolume(rec.MaxVolume)
	if err != nil {
		return nil, fmt.Errorf("stomach: max_volume: %w", err)
	}
	contents, err := units.ParseVolume(rec.Contents)
	if err != nil {
		return nil, fmt.Errorf("stomach: contents: %w", err)
	}

	c := &Contents{
		maxVolume: maxVolume,
		isStomach: rec.IsStomach,
		contents:  max(contents, 0),
		water:     max(water, 0),
		nutr:      nutrition.Nutrients{Calories: rec.Calories},
		lastAte:   rec.LastAte,
	}
	for id, v := range rec.Vitamins {
		if !vitamins.Known(id) {
			logger.Warn("deleted unknown vitamin from stomach contents",
				zap.String("vitamin", string(id)),
				zap.Int("amount", v),
			)
			continue
		}
		c.nutr.SetVitamin(id, v)
	}
	return c, nil
}
