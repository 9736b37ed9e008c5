// Package simulation replays scripted scenarios against a character: hits,
// meals and bionic switches scheduled on game turns, with digestion running
// on every clock tick.
package simulation

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/content"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
)

// DamageSpec is one damage unit of a scripted hit. Roll, a dice expression
// such as "2d6+1", replaces Amount with a fresh roll on every hit.
type DamageSpec struct {
	Type   string  `yaml:"type"`
	Amount float64 `yaml:"amount"`
	Roll   string  `yaml:"roll"`
	ResPen float64 `yaml:"res_pen"`
	// ResMult defaults to 1 when omitted.
	ResMult *float64 `yaml:"res_mult"`
}

// HitEvent strikes one body part.
type HitEvent struct {
	Attacker string             `yaml:"attacker"`
	BodyPart anatomy.BodyPartID `yaml:"body_part"`
	Damage   []DamageSpec       `yaml:"damage"`
}

// MealEvent puts food into the stomach.
type MealEvent struct {
	SolidsML int64                       `yaml:"solids_ml"`
	WaterML  int64                       `yaml:"water_ml"`
	KCal     float64                     `yaml:"kcal"`
	Vitamins map[nutrition.VitaminID]int `yaml:"vitamins"`
}

// BionicEvent switches an installed bionic on or off.
type BionicEvent struct {
	ID      string `yaml:"id"`
	Powered bool   `yaml:"powered"`
}

// Event is a scheduled action. Exactly one of Hit, Eat and Bionic is set.
type Event struct {
	At     clock.Turn   `yaml:"at"`
	Hit    *HitEvent    `yaml:"hit"`
	Eat    *MealEvent   `yaml:"eat"`
	Bionic *BionicEvent `yaml:"bionic"`
}

func (d DamageSpec) validate() error {
	if d.ResMult != nil && *d.ResMult < 0 {
		return fmt.Errorf("%s res_mult must not be negative", d.Type)
	}
	if d.Roll == "" {
		if d.Amount < 0 {
			return fmt.Errorf("%s damage must not be negative", d.Type)
		}
		return nil
	}
	if d.Amount != 0 {
		return fmt.Errorf("%s damage sets both amount and roll", d.Type)
	}
	_, err := dice.ParseExpr(d.Roll)
	return err
}

func (e Event) kind() string {
	switch {
	case e.Hit != nil:
		return "hit"
	case e.Eat != nil:
		return "eat"
	case e.Bionic != nil:
		return "bionic"
	}
	return ""
}

// Scenario is a character loadout and the events played against it.
type Scenario struct {
	Name      string            `yaml:"name"`
	Character character.Loadout `yaml:"character"`
	// Duration is how many turns the scenario runs.
	Duration clock.Turn `yaml:"duration"`
	Events   []Event    `yaml:"events"`
}

// Validate checks the scenario's own invariants without consulting content.
//
// Postcondition: Returns nil or an error naming every violation.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("scenario name must not be empty"))
	}
	if s.Duration <= 0 {
		errs = append(errs, fmt.Errorf("scenario %q: duration must be positive, got %d", s.Name, s.Duration))
	}
	for i, ev := range s.Events {
		set := 0
		for _, p := range []bool{ev.Hit != nil, ev.Eat != nil, ev.Bionic != nil} {
			if p {
				set++
			}
		}
		if set != 1 {
			errs = append(errs, fmt.Errorf("scenario %q: event %d must set exactly one of hit, eat, bionic", s.Name, i))
		}
		if ev.At < 0 || ev.At > s.Duration {
			errs = append(errs, fmt.Errorf("scenario %q: event %d at turn %d is outside [0, %d]", s.Name, i, ev.At, s.Duration))
		}
		if ev.Hit != nil {
			if len(ev.Hit.Damage) == 0 {
				errs = append(errs, fmt.Errorf("scenario %q: hit at turn %d has no damage", s.Name, ev.At))
			}
			for _, d := range ev.Hit.Damage {
				if err := d.validate(); err != nil {
					errs = append(errs, fmt.Errorf("scenario %q: hit at turn %d: %w", s.Name, ev.At, err))
				}
			}
		}
		if ev.Eat != nil && (ev.Eat.SolidsML < 0 || ev.Eat.WaterML < 0 || ev.Eat.KCal < 0) {
			errs = append(errs, fmt.Errorf("scenario %q: meal at turn %d has negative amounts", s.Name, ev.At))
		}
	}
	return errors.Join(errs...)
}

// Resolve checks every reference the events make against cat.
//
// Precondition: cat must be linked.
// Postcondition: Returns nil or an error naming every unresolved reference.
func (s *Scenario) Resolve(cat *content.Catalog) error {
	var errs []error
	for _, ev := range s.Events {
		if ev.Hit != nil {
			if _, ok := cat.Parts.Get(ev.Hit.BodyPart); !ok {
				errs = append(errs, fmt.Errorf("turn %d: unknown body part %q", ev.At, ev.Hit.BodyPart))
			}
			for _, d := range ev.Hit.Damage {
				if _, ok := cat.Types.Lookup(d.Type); !ok {
					errs = append(errs, fmt.Errorf("turn %d: unknown damage type %q", ev.At, d.Type))
				}
			}
		}
		if ev.Bionic != nil {
			if _, ok := cat.Traits.Bionic(ev.Bionic.ID); !ok {
				errs = append(errs, fmt.Errorf("turn %d: unknown bionic %q", ev.At, ev.Bionic.ID))
			}
		}
		if ev.Eat != nil {
			for id := range ev.Eat.Vitamins {
				if !cat.Vitamins.Known(id) {
					errs = append(errs, fmt.Errorf("turn %d: unknown vitamin %q", ev.At, id))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// sortedEvents returns the events ordered by turn, keeping file order on ties.
func (s *Scenario) sortedEvents() []Event {
	out := slices.Clone(s.Events)
	slices.SortStableFunc(out, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	return out
}

// DecodeScenario parses one scenario document, rejecting unknown fields.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads and decodes the scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := DecodeScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
