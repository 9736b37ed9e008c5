package character

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/trait"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// WornSpec names an armor piece to put on and the wear it starts with.
type WornSpec struct {
	Item   string `yaml:"item"`
	Damage int    `yaml:"damage"`
}

// BionicSpec names an installed bionic.
type BionicSpec struct {
	ID      string `yaml:"id"`
	Powered bool   `yaml:"powered"`
}

// Loadout is the YAML description of a character at creation.
type Loadout struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Avatar   bool   `yaml:"avatar"`
	Location string `yaml:"location"`
	// Worn pieces are listed in any order; layering sorts them.
	Worn       []WornSpec         `yaml:"worn"`
	Carried    []string           `yaml:"carried"`
	Mutations  []string           `yaml:"mutations"`
	Bionics    []BionicSpec       `yaml:"bionics"`
	PowerKJ    float64            `yaml:"power_kj"`
	MaxPowerKJ float64            `yaml:"max_power_kj"`
	ArmorBonus map[string]float64 `yaml:"armor_bonus"`
}

// Deps are the linked registries and services a Character is built against.
type Deps struct {
	Types  *damage.Registry
	Parts  *anatomy.Registry
	Items  *inventory.Registry
	Traits *trait.Registry
	// Rand defaults to a crypto source.
	Rand dice.Source
	// Sink defaults to a zap sink on Logger.
	Sink     notify.Sink
	Recorder Recorder
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Start is the turn digestion is processed from.
	Start clock.Turn
}

// Build constructs a Character from a loadout.
//
// Precondition: l must be non-nil; d.Types, d.Parts, d.Items and d.Traits must be linked.
// Postcondition: Returns a Character with default stomach and guts contents,
// or an error naming every unresolved reference.
func Build(l *Loadout, d Deps) (*Character, error) {
	if l == nil {
		return nil, errors.New("loadout must not be nil")
	}
	if l.Name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if d.Types == nil || d.Parts == nil || d.Items == nil || d.Traits == nil {
		return nil, errors.New("character: Build requires damage, anatomy, item and trait registries")
	}
	if l.PowerKJ < 0 || l.MaxPowerKJ < 0 {
		return nil, fmt.Errorf("character %q: power must be >= 0", l.Name)
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := d.Rand
	if rng == nil {
		rng = dice.NewCryptoSource()
	}
	sink := d.Sink
	if sink == nil {
		sink = notify.NewZapSink(logger, l.Name)
	}
	rec := d.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	id := l.ID
	if id == "" {
		id = uuid.NewString()
	}

	c := &Character{
		ID:           id,
		Name:         l.Name,
		Avatar:       l.Avatar,
		Location:     l.Location,
		Worn:         inventory.NewWorn(),
		Inventory:    inventory.NewBackpack(),
		Stomach:      stomach.NewStomach(),
		Guts:         stomach.NewGuts(),
		Enchantments: enchant.NewCache(),
		maxPower:     units.FromKilojoule(l.MaxPowerKJ),
		window:       clock.NewWindow(d.Start),
		parts:        d.Parts,
		items:        d.Items,
		rng:          rng,
		sink:         sink,
		recorder:     rec,
		logger:       logger.With(zap.String("character", id)),
	}
	c.ModPowerLevel(units.FromKilojoule(l.PowerKJ))

	var errs []error
	bonus, err := anatomy.ResolveResistances(d.Types, l.ArmorBonus)
	if err != nil {
		errs = append(errs, fmt.Errorf("armor_bonus: %w", err))
	}
	c.ArmorBonus = bonus

	for _, mid := range l.Mutations {
		m, ok := d.Traits.Mutation(mid)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown mutation %q", mid))
			continue
		}
		c.Mutations = append(c.Mutations, m)
	}
	for _, bs := range l.Bionics {
		b, ok := d.Traits.Bionic(bs.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown bionic %q", bs.ID))
			continue
		}
		c.Bionics = append(c.Bionics, Bionic{ID: b, Powered: bs.Powered})
	}

	for _, ws := range l.Worn {
		it, err := d.Items.Spawn(ws.Item, ws.Damage, rng)
		if err != nil {
			errs = append(errs, fmt.Errorf("worn: %w", err))
			continue
		}
		if err := c.Worn.Wear(it); err != nil {
			errs = append(errs, fmt.Errorf("worn %q: %w", ws.Item, err))
		}
	}
	for _, cid := range l.Carried {
		it, err := d.Items.NewItem(cid)
		if err != nil {
			errs = append(errs, fmt.Errorf("carried: %w", err))
			continue
		}
		if err := c.Inventory.Add(it, c.Worn.Capacity()); err != nil {
			errs = append(errs, fmt.Errorf("carried %q: %w", cid, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("character %q: %w", l.Name, err)
	}
	return c, nil
}
