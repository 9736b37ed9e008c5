// Package trait defines bionics and mutations: installed or inherited
// traits that add protection, alter digestion and grant enchantments.
package trait

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// Bionic flags.
const (
	FlagArmorInterface   = "BIONIC_ARMOR_INTERFACE"
	FlagGutsReplacer     = "GUTS_REPLACER"
	FlagPoweredDigestion = "POWERED_DIGESTION"
)

// Mutation flags.
const (
	FlagSeeSleep = "SEESLEEP"
)

// DefaultReplacerCapacity is the fixed stomach and gut capacity provided by an
// artificial digestive tract that declares none.
const DefaultReplacerCapacity = 10 * units.Liter

// DefaultDigestionCostJ is the energy, in joules per milliliter, drawn by powered digestion.
const DefaultDigestionCostJ = 200

// ADSDef configures an active defense system: a bionic that burns power to
// absorb part of each incoming damage unit.
type ADSDef struct {
	// MaxAbsorption caps per-unit absorption; larger hits are reduced by this flat amount.
	MaxAbsorption float64 `yaml:"max_absorption"`
	// MinPowerKJ is the power level the character must exceed for the system to engage.
	MinPowerKJ float64 `yaml:"min_power_kj"`
	// CostFactorJ and MaxCostJ give the energy drawn: min(MaxCostJ, CostFactorJ * amount^2) joules.
	CostFactorJ float64 `yaml:"cost_factor_j"`
	MaxCostJ    float64 `yaml:"max_cost_j"`
	// Divisors maps damage type ids to the divisor applied to amounts within the cap.
	// Types not listed pass through unchanged but still draw power.
	Divisors map[string]float64 `yaml:"divisors"`

	divisors map[damage.Type]float64
}

// Divisor returns the divisor for t and whether t is absorbed at all.
func (a *ADSDef) Divisor(t damage.Type) (float64, bool) {
	d, ok := a.divisors[t]
	return d, ok
}

// Cost returns the energy drawn to act on a unit of amount.
func (a *ADSDef) Cost(amount float64) units.Energy {
	j := a.CostFactorJ * amount * amount
	if a.MaxCostJ > 0 && j > a.MaxCostJ {
		j = a.MaxCostJ
	}
	return units.FromJoule(j)
}

// MinPower returns the power threshold as Energy.
func (a *ADSDef) MinPower() units.Energy { return units.FromKilojoule(a.MinPowerKJ) }

func (a *ADSDef) validate(owner string) []error {
	var errs []error
	if a.MaxAbsorption <= 0 {
		errs = append(errs, fmt.Errorf("bionic %q: ads.max_absorption must be > 0", owner))
	}
	if a.CostFactorJ < 0 || a.MaxCostJ < 0 || a.MinPowerKJ < 0 {
		errs = append(errs, fmt.Errorf("bionic %q: ads costs must be >= 0", owner))
	}
	for id, d := range a.Divisors {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("bionic %q: ads divisor for %q must be > 0", owner, id))
		}
	}
	return errs
}

// BionicDef is the static definition of a bionic, loaded from YAML.
type BionicDef struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Flags []string `yaml:"flags"`
	// Protec is flat protection per body part, keyed by damage type id.
	Protec map[anatomy.BodyPartID]map[string]float64 `yaml:"protec"`
	// EnvProtec is environmental protection per body part.
	EnvProtec map[anatomy.BodyPartID]int `yaml:"env_protec"`
	ADS       *ADSDef                    `yaml:"ads"`
	// FixedCapacityML overrides stomach and gut capacity for GUTS_REPLACER bionics.
	FixedCapacityML int64 `yaml:"fixed_capacity_ml"`
	// DigestionCostJ is joules per milliliter for powered digestion.
	DigestionCostJ float64  `yaml:"digestion_cost_j"`
	Enchantments   []string `yaml:"enchantments"`

	protec   map[anatomy.BodyPartID]damage.Resistances
	enchants []*enchant.Def
}

// Validate reports every structural problem with d.
func (d *BionicDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.ADS != nil {
		errs = append(errs, d.ADS.validate(d.ID)...)
	}
	if d.FixedCapacityML < 0 {
		errs = append(errs, fmt.Errorf("bionic %q: fixed_capacity_ml must be >= 0", d.ID))
	}
	if d.DigestionCostJ < 0 {
		errs = append(errs, fmt.Errorf("bionic %q: digestion_cost_j must be >= 0", d.ID))
	}
	return errors.Join(errs...)
}

// HasFlag reports whether d carries flag.
func (d *BionicDef) HasFlag(flag string) bool { return slices.Contains(d.Flags, flag) }

// ProtecAt returns the flat protection d grants on bp.
func (d *BionicDef) ProtecAt(bp anatomy.BodyPartID) damage.Resistances { return d.protec[bp] }

// EnvProtecAt returns the environmental protection d grants on bp.
func (d *BionicDef) EnvProtecAt(bp anatomy.BodyPartID) int { return d.EnvProtec[bp] }

// EnchantmentDefs returns the linked enchantments d grants.
func (d *BionicDef) EnchantmentDefs() []*enchant.Def { return d.enchants }

// FixedCapacity returns the capacity override of a guts replacer.
func (d *BionicDef) FixedCapacity() (units.Volume, bool) {
	if !d.HasFlag(FlagGutsReplacer) {
		return 0, false
	}
	if d.FixedCapacityML > 0 {
		return units.FromMilliliter(d.FixedCapacityML), true
	}
	return DefaultReplacerCapacity, true
}

// DigestionCost returns the per-milliliter energy cost of powered digestion,
// or zero when d does not power digestion.
func (d *BionicDef) DigestionCost() units.Energy {
	if !d.HasFlag(FlagPoweredDigestion) && !d.HasFlag(FlagGutsReplacer) {
		return 0
	}
	if d.DigestionCostJ > 0 {
		return units.FromJoule(d.DigestionCostJ)
	}
	return units.FromJoule(DefaultDigestionCostJ)
}

// BionicID is an interned handle to a registered bionic.
// The zero BionicID is invalid.
type BionicID struct {
	def *BionicDef
}

// Valid reports whether b refers to a registered bionic.
func (b BionicID) Valid() bool { return b.def != nil }

// String returns the bionic id.
func (b BionicID) String() string {
	if b.def == nil {
		return ""
	}
	return b.def.ID
}

// Def returns the definition behind b.
//
// Precondition: b.Valid().
func (b BionicID) Def() *BionicDef { return b.def }

// MutationDef is the static definition of a mutation, loaded from YAML.
type MutationDef struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Flags []string `yaml:"flags"`
	// Armor is natural protection per body part, keyed by damage type id.
	Armor map[anatomy.BodyPartID]map[string]float64 `yaml:"armor"`
	// StomachSizeMultiplier scales stomach capacity; 0 means unchanged.
	StomachSizeMultiplier float64  `yaml:"stomach_size_multiplier"`
	Enchantments          []string `yaml:"enchantments"`

	armor    map[anatomy.BodyPartID]damage.Resistances
	enchants []*enchant.Def
}

// Validate reports every structural problem with d.
func (d *MutationDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.StomachSizeMultiplier < 0 {
		errs = append(errs, fmt.Errorf("mutation %q: stomach_size_multiplier must be >= 0", d.ID))
	}
	return errors.Join(errs...)
}

// HasFlag reports whether d carries flag.
func (d *MutationDef) HasFlag(flag string) bool { return slices.Contains(d.Flags, flag) }

// ArmorAt returns the natural protection d grants on bp.
func (d *MutationDef) ArmorAt(bp anatomy.BodyPartID) damage.Resistances { return d.armor[bp] }

// StomachMultiplier returns the capacity multiplier, 1 when unset.
func (d *MutationDef) StomachMultiplier() float64 {
	if d.StomachSizeMultiplier == 0 {
		return 1
	}
	return d.StomachSizeMultiplier
}

// EnchantmentDefs returns the linked enchantments d grants.
func (d *MutationDef) EnchantmentDefs() []*enchant.Def { return d.enchants }

// Registry holds every bionic and mutation definition.
type Registry struct {
	bionics   map[string]*BionicDef
	mutations map[string]*MutationDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		bionics:   make(map[string]*BionicDef),
		mutations: make(map[string]*MutationDef),
	}
}

// RegisterBionic validates def and adds it.
//
// Precondition: def must not be nil.
func (r *Registry) RegisterBionic(def *BionicDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.bionics[def.ID]; dup {
		return fmt.Errorf("bionic %q registered twice", def.ID)
	}
	r.bionics[def.ID] = def
	return nil
}

// RegisterMutation validates def and adds it.
//
// Precondition: def must not be nil.
func (r *Registry) RegisterMutation(def *MutationDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.mutations[def.ID]; dup {
		return fmt.Errorf("mutation %q registered twice", def.ID)
	}
	r.mutations[def.ID] = def
	return nil
}

// Bionic returns the handle for id.
func (r *Registry) Bionic(id string) (BionicID, bool) {
	d, ok := r.bionics[id]
	if !ok {
		return BionicID{}, false
	}
	return BionicID{def: d}, true
}

// Mutation returns the mutation for id.
func (r *Registry) Mutation(id string) (*MutationDef, bool) {
	d, ok := r.mutations[id]
	return d, ok
}

// Bionics returns every bionic handle ordered by id.
func (r *Registry) Bionics() []BionicID {
	out := make([]BionicID, 0, len(r.bionics))
	for _, d := range r.bionics {
		out = append(out, BionicID{def: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Link resolves damage type, body part and enchantment references.
//
// Postcondition: Returns an error naming every unresolved reference.
func (r *Registry) Link(types *damage.Registry, parts *anatomy.Registry, enchants *enchant.Registry) error {
	var errs []error
	for _, d := range r.bionics {
		prot, err := resolvePerPart(types, parts, d.Protec)
		if err != nil {
			errs = append(errs, fmt.Errorf("bionic %q protec: %w", d.ID, err))
		}
		d.protec = prot
		for bp := range d.EnvProtec {
			if _, ok := parts.Get(bp); !ok {
				errs = append(errs, fmt.Errorf("bionic %q env_protec: unknown body part %q", d.ID, bp))
			}
		}
		if d.ADS != nil {
			d.ADS.divisors = make(map[damage.Type]float64, len(d.ADS.Divisors))
			for id, div := range d.ADS.Divisors {
				t, ok := types.Lookup(id)
				if !ok {
					errs = append(errs, fmt.Errorf("bionic %q ads: unknown damage type %q", d.ID, id))
					continue
				}
				d.ADS.divisors[t] = div
			}
		}
		defs, err := enchants.Resolve(d.Enchantments)
		if err != nil {
			errs = append(errs, fmt.Errorf("bionic %q: %w", d.ID, err))
		}
		d.enchants = defs
	}
	for _, d := range r.mutations {
		armor, err := resolvePerPart(types, parts, d.Armor)
		if err != nil {
			errs = append(errs, fmt.Errorf("mutation %q armor: %w", d.ID, err))
		}
		d.armor = armor
		defs, err := enchants.Resolve(d.Enchantments)
		if err != nil {
			errs = append(errs, fmt.Errorf("mutation %q: %w", d.ID, err))
		}
		d.enchants = defs
	}
	return errors.Join(errs...)
}

func resolvePerPart(types *damage.Registry, parts *anatomy.Registry, raw map[anatomy.BodyPartID]map[string]float64) (map[anatomy.BodyPartID]damage.Resistances, error) {
	out := make(map[anatomy.BodyPartID]damage.Resistances, len(raw))
	var errs []error
	for bp, table := range raw {
		if _, ok := parts.Get(bp); !ok {
			errs = append(errs, fmt.Errorf("unknown body part %q", bp))
			continue
		}
		res, err := anatomy.ResolveResistances(types, table)
		if err != nil {
			errs = append(errs, fmt.Errorf("body part %q: %w", bp, err))
		}
		out[bp] = res
	}
	return out, errors.Join(errs...)
}
