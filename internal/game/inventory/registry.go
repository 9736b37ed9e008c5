package inventory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/units"
)

// ErrUnknownItem is returned when an item id is not registered.
var ErrUnknownItem = errors.New("unknown item")

// Registry holds all loaded material and item definitions indexed by ID.
type Registry struct {
	materials map[string]*MaterialDef
	items     map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		materials: make(map[string]*MaterialDef),
		items:     make(map[string]*ItemDef),
	}
}

// RegisterMaterial validates m and adds it to the registry.
//
// Precondition:  m must not be nil.
// Postcondition: Material(m.ID) returns m; returns error if m is invalid or already registered.
func (r *Registry) RegisterMaterial(m *MaterialDef) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, exists := r.materials[m.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterMaterial: material ID %q already registered", m.ID)
	}
	r.materials[m.ID] = m
	return nil
}

// RegisterItem validates d and adds it to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d is invalid or already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Material returns the MaterialDef for the given id and whether it was found.
func (r *Registry) Material(id string) (*MaterialDef, bool) {
	m, ok := r.materials[id]
	return m, ok
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// AllItems returns all registered ItemDefs ordered by id.
func (r *Registry) AllItems() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Link resolves every material, body part and item reference.
//
// Postcondition: Returns a joined error naming every unresolved reference.
func (r *Registry) Link(types *damage.Registry, parts *anatomy.Registry) error {
	var errs []error
	for _, m := range r.materials {
		errs = append(errs, m.link(types))
	}
	for _, d := range r.items {
		for i := range d.Materials {
			mu := &d.Materials[i]
			m, ok := r.materials[mu.Material]
			if !ok {
				errs = append(errs, fmt.Errorf("item %q: unknown material %q", d.ID, mu.Material))
				continue
			}
			mu.def = m
		}
		if d.Armor != nil {
			errs = append(errs, d.Armor.link(d.ID, types, parts))
			if nf := d.Armor.NonFunctional; nf != "" {
				if _, ok := r.items[nf]; !ok {
					errs = append(errs, fmt.Errorf("item %q: unknown non_functional %q", d.ID, nf))
				}
			}
		}
		for i, p := range d.Pockets {
			if p.Default == "" {
				continue
			}
			if _, ok := r.items[p.Default]; !ok {
				errs = append(errs, fmt.Errorf("item %q: pockets[%d] unknown default %q", d.ID, i, p.Default))
			}
		}
	}
	return errors.Join(errs...)
}

// NewItem creates a pristine instance of id with its default pocket contents.
//
// Postcondition: Returns ErrUnknownItem when id is not registered.
func (r *Registry) NewItem(id string) (*Item, error) {
	return r.newItem(id, 0)
}

func (r *Registry) newItem(id string, depth int) (*Item, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("inventory: %q: %w", id, ErrUnknownItem)
	}
	if depth > 8 {
		return nil, fmt.Errorf("inventory: %q: default pocket contents nest too deep", id)
	}
	it := &Item{
		ID:     uuid.New(),
		def:    d,
		energy: units.FromKilojoule(d.BatteryKJ),
	}
	for i := range d.Pockets {
		p := newPocket(&d.Pockets[i])
		if def := d.Pockets[i].Default; def != "" {
			inner, err := r.newItem(def, depth+1)
			if err != nil {
				return nil, err
			}
			if err := p.Add(inner); err != nil {
				return nil, fmt.Errorf("inventory: %q default contents: %w", id, err)
			}
		}
		it.pockets = append(it.pockets, p)
	}
	return it, nil
}

// Spawn creates an instance of id that already carries damage, with a
// random share of it booked as degradation.
//
// Precondition: src must be non-nil.
// Postcondition: Degradation() == RandDegradation at the requested damage.
func (r *Registry) Spawn(id string, dmg int, src dice.Source) (*Item, error) {
	it, err := r.NewItem(id)
	if err != nil {
		return nil, err
	}
	it.SetDamage(dmg)
	it.SetDegradation(it.RandDegradation(src))
	return it, nil
}

// Restore rebuilds a persisted instance with its saved identity and wear.
//
// Postcondition: Returns ErrUnknownItem when defID is not registered.
func (r *Registry) Restore(id uuid.UUID, defID string, dmg, degradation int) (*Item, error) {
	it, err := r.NewItem(defID)
	if err != nil {
		return nil, err
	}
	it.ID = id
	it.SetDegradation(degradation)
	it.SetDamage(dmg)
	return it, nil
}
