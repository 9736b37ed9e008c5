package nutrition

import (
	"errors"
	"fmt"
	"sort"
)

// VitaminID identifies a vitamin, e.g. "vitC".
type VitaminID string

// Vitamin kinds.
const (
	KindVitamin = "vitamin"
	KindToxin   = "toxin"
	KindCounter = "counter"
)

// VitaminDef is the static definition of a vitamin, loaded from YAML.
type VitaminDef struct {
	ID   VitaminID `yaml:"id"`
	Name string    `yaml:"name"`
	Kind string    `yaml:"kind"`
}

// Validate reports every structural problem with d.
func (d *VitaminDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	switch d.Kind {
	case "", KindVitamin, KindToxin, KindCounter:
	default:
		errs = append(errs, fmt.Errorf("vitamin %q: unknown kind %q", d.ID, d.Kind))
	}
	return errors.Join(errs...)
}

// Registry holds every known vitamin.
type Registry struct {
	defs map[VitaminID]*VitaminDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[VitaminID]*VitaminDef)}
}

// Register validates def and adds it.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *VitaminDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.defs[def.ID]; dup {
		return fmt.Errorf("vitamin %q registered twice", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Known reports whether id is registered.
func (r *Registry) Known(id VitaminID) bool {
	_, ok := r.defs[id]
	return ok
}

// Get returns the vitamin for id.
func (r *Registry) Get(id VitaminID) (*VitaminDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every vitamin ordered by id.
func (r *Registry) All() []*VitaminDef {
	out := make([]*VitaminDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
