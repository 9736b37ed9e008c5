// Package content loads the YAML definition catalog and links its cross references.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/survival/internal/game/anatomy"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/trait"
)

// Subdirectories of a content root, one per definition kind.
const (
	DamageTypesDir  = "damage_types"
	BodyPartsDir    = "body_parts"
	VitaminsDir     = "vitamins"
	MaterialsDir    = "materials"
	ItemsDir        = "items"
	EnchantmentsDir = "enchantments"
	BionicsDir      = "bionics"
	MutationsDir    = "mutations"
)

// Catalog is every linked registry loaded from one content root.
type Catalog struct {
	Types        *damage.Registry
	Parts        *anatomy.Registry
	Vitamins     *nutrition.Registry
	Items        *inventory.Registry
	Enchantments *enchant.Registry
	Traits       *trait.Registry
}

// Load reads every definition kind under dir and links the registries.
// A missing subdirectory contributes no definitions.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a fully linked Catalog, or an error naming every
// invalid definition and unresolved reference.
func Load(dir string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("content: %q is not a directory", dir)
	}

	cat := &Catalog{
		Types:        damage.NewRegistry(),
		Parts:        anatomy.NewRegistry(),
		Vitamins:     nutrition.NewRegistry(),
		Items:        inventory.NewRegistry(),
		Enchantments: enchant.NewRegistry(),
		Traits:       trait.NewRegistry(),
	}

	var errs []error
	collect := func(kind string, n int, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			return
		}
		logger.Debug("content loaded", zap.String("kind", kind), zap.Int("count", n))
	}

	n, err := registerAll(filepath.Join(dir, DamageTypesDir), cat.Types.Register)
	collect(DamageTypesDir, n, err)
	n, err = registerAll(filepath.Join(dir, BodyPartsDir), cat.Parts.Register)
	collect(BodyPartsDir, n, err)
	n, err = registerAll(filepath.Join(dir, VitaminsDir), cat.Vitamins.Register)
	collect(VitaminsDir, n, err)
	n, err = registerAll(filepath.Join(dir, MaterialsDir), cat.Items.RegisterMaterial)
	collect(MaterialsDir, n, err)
	n, err = registerAll(filepath.Join(dir, ItemsDir), cat.Items.RegisterItem)
	collect(ItemsDir, n, err)
	n, err = registerAll(filepath.Join(dir, EnchantmentsDir), cat.Enchantments.Register)
	collect(EnchantmentsDir, n, err)
	n, err = registerAll(filepath.Join(dir, BionicsDir), cat.Traits.RegisterBionic)
	collect(BionicsDir, n, err)
	n, err = registerAll(filepath.Join(dir, MutationsDir), cat.Traits.RegisterMutation)
	collect(MutationsDir, n, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := cat.link(); err != nil {
		return nil, err
	}
	logger.Info("content catalog linked", zap.String("dir", dir))
	return cat, nil
}

// link resolves cross references leaf first.
func (c *Catalog) link() error {
	if err := c.Types.Link(); err != nil {
		return fmt.Errorf("linking damage types: %w", err)
	}
	var errs []error
	if err := c.Parts.Link(c.Types); err != nil {
		errs = append(errs, fmt.Errorf("linking body parts: %w", err))
	}
	if err := c.Items.Link(c.Types, c.Parts); err != nil {
		errs = append(errs, fmt.Errorf("linking items: %w", err))
	}
	if err := c.Traits.Link(c.Types, c.Parts, c.Enchantments); err != nil {
		errs = append(errs, fmt.Errorf("linking traits: %w", err))
	}
	return errors.Join(errs...)
}

// registerAll decodes every YAML file in dir and hands each definition to register.
func registerAll[T any](dir string, register func(*T) error) (int, error) {
	defs, err := LoadDefs[T](dir)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, d := range defs {
		if err := register(d); err != nil {
			errs = append(errs, err)
		}
	}
	return len(defs), errors.Join(errs...)
}

// LoadDefs decodes every *.yaml and *.yml file in dir, in name order. Each
// file holds a sequence of definitions and may span several YAML documents.
// Unknown fields are errors.
//
// Postcondition: Returns no definitions and no error when dir does not exist.
func LoadDefs[T any](dir string) ([]*T, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []*T
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		defs, err := DecodeDefs[T](data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		out = append(out, defs...)
	}
	return out, nil
}

// DecodeDefs strictly decodes every YAML document in data as a sequence of T.
func DecodeDefs[T any](data []byte) ([]*T, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*T
	for {
		var doc []*T
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for i, d := range doc {
			if d == nil {
				return nil, fmt.Errorf("entry %d is empty", len(out)+i)
			}
		}
		out = append(out, doc...)
	}
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
