package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
)

// CharacterStore keeps a character's digestive state and item wear between runs.
type CharacterStore struct {
	stomachs *StomachRepository
	wear     *ItemWearRepository
	items    *inventory.Registry
	logger   *zap.Logger
}

// NewCharacterStore creates a CharacterStore backed by the given pool.
//
// Precondition: db must be open; vitamins and items must be linked.
func NewCharacterStore(db *pgxpool.Pool, vitamins *nutrition.Registry, items *inventory.Registry, logger *zap.Logger) *CharacterStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterStore{
		stomachs: NewStomachRepository(db, vitamins, logger),
		wear:     NewItemWearRepository(db),
		items:    items,
		logger:   logger,
	}
}

// Restore replaces c's stomach and guts with the stored ones and carries stored
// wear over to worn items of the same definition, matched in layer order. The
// pockets of matched items get their stored contents back.
// A character with nothing stored is left unchanged.
//
// Precondition: c must be non-nil with a non-empty ID.
func (s *CharacterStore) Restore(ctx context.Context, c *character.Character) error {
	st, guts, err := s.stomachs.Load(ctx, c.ID)
	switch {
	case errors.Is(err, ErrStomachNotFound):
	case err != nil:
		return err
	default:
		c.Stomach, c.Guts = st, guts
	}

	stored, err := s.wear.Load(ctx, c.ID, s.items)
	if err != nil {
		return err
	}
	// live maps a stored worn item's ID to the worn item it was matched to.
	live := make(map[uuid.UUID]*inventory.Item)
	used := make(map[*inventory.Item]bool)
	for _, si := range stored {
		if si.Slot != SlotWorn {
			continue
		}
		for _, it := range c.Worn.Items() {
			if used[it] || it.Def().ID != si.Item.Def().ID {
				continue
			}
			it.SetDegradation(si.Item.Degradation())
			it.SetDamage(si.Item.Damage())
			used[it] = true
			live[si.Item.ID] = it
			break
		}
	}
	pocketed := s.restorePockets(stored, live)
	s.logger.Debug("character restored",
		zap.String("character", c.ID),
		zap.Int("stored_items", len(stored)),
		zap.Int("matched_worn", len(live)),
		zap.Int("pocketed", pocketed),
	)
	return nil
}

// restorePockets empties every pocket of the matched worn items and refills
// them with the stored pocket contents, so worn, broken and missing plates
// come back as they were. It returns the number of items put back.
func (s *CharacterStore) restorePockets(stored []StoredItem, live map[uuid.UUID]*inventory.Item) int {
	for _, it := range live {
		for _, p := range it.Pockets() {
			p.Clear()
		}
	}
	n := 0
	for _, si := range stored {
		if si.Slot != SlotPocketed {
			continue
		}
		holder, ok := live[si.Parent]
		if !ok {
			continue
		}
		pockets := holder.Pockets()
		if si.Pocket < 0 || si.Pocket >= len(pockets) {
			s.logger.Warn("stored pocket no longer exists",
				zap.String("holder", holder.Def().ID),
				zap.Int("pocket", si.Pocket),
			)
			continue
		}
		if err := pockets[si.Pocket].Add(si.Item); err != nil {
			s.logger.Warn("stored pocket item does not fit", zap.Error(err))
			continue
		}
		n++
	}
	return n
}

// Persist saves c's stomach, guts, worn items with their pocket contents and
// carried items.
//
// Precondition: c must be non-nil with a non-empty ID.
func (s *CharacterStore) Persist(ctx context.Context, c *character.Character) error {
	if err := s.stomachs.Save(ctx, c.ID, c.Stomach, c.Guts); err != nil {
		return err
	}
	var items []StoredItem
	for _, it := range c.Worn.Items() {
		items = append(items, StoredItem{Slot: SlotWorn, Item: it})
		for i, p := range it.Pockets() {
			for _, held := range p.Items() {
				items = append(items, StoredItem{Slot: SlotPocketed, Item: held, Parent: it.ID, Pocket: i})
			}
		}
	}
	for _, it := range c.Inventory.Items() {
		items = append(items, StoredItem{Slot: SlotCarried, Item: it})
	}
	if err := s.wear.Replace(ctx, c.ID, items); err != nil {
		return fmt.Errorf("persisting items: %w", err)
	}
	return nil
}
