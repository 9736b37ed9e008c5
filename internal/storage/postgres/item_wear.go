package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/survival/internal/game/inventory"
)

// Item slots.
const (
	SlotWorn    = "worn"
	SlotCarried = "carried"
	// SlotPocketed items sit in a pocket of the item named by Parent.
	SlotPocketed = "pocketed"
)

// StoredItem is one persisted item instance. Parent and Pocket are set only
// for SlotPocketed: the holding item's ID and the pocket's index among its
// pockets.
type StoredItem struct {
	Slot   string
	Item   *inventory.Item
	Parent uuid.UUID
	Pocket int
}

// ItemWearRepository persists the identity and wear of a character's items.
type ItemWearRepository struct {
	db *pgxpool.Pool
}

// NewItemWearRepository creates an ItemWearRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewItemWearRepository(db *pgxpool.Pool) *ItemWearRepository {
	return &ItemWearRepository{db: db}
}

// Replace stores items as the complete set owned by characterID, in order.
//
// Precondition: characterID must be non-empty.
// Postcondition: Rows for items no longer owned are removed; all changes
// commit atomically.
func (r *ItemWearRepository) Replace(ctx context.Context, characterID string, items []StoredItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning item wear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM item_wear WHERE character_id = $1`, characterID); err != nil {
		return fmt.Errorf("clearing item wear for %q: %w", characterID, err)
	}
	batch := &pgx.Batch{}
	for i, s := range items {
		var parent, pocket any
		if s.Slot == SlotPocketed {
			parent, pocket = s.Parent, s.Pocket
		}
		batch.Queue(`
			INSERT INTO item_wear (id, character_id, def_id, slot, position, damage, degradation, parent_id, pocket)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.Item.ID, characterID, s.Item.Def().ID, s.Slot, i, s.Item.Damage(), s.Item.Degradation(), parent, pocket,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("storing item wear for %q: %w", characterID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing item wear for %q: %w", characterID, err)
	}
	return nil
}

// Load restores every stored item of characterID in stored order.
//
// Precondition: items must be linked.
// Postcondition: Returns an empty slice when nothing is stored, or an error
// wrapping inventory.ErrUnknownItem when a stored definition no longer exists.
func (r *ItemWearRepository) Load(ctx context.Context, characterID string, items *inventory.Registry) ([]StoredItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, def_id, slot, damage, degradation, parent_id, pocket
		FROM item_wear WHERE character_id = $1 ORDER BY position ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item wear for %q: %w", characterID, err)
	}
	defer rows.Close()

	out := make([]StoredItem, 0)
	for rows.Next() {
		var (
			id          uuid.UUID
			defID, slot string
			dmg, deg    int
			parent      *uuid.UUID
			pocket      *int
		)
		if err := rows.Scan(&id, &defID, &slot, &dmg, &deg, &parent, &pocket); err != nil {
			return nil, fmt.Errorf("scanning item wear row: %w", err)
		}
		it, err := items.Restore(id, defID, dmg, deg)
		if err != nil {
			return nil, fmt.Errorf("restoring item %s: %w", id, err)
		}
		si := StoredItem{Slot: slot, Item: it}
		if parent != nil && pocket != nil {
			si.Parent, si.Pocket = *parent, *pocket
		}
		out = append(out, si)
	}
	return out, rows.Err()
}
