package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/stomach"
)

// ErrStomachNotFound is returned when no digestive state is stored for a character.
var ErrStomachNotFound = errors.New("stomach not found")

// StomachRepository persists a character's stomach and guts as jsonb.
type StomachRepository struct {
	db       *pgxpool.Pool
	vitamins *nutrition.Registry
	logger   *zap.Logger
}

// NewStomachRepository creates a StomachRepository backed by the given pool.
// Loaded contents keep only vitamins known to vitamins.
//
// Precondition: db must be a valid, open connection pool; vitamins must be non-nil.
func NewStomachRepository(db *pgxpool.Pool, vitamins *nutrition.Registry, logger *zap.Logger) *StomachRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StomachRepository{db: db, vitamins: vitamins, logger: logger}
}

// Save upserts both digestive containers of characterID.
//
// Precondition: characterID must be non-empty; stomach and guts must be non-nil.
// Postcondition: A subsequent Load returns equivalent contents.
func (r *StomachRepository) Save(ctx context.Context, characterID string, st, guts *stomach.Contents) error {
	stJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding stomach: %w", err)
	}
	gutsJSON, err := json.Marshal(guts)
	if err != nil {
		return fmt.Errorf("encoding guts: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO character_stomachs (character_id, stomach, guts)
		VALUES ($1, $2, $3)
		ON CONFLICT (character_id) DO UPDATE
		SET stomach = EXCLUDED.stomach, guts = EXCLUDED.guts, updated_at = NOW()`,
		characterID, stJSON, gutsJSON,
	)
	if err != nil {
		return fmt.Errorf("saving stomach for %q: %w", characterID, err)
	}
	return nil
}

// Load retrieves both digestive containers of characterID.
//
// Postcondition: Returns ErrStomachNotFound when nothing is stored.
func (r *StomachRepository) Load(ctx context.Context, characterID string) (st, guts *stomach.Contents, err error) {
	var stJSON, gutsJSON []byte
	err = r.db.QueryRow(ctx, `
		SELECT stomach, guts FROM character_stomachs WHERE character_id = $1`,
		characterID,
	).Scan(&stJSON, &gutsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrStomachNotFound
		}
		return nil, nil, fmt.Errorf("querying stomach for %q: %w", characterID, err)
	}
	logger := r.logger.With(zap.String("character", characterID))
	if st, err = stomach.Decode(stJSON, r.vitamins, logger); err != nil {
		return nil, nil, err
	}
	if guts, err = stomach.Decode(gutsJSON, r.vitamins, logger); err != nil {
		return nil, nil, err
	}
	return st, guts, nil
}

// Delete removes the stored state of characterID.
//
// Postcondition: Returns ErrStomachNotFound if no row was deleted.
func (r *StomachRepository) Delete(ctx context.Context, characterID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM character_stomachs WHERE character_id = $1`, characterID)
	if err != nil {
		return fmt.Errorf("deleting stomach for %q: %w", characterID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStomachNotFound
	}
	return nil
}
