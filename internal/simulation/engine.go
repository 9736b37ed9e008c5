package simulation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/game/clock"
	"github.com/cory-johannsen/survival/internal/game/content"
	"github.com/cory-johannsen/survival/internal/game/damage"
	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/game/enchant"
	"github.com/cory-johannsen/survival/internal/game/inventory"
	"github.com/cory-johannsen/survival/internal/game/notify"
	"github.com/cory-johannsen/survival/internal/game/nutrition"
	"github.com/cory-johannsen/survival/internal/game/stomach"
	"github.com/cory-johannsen/survival/internal/game/units"
	"github.com/cory-johannsen/survival/internal/scripting"
	"github.com/cory-johannsen/survival/internal/telemetry"
)

// CharacterScope is the script scope that receives character hooks.
const CharacterScope = "character"

// HookArmorDestroyed is called with the character ID and the destroyed item's name.
const HookArmorDestroyed = "on_armor_destroyed"

const msgTooFull = "You're too full to eat that."

// DefaultRates are the metabolic demands used when Options.Rates is zero.
var DefaultRates = stomach.NeedsRates{Hunger: 1, KCal: 2000}

// Store persists character state between runs.
type Store interface {
	// Restore overlays stored state onto a freshly built character.
	Restore(ctx context.Context, c *character.Character) error
	// Persist stores the character's state after a run.
	Persist(ctx context.Context, c *character.Character) error
}

// Options configure an Engine. Zero fields take the documented defaults.
type Options struct {
	// Scripts answers enchantment conditions and receives character hooks. Optional.
	Scripts *scripting.Manager
	// Recorder defaults to a no-op recorder.
	Recorder character.Recorder
	// Output receives CSV telemetry. A nil Output writes nothing.
	Output *telemetry.Output
	// Rand defaults to a crypto source.
	Rand   dice.Source
	Logger *zap.Logger
	// Rates defaults to DefaultRates.
	Rates stomach.NeedsRates
	// TurnsPerTick defaults to five minutes of game time.
	TurnsPerTick clock.Turn
	// Interval paces ticks in wall-clock time. Zero steps as fast as possible.
	Interval time.Duration
	// Store is optional.
	Store Store
}

// Report summarizes one scenario run.
type Report struct {
	Scenario    string
	CharacterID string
	// Turns is the game turn the run stopped at.
	Turns          clock.Turn
	Hits           int
	Incoming       float64
	Remaining      float64
	Negated        int
	ArmorDestroyed int
	// MealsRefused counts meals that did not fit in the stomach.
	MealsRefused int
	Absorbed     nutrition.Nutrients
	Hydration    units.Volume
	Power        units.Energy
	// Floor names every item left on the ground, in drop order.
	Floor    []string
	Messages []notify.Message
	Memorial []string
}

// Engine runs scenarios against the content catalog.
//
// Engine is safe for concurrent Run calls; each run owns its character.
type Engine struct {
	cat          *content.Catalog
	scripts      *scripting.Manager
	recorder     character.Recorder
	out          *telemetry.Output
	rng          dice.Source
	roller       *dice.Roller
	logger       *zap.Logger
	rates        stomach.NeedsRates
	turnsPerTick clock.Turn
	interval     time.Duration
	store        Store

	mu    sync.RWMutex
	chars map[string]*character.Character
	// outMu serializes telemetry writes across runs.
	outMu sync.Mutex
}

// NewEngine creates an Engine over a linked catalog. When opts.Scripts is set,
// its GetCharacter and Notify callbacks are bound to the engine's running characters.
//
// Precondition: cat must be non-nil and linked.
// Postcondition: Returns a ready Engine or an error.
func NewEngine(cat *content.Catalog, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("simulation: NewEngine requires a content catalog")
	}
	if opts.TurnsPerTick < 0 {
		return nil, fmt.Errorf("simulation: turns per tick must be positive, got %d", opts.TurnsPerTick)
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("simulation: interval must not be negative, got %s", opts.Interval)
	}
	e := &Engine{
		cat:          cat,
		scripts:      opts.Scripts,
		recorder:     opts.Recorder,
		out:          opts.Output,
		rng:          opts.Rand,
		logger:       opts.Logger,
		rates:        opts.Rates,
		turnsPerTick: opts.TurnsPerTick,
		interval:     opts.Interval,
		store:        opts.Store,
		chars:        make(map[string]*character.Character),
	}
	if e.rng == nil {
		e.rng = dice.NewCryptoSource()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.roller = dice.NewLoggedRoller(e.rng, e.logger)
	if e.rates.KCal <= 0 {
		e.rates = DefaultRates
	}
	if e.turnsPerTick == 0 {
		e.turnsPerTick = clock.FiveMinutes
	}
	if e.scripts != nil {
		e.scripts.GetCharacter = e.characterInfo
		e.scripts.Notify = e.notify
	}
	return e, nil
}

func (e *Engine) characterInfo(id string) *scripting.CharacterInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.chars[id]
	if !ok {
		return nil
	}
	return c.Info()
}

func (e *Engine) notify(id, msg string) {
	e.mu.RLock()
	c, ok := e.chars[id]
	e.mu.RUnlock()
	if ok {
		c.AddMessage(notify.Info, msg)
	}
}

func (e *Engine) evaluator() enchant.Evaluator {
	if e.scripts == nil {
		return nil
	}
	return e.scripts
}

// run is the mutable state of one scenario run.
type run struct {
	sc     *Scenario
	c      *character.Character
	floor  *inventory.Floor
	events []Event
	next   int
	rep    *Report
	err    error
	done   bool
}

// Run builds the scenario's character and plays the scenario until its
// duration has elapsed. Events due at or before a tick's turn run in turn
// order before that tick's digestion.
//
// Precondition: sc must be non-nil.
// Postcondition: Returns a Report, or an error if the scenario is invalid,
// ctx ends first, telemetry cannot be written or state cannot be stored.
func (e *Engine) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if sc == nil {
		return nil, errors.New("simulation: scenario must not be nil")
	}
	if err := errors.Join(sc.Validate(), sc.Resolve(e.cat)); err != nil {
		return nil, err
	}
	logger := e.logger.With(zap.String("scenario", sc.Name))
	log := &notify.Log{}
	c, err := character.Build(&sc.Character, character.Deps{
		Types:    e.cat.Types,
		Parts:    e.cat.Parts,
		Items:    e.cat.Items,
		Traits:   e.cat.Traits,
		Rand:     e.rng,
		Sink:     log,
		Recorder: e.recorder,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	if e.store != nil {
		if err := e.store.Restore(ctx, c); err != nil {
			return nil, fmt.Errorf("restoring %q: %w", c.ID, err)
		}
	}
	c.Hooks.ArmorDestroyed = e.armorDestroyed

	e.mu.Lock()
	if _, dup := e.chars[c.ID]; dup {
		e.mu.Unlock()
		return nil, fmt.Errorf("simulation: character %q is already running", c.ID)
	}
	e.chars[c.ID] = c
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.chars, c.ID)
		e.mu.Unlock()
	}()

	r := &run{
		sc:     sc,
		c:      c,
		floor:  inventory.NewFloor(),
		events: sc.sortedEvents(),
		rep:    &Report{Scenario: sc.Name, CharacterID: c.ID},
	}
	logger.Info("scenario started",
		zap.String("character", c.ID),
		zap.Int64("duration", int64(sc.Duration)),
		zap.Int("events", len(sc.Events)),
	)

	if err := e.loop(ctx, r); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}

	rep := r.rep
	rep.Absorbed = c.Absorbed()
	rep.Hydration = c.Hydration()
	rep.Power = c.PowerLevel()
	for _, it := range r.floor.At(c.Location) {
		rep.Floor = append(rep.Floor, it.Name())
	}
	rep.Messages = log.Messages()
	rep.Memorial = c.Memorial()

	if e.store != nil {
		if err := e.store.Persist(ctx, c); err != nil {
			return nil, fmt.Errorf("persisting %q: %w", c.ID, err)
		}
	}
	logger.Info("scenario finished",
		zap.Int64("turns", int64(rep.Turns)),
		zap.Int("hits", rep.Hits),
		zap.Int("armor_destroyed", rep.ArmorDestroyed),
		zap.Int("absorbed_kcal", rep.Absorbed.KCal()),
	)
	return rep, nil
}

// loop drives the ticker until the run is done. With no interval it steps
// synchronously; otherwise the ticker paces itself.
func (e *Engine) loop(ctx context.Context, r *run) error {
	ticker := clock.NewTicker(0, max(e.interval, time.Millisecond), e.turnsPerTick)
	finished := make(chan struct{})
	ticker.RegisterTick(r.c.ID, func(now clock.Turn) {
		if r.done {
			return
		}
		e.tick(r, now)
		if now >= r.sc.Duration || r.err != nil {
			r.rep.Turns = now
			r.done = true
			close(finished)
		}
	})
	defer ticker.Unregister(r.c.ID)

	if e.interval == 0 {
		for !r.done {
			if err := ctx.Err(); err != nil {
				return err
			}
			ticker.Step()
		}
		return nil
	}

	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ticker.Start(tickCtx)
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick applies due events and digests the elapsed time.
func (e *Engine) tick(r *run, now clock.Turn) {
	for r.next < len(r.events) && r.events[r.next].At <= now {
		e.apply(r, r.events[r.next], now)
		r.next++
	}
	c := r.c
	body := c.ProcessDigestion(e.rates, now)
	e.write(r, func(out *telemetry.Output) error {
		return out.WriteDigestion(telemetry.DigestionRecord{
			Turn:         int64(now),
			Character:    c.ID,
			KCal:         body.Nutr.KCal(),
			WaterML:      body.Water.Milliliters(),
			StomachML:    c.Stomach.Contains().Milliliters(),
			StomachKCal:  c.Stomach.Calories(),
			GutsML:       c.Guts.Contains().Milliliters(),
			GutsKCal:     c.Guts.Calories(),
			AbsorbedKCal: c.Absorbed().KCal(),
			PowerKJ:      c.PowerLevel().Kilojoules(),
		})
	})
}

func (e *Engine) apply(r *run, ev Event, now clock.Turn) {
	e.logger.Debug("event",
		zap.String("scenario", r.sc.Name),
		zap.String("kind", ev.kind()),
		zap.Int64("at", int64(ev.At)),
		zap.Int64("now", int64(now)),
	)
	switch {
	case ev.Hit != nil:
		e.hit(r, ev.Hit, now)
	case ev.Eat != nil:
		e.eat(r, ev.Eat, now)
	case ev.Bionic != nil:
		if !r.c.SetBionicPowered(ev.Bionic.ID, ev.Bionic.Powered) {
			e.logger.Warn("bionic not installed",
				zap.String("character", r.c.ID),
				zap.String("bionic", ev.Bionic.ID),
			)
		}
	}
}

func (e *Engine) hit(r *run, h *HitEvent, now clock.Turn) {
	c := r.c
	dam := damage.NewInstance()
	for _, d := range h.Damage {
		amount := d.Amount
		if d.Roll != "" {
			// Validate already parsed the expression.
			expr, _ := dice.ParseExpr(d.Roll)
			amount = float64(max(0, e.roller.Roll(expr).Total()))
		}
		u := damage.NewUnit(e.cat.Types.MustLookup(d.Type), amount)
		u.ResPen = d.ResPen
		if d.ResMult != nil {
			u.ResMult = *d.ResMult
		}
		dam.Units = append(dam.Units, u)
	}
	incoming := make([]float64, len(dam.Units))
	for i, u := range dam.Units {
		incoming[i] = u.Amount
	}

	c.RebuildEnchantments(e.evaluator())
	res := c.TakeHit(character.WeakpointAttack{Attacker: h.Attacker}, h.BodyPart, dam, r.floor)

	rep := r.rep
	rep.Hits++
	if res.Negated {
		rep.Negated++
	}
	if res.ArmorDestroyed {
		rep.ArmorDestroyed++
	}
	records := make([]telemetry.HitRecord, len(dam.Units))
	for i, u := range dam.Units {
		rep.Incoming += incoming[i]
		rep.Remaining += u.Amount
		records[i] = telemetry.HitRecord{
			Turn:           int64(now),
			Character:      c.ID,
			BodyPart:       string(h.BodyPart),
			DamageType:     u.Type.ID(),
			Incoming:       incoming[i],
			Remaining:      u.Amount,
			Negated:        res.Negated,
			ArmorDestroyed: res.ArmorDestroyed,
			Remains:        len(res.Remains),
			PowerKJ:        c.PowerLevel().Kilojoules(),
		}
	}
	e.write(r, func(out *telemetry.Output) error { return out.WriteHits(records...) })
}

func (e *Engine) eat(r *run, m *MealEvent, now clock.Turn) {
	food := stomach.FoodSummary{
		Solids: units.FromMilliliter(m.SolidsML),
		Water:  units.FromMilliliter(m.WaterML),
		Nutr: nutrition.Nutrients{
			Calories: int(math.Round(m.KCal * 1000)),
			Vitamins: maps.Clone(m.Vitamins),
		},
	}
	if err := r.c.Eat(food, now); err != nil {
		r.rep.MealsRefused++
		r.c.AddMessage(notify.Bad, msgTooFull)
		e.logger.Debug("meal refused", zap.String("character", r.c.ID), zap.Error(err))
	}
}

// armorDestroyed forwards the destruction to the character script scope.
func (e *Engine) armorDestroyed(c *character.Character, name string) {
	if e.scripts == nil {
		return
	}
	if _, err := e.scripts.CallHook(CharacterScope, HookArmorDestroyed, lua.LString(c.ID), lua.LString(name)); err != nil {
		e.logger.Warn("armor hook failed", zap.String("character", c.ID), zap.Error(err))
	}
}

// write hands out to fn under the telemetry lock. The first failure stops the run.
func (e *Engine) write(r *run, fn func(*telemetry.Output) error) {
	if e.out == nil || r.err != nil {
		return
	}
	e.outMu.Lock()
	defer e.outMu.Unlock()
	if err := fn(e.out); err != nil {
		r.err = fmt.Errorf("writing telemetry: %w", err)
	}
}
