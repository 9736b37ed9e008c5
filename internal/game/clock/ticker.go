package clock

import (
	"context"
	"sync"
	"time"
)

// Ticker advances the calendar by a fixed number of turns on every tick and
// invokes each registered callback with the new turn.
//
// Invariant: each callback is invoked at most once per tick; callback order is unspecified.
type Ticker struct {
	interval     time.Duration
	turnsPerTick Turn

	mu    sync.Mutex
	now   Turn
	ticks map[string]func(now Turn)
}

// NewTicker returns a Ticker starting at start that advances turnsPerTick
// turns every interval.
//
// Precondition: interval must be > 0 and turnsPerTick must be > 0.
func NewTicker(start Turn, interval time.Duration, turnsPerTick Turn) *Ticker {
	if interval <= 0 {
		panic("clock.NewTicker: interval must be > 0")
	}
	if turnsPerTick <= 0 {
		panic("clock.NewTicker: turnsPerTick must be > 0")
	}
	return &Ticker{
		interval:     interval,
		turnsPerTick: turnsPerTick,
		now:          start,
		ticks:        make(map[string]func(now Turn)),
	}
}

// Now returns the current turn.
func (t *Ticker) Now() Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// RegisterTick registers a callback under id. Replaces any existing callback.
func (t *Ticker) RegisterTick(id string, fn func(now Turn)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks[id] = fn
}

// Unregister removes the callback registered under id.
func (t *Ticker) Unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ticks, id)
}

// Step advances the calendar by one tick and runs every callback synchronously.
//
// Postcondition: Now() has grown by turnsPerTick.
func (t *Ticker) Step() Turn {
	t.mu.Lock()
	t.now += t.turnsPerTick
	now := t.now
	callbacks := make([]func(Turn), 0, len(t.ticks))
	for _, fn := range t.ticks {
		callbacks = append(callbacks, fn)
	}
	t.mu.Unlock()
	for _, fn := range callbacks {
		fn(now)
	}
	return now
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: Step is called once per interval.
func (t *Ticker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Step()
			}
		}
	}()
}
