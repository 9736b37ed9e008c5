// Package clock provides the simulation calendar: turns, the digestion
// windows derived from them, and a ticker that advances time.
package clock

import (
	"strconv"
	"time"
)

// Turn is a point in simulation time, in seconds since the calendar start.
type Turn int64

// Tick lengths used by digestion.
const (
	FiveMinutes Turn = 5 * 60
	HalfHour    Turn = 30 * 60
	Hour        Turn = 60 * 60
	Day         Turn = 24 * Hour
)

// BeforeTimeStarts is the turn used for events that predate the simulation.
const BeforeTimeStarts Turn = -1

// Since returns the wall duration between t and now.
func (t Turn) Since(now Turn) time.Duration {
	return time.Duration(now-t) * time.Second
}

// Add returns t advanced by d, truncated to whole seconds.
func (t Turn) Add(d time.Duration) Turn {
	return t + Turn(d/time.Second)
}

// String renders t as a day and clock time, e.g. "day 2 06:30:00".
func (t Turn) String() string {
	if t < 0 {
		return "before time"
	}
	day := int64(t / Day)
	rem := time.Duration(t%Day) * time.Second
	h := int64(rem / time.Hour)
	m := int64(rem % time.Hour / time.Minute)
	s := int64(rem % time.Minute / time.Second)
	return "day " + strconv.FormatInt(day+1, 10) + " " + pad(h) + ":" + pad(m) + ":" + pad(s)
}

func pad(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

// TicksBetween returns how many multiples of tick lie in (from, to].
//
// Precondition: tick > 0.
func TicksBetween(from, to, tick Turn) int {
	if to <= from {
		return 0
	}
	return int(floorDiv(to, tick) - floorDiv(from, tick))
}

func floorDiv(a, b Turn) Turn {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Window converts successive observation turns into contiguous,
// non-overlapping digestion windows.
//
// Invariant: every five-minute and half-hour boundary after the starting
// turn is reported by exactly one Advance call.
type Window struct {
	last Turn
}

// NewWindow starts a Window at start.
func NewWindow(start Turn) *Window {
	return &Window{last: start}
}

// Last returns the most recent turn passed to Advance.
func (w *Window) Last() Turn { return w.last }

// Advance reports the five-minute and half-hour boundaries crossed since the
// previous call and moves the window to now. A now at or before the
// previous turn reports nothing and leaves the window unchanged.
//
// Postcondition: fiveMins >= 0 and halfHours >= 0.
func (w *Window) Advance(now Turn) (fiveMins, halfHours int) {
	if now <= w.last {
		return 0, 0
	}
	fiveMins = TicksBetween(w.last, now, FiveMinutes)
	halfHours = TicksBetween(w.last, now, HalfHour)
	w.last = now
	return fiveMins, halfHours
}
