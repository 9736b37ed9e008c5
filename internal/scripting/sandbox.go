// Package scripting runs content Lua (enchantment conditions, armor hooks)
// in GopherLua states that cannot reach the host. Game state is exposed only
// through the callbacks a Manager is given.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit bounds one script call when no limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals reach the filesystem, the module loader or the collector.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opcodeBudget is a context whose Done is polled by the VM before each
// opcode. It cancels itself once the budget is spent, so a runaway loop
// stops at the next opcode.
type opcodeBudget struct {
	context.Context
	left   atomic.Int64
	expire context.CancelFunc
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.expire()
	}
	return b.Context.Done()
}

// armLimit gives L a fresh budget of limit opcodes, DefaultInstructionLimit
// when limit is not positive. Callers release it once the call returns.
func armLimit(L *lua.LState, limit int) context.CancelFunc {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	base, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: base, expire: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return cancel
}

// NewSandboxedState opens a state with only the base, table, string and math
// libraries and without the globals in unsafeGlobals. Its first execution is
// bounded by instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the state, closes it and calls the returned
// cancel once the first execution is done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L, armLimit(L, instLimit)
}
